package scene

// ObjectType is the host object type. Only the types listed as constants are
// exportable; any other value makes the object invalid.
type ObjectType string

const (
	ObjectEmpty    ObjectType = "EMPTY"
	ObjectMesh     ObjectType = "MESH"
	ObjectCurve    ObjectType = "CURVE"
	ObjectSurface  ObjectType = "SURFACE"
	ObjectFont     ObjectType = "FONT"
	ObjectMeta     ObjectType = "META"
	ObjectArmature ObjectType = "ARMATURE"
	ObjectCamera   ObjectType = "CAMERA"
	ObjectLamp     ObjectType = "LAMP"
	ObjectSpeaker  ObjectType = "SPEAKER"

	// ObjectLine is never read from a scene file; EMPTY objects with a line
	// renderer are exported with this type.
	ObjectLine ObjectType = "LINE"
)

// Supported reports whether objects of this type can be exported.
func (t ObjectType) Supported() bool {
	switch t {
	case ObjectMesh, ObjectCurve, ObjectArmature, ObjectEmpty, ObjectCamera,
		ObjectLamp, ObjectSpeaker, ObjectFont, ObjectMeta, ObjectSurface:
		return true
	}
	return false
}

// DataKind returns the kind of block the object's data reference points at.
func (t ObjectType) DataKind() Kind {
	switch t {
	case ObjectMesh, ObjectMeta:
		return KindMesh
	case ObjectCurve, ObjectSurface, ObjectFont:
		return KindCurve
	case ObjectArmature:
		return KindArmature
	case ObjectCamera:
		return KindCamera
	case ObjectLamp:
		return KindLamp
	case ObjectSpeaker:
		return KindSpeaker
	}
	return 0
}

// Scene is a top-level scene.
type Scene struct {
	Datablock  `yaml:",inline"`
	Objects    []Ref    `yaml:"objects"`
	Camera     Ref      `yaml:"camera"`
	World      Ref      `yaml:"world"`
	FrameStart int      `yaml:"frame_start"`
	FrameEnd   int      `yaml:"frame_end"`
	Markers    []Marker `yaml:"markers"`
}

// Marker is a named timeline frame.
type Marker struct {
	Name  string `yaml:"name"`
	Frame int    `yaml:"frame"`
}

// Object is a placed instance of some data block.
type Object struct {
	Datablock       `yaml:",inline"`
	Type            ObjectType       `yaml:"type"`
	Data            Ref              `yaml:"data"`
	Parent          Ref              `yaml:"parent"`
	Proxy           Ref              `yaml:"proxy"`
	DupliType       string           `yaml:"dupli_type"`
	DupliGroup      Ref              `yaml:"dupli_group"`
	MaterialSlots   []Ref            `yaml:"material_slots"`
	Modifiers       []Modifier       `yaml:"modifiers"`
	Constraints     []Constraint     `yaml:"constraints"`
	ParticleSystems []ParticleSystem `yaml:"particle_systems"`
	LODLevels       []LODLevel       `yaml:"lod_levels"`
	Action          Ref              `yaml:"action"`
	Vehicle         *Vehicle         `yaml:"vehicle"`
	VertexGroups    []string         `yaml:"vertex_groups"`
	VertexAnim      bool             `yaml:"vertex_anim"`
	VertexAnims     []VertexAnim     `yaml:"vertex_anims"`
	LineRenderer    bool             `yaml:"line_renderer"`
	BodyText        string           `yaml:"body_text"`
}

// VertexAnim is one baked vertex animation of an object.
type VertexAnim struct {
	Name       string `yaml:"name"`
	Frames     int    `yaml:"frames"`
	FrameStart int    `yaml:"frame_start"`
	FrameEnd   int    `yaml:"frame_end"`
	Props      Props  `yaml:"props"`
}

// ModifierType is the host modifier type.
type ModifierType string

const (
	ModifierArmature       ModifierType = "ARMATURE"
	ModifierArray          ModifierType = "ARRAY"
	ModifierCurve          ModifierType = "CURVE"
	ModifierParticleSystem ModifierType = "PARTICLE_SYSTEM"
)

// Modifier is one entry of an object's modifier stack.
type Modifier struct {
	Name         string       `yaml:"name"`
	Type         ModifierType `yaml:"type"`
	Object       Ref          `yaml:"object"`
	Curve        Ref          `yaml:"curve"`
	OffsetObject Ref          `yaml:"offset_object"`
	Props        Props        `yaml:"props"`
}

// ConstraintType is the host constraint type.
type ConstraintType string

const (
	ConstraintCopyTransforms ConstraintType = "COPY_TRANSFORMS"
	ConstraintCopyLocation   ConstraintType = "COPY_LOCATION"
	ConstraintCopyRotation   ConstraintType = "COPY_ROTATION"
	ConstraintCopyScale      ConstraintType = "COPY_SCALE"
	ConstraintTrackTo        ConstraintType = "TRACK_TO"
	ConstraintLockedTrack    ConstraintType = "LOCKED_TRACK"
	ConstraintRigidBodyJoint ConstraintType = "RIGID_BODY_JOINT"
)

// ReflectionPlane is the constraint name that turns a LOCKED_TRACK into a
// reflection plane marker.
const ReflectionPlane = "REFLECTION PLANE"

// Constraint is one object constraint with an optional target object.
type Constraint struct {
	Name    string         `yaml:"name"`
	Type    ConstraintType `yaml:"type"`
	Target  Ref            `yaml:"target"`
	Mute    bool           `yaml:"mute"`
	Invalid bool           `yaml:"invalid"`
	Props   Props          `yaml:"props"`
}

// IsReflectionPlane reports whether the constraint marks a reflection plane.
func (c Constraint) IsReflectionPlane() bool {
	return c.Type == ConstraintLockedTrack && c.Name == ReflectionPlane
}

// ParticleSystem binds particle settings to an emitting object.
type ParticleSystem struct {
	Name     string `yaml:"name"`
	Seed     int    `yaml:"seed"`
	Settings Ref    `yaml:"settings"`
	// Transforms holds baked hair instance transforms, packed per instance.
	Transforms []float32 `yaml:"transforms"`
	Props      Props     `yaml:"props"`
}

// LODLevel is one level-of-detail entry.
type LODLevel struct {
	Object   Ref     `yaml:"object"`
	Distance float64 `yaml:"distance"`
	Props    Props   `yaml:"props"`
}

// VehiclePart names the role an object plays in a vehicle.
type VehiclePart string

const (
	PartHull            VehiclePart = "HULL"
	PartChassis         VehiclePart = "CHASSIS"
	PartBob             VehiclePart = "BOB"
	PartWheelFrontLeft  VehiclePart = "WHEEL_FRONT_LEFT"
	PartWheelFrontRight VehiclePart = "WHEEL_FRONT_RIGHT"
	PartWheelBackLeft   VehiclePart = "WHEEL_BACK_LEFT"
	PartWheelBackRight  VehiclePart = "WHEEL_BACK_RIGHT"
	PartSteeringWheel   VehiclePart = "STEERING_WHEEL"
	PartSpeedometer     VehiclePart = "SPEEDOMETER"
	PartTachometer      VehiclePart = "TACHOMETER"
)

// IsWheel reports whether the part is one of the four wheels.
func (p VehiclePart) IsWheel() bool {
	switch p {
	case PartWheelFrontLeft, PartWheelFrontRight, PartWheelBackLeft, PartWheelBackRight:
		return true
	}
	return false
}

// Vehicle marks an object as a part of a named vehicle.
type Vehicle struct {
	Name  string      `yaml:"name"`
	Part  VehiclePart `yaml:"part"`
	Props Props       `yaml:"props"`
}

// Mesh holds polygon geometry.
type Mesh struct {
	Datablock    `yaml:",inline"`
	Polygons     int        `yaml:"polygons"`
	UVLayers     []string   `yaml:"uv_layers"`
	VertexColors []string   `yaml:"vertex_colors"`
	Geometry     []Geometry `yaml:"geometry"`
}

// GeometryFor returns the raw arrays for a material index. Index -1 and
// indices past the end fall back to the first entry.
func (m *Mesh) GeometryFor(matIndex int) Geometry {
	if matIndex >= 0 && matIndex < len(m.Geometry) {
		return m.Geometry[matIndex]
	}
	if len(m.Geometry) > 0 {
		return m.Geometry[0]
	}
	return Geometry{}
}

// Geometry is the raw per-submesh vertex data the cooker packs.
type Geometry struct {
	Positions  []float32 `yaml:"positions" cbor:"1,keyasint"`
	Normals    []float32 `yaml:"normals" cbor:"2,keyasint"`
	Tangents   []float32 `yaml:"tangents" cbor:"3,keyasint"`
	Texcoords  []float32 `yaml:"texcoords" cbor:"4,keyasint"`
	Texcoords2 []float32 `yaml:"texcoords2" cbor:"5,keyasint"`
	Colors     []float32 `yaml:"colors" cbor:"6,keyasint"`
	Groups     []float32 `yaml:"groups" cbor:"7,keyasint"`
	ShadeTangs []float32 `yaml:"shade_tangs" cbor:"8,keyasint"`
	Indices    []int32   `yaml:"indices" cbor:"9,keyasint"`
}

// Material is a surface material.
type Material struct {
	Datablock           `yaml:",inline"`
	Type                string        `yaml:"type"`
	UseNodes            bool          `yaml:"use_nodes"`
	NodeTree            *NodeTree     `yaml:"node_tree"`
	TextureSlots        []TextureSlot `yaml:"texture_slots"`
	AlphaBlend          string        `yaml:"alpha_blend"`
	UseVertexColorPaint bool          `yaml:"use_vertex_color_paint"`
	UseTangentShading   bool          `yaml:"use_tangent_shading"`
}

// TextureSlot binds a texture to a material or world.
type TextureSlot struct {
	Texture            Ref    `yaml:"texture"`
	Disabled           bool   `yaml:"disabled"`
	TextureCoords      string `yaml:"texture_coords"`
	UVLayer            string `yaml:"uv_layer"`
	UseMapColorDiffuse bool   `yaml:"use_map_color_diffuse"`
	UseMapAlpha        bool   `yaml:"use_map_alpha"`
	Props              Props  `yaml:"props"`
}

// Texture types the exporter branches on.
const (
	TextureImage          = "IMAGE"
	TextureNone           = "NONE"
	TextureEnvironmentMap = "ENVIRONMENT_MAP"
)

// Texture source types.
const (
	SourceScene = "SCENE"
)

// Texture is an image, procedural or render-target texture.
type Texture struct {
	Datablock  `yaml:",inline"`
	Type       string `yaml:"type"`
	SourceType string `yaml:"source_type"`
	SourceID   string `yaml:"source_id"`
	Image      Ref    `yaml:"image"`
	UseSky     string `yaml:"use_sky"`
}

// RendersScene reports whether the texture is a render target fed by a scene.
func (t *Texture) RendersScene() bool {
	return t.Type == TextureNone && t.SourceType == SourceScene
}

// Image is an external or packed picture.
type Image struct {
	Datablock  `yaml:",inline"`
	Filepath   string `yaml:"filepath"`
	Packed     Packed `yaml:"packed"`
	FileFormat string `yaml:"file_format"`
	Source     string `yaml:"source"`
}

// Sound is an external or packed audio file.
type Sound struct {
	Datablock `yaml:",inline"`
	Filepath  string `yaml:"filepath"`
	Packed    Packed `yaml:"packed"`
}

// World holds environment settings for a scene.
type World struct {
	Datablock    `yaml:",inline"`
	UseNodes     bool          `yaml:"use_nodes"`
	NodeTree     *NodeTree     `yaml:"node_tree"`
	TextureSlots []TextureSlot `yaml:"texture_slots"`
	Action       Ref           `yaml:"action"`
}

// NodeGroup is a reusable node tree stored as its own block.
type NodeGroup struct {
	Datablock `yaml:",inline"`
	NodeTree  `yaml:",inline"`
}

// Camera types.
const (
	CameraPerspective = "PERSP"
	CameraPanoramic   = "PANO"
)

// Camera is camera data.
type Camera struct {
	Datablock `yaml:",inline"`
	Type      string `yaml:"type"`
}

// Lamp types.
const (
	LampSun  = "SUN"
	LampArea = "AREA"
)

// Lamp is light data.
type Lamp struct {
	Datablock `yaml:",inline"`
	Type      string `yaml:"type"`
	Action    Ref    `yaml:"action"`
}

// Armature is skeleton data. Bones travel in Props.
type Armature struct {
	Datablock `yaml:",inline"`
}

// Curve is curve, surface or text data.
type Curve struct {
	Datablock `yaml:",inline"`
	Splines   []Spline `yaml:"splines"`
	// Mesh is the tessellated geometry used when the curve is exported as a
	// mesh. A curve without one converts to an empty object.
	Mesh Ref `yaml:"mesh"`
}

// Spline is one curve segment.
type Spline struct {
	Type         string `yaml:"type"`
	UseEndpointU bool   `yaml:"use_endpoint_u"`
}

// Speaker is sound-emitter data.
type Speaker struct {
	Datablock `yaml:",inline"`
	Sound     Ref `yaml:"sound"`
	Action    Ref `yaml:"action"`
}

// Particle settings types and render types.
const (
	ParticlesHair    = "HAIR"
	ParticlesEmitter = "EMITTER"

	RenderObject    = "OBJECT"
	RenderGroup     = "GROUP"
	RenderHalo      = "HALO"
	RenderBillboard = "BILLBOARD"
)

// ParticleSettings is shared particle configuration.
type ParticleSettings struct {
	Datablock     `yaml:",inline"`
	Type          string        `yaml:"type"`
	RenderType    string        `yaml:"render_type"`
	DupliObject   Ref           `yaml:"dupli_object"`
	DupliGroup    Ref           `yaml:"dupli_group"`
	UseGroupCount bool          `yaml:"use_group_count"`
	DupliWeights  []DupliWeight `yaml:"dupli_weights"`
	TextureSlots  []TextureSlot `yaml:"texture_slots"`
}

// DupliWeight is the instance count for one group member. Name has the
// form "<object>: <index>"; the host writes "No object" for members it
// could not resolve.
type DupliWeight struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// Group is a named set of objects.
type Group struct {
	Datablock `yaml:",inline"`
	Objects   []Ref `yaml:"objects"`
}

// Action is a set of animation curves.
type Action struct {
	Datablock  `yaml:",inline"`
	FrameRange [2]float64 `yaml:"frame_range"`
	FCurves    []FCurve   `yaml:"fcurves"`
}

// FCurve animates one channel of one property path.
type FCurve struct {
	DataPath   string     `yaml:"data_path"`
	ArrayIndex int        `yaml:"array_index"`
	Keyframes  []Keyframe `yaml:"keyframes"`
}

// Keyframe interpolation modes.
const (
	InterpolationBezier   = "BEZIER"
	InterpolationLinear   = "LINEAR"
	InterpolationConstant = "CONSTANT"
)

// Keyframe is one control point of an FCurve.
type Keyframe struct {
	Co            [2]float64 `yaml:"co"`
	Interpolation string     `yaml:"interpolation"`
	HandleLeft    [2]float64 `yaml:"handle_left"`
	HandleRight   [2]float64 `yaml:"handle_right"`
}
