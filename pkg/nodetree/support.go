package nodetree

import (
	"fmt"

	"github.com/matzehuels/b4wexport/pkg/scene"
)

// GroupIDName is the bl_idname of node group instances.
const GroupIDName = "ShaderNodeGroup"

var supported = map[string]bool{}

func init() {
	for _, id := range []string{
		"NodeFrame", "ShaderNodeMaterial", "ShaderNodeCameraData",
		"ShaderNodeValue", "ShaderNodeRGB", "ShaderNodeTexture",
		"ShaderNodeGeometry", "ShaderNodeExtendedMaterial", "ShaderNodeLampData",
		"ShaderNodeOutput", "ShaderNodeMixRGB", "ShaderNodeRGBCurve",
		"ShaderNodeInvert", "ShaderNodeHueSaturation", "ShaderNodeNormal",
		"ShaderNodeMapping", "ShaderNodeVectorCurve", "ShaderNodeValToRGB",
		"ShaderNodeRGBToBW", "ShaderNodeMath", "ShaderNodeVectorMath",
		"ShaderNodeSqueeze", "ShaderNodeSeparateRGB", "ShaderNodeCombineRGB",
		"ShaderNodeSeparateHSV", "ShaderNodeCombineHSV", "ShaderNodeGamma",
		"NodeReroute", GroupIDName, "NodeGroupInput", "NodeGroupOutput",
		"ShaderNodeOutputMaterial", "ShaderNodeBsdfDiffuse", "ShaderNodeBsdfGlossy",
		"ShaderNodeBsdfTransparent", "ShaderNodeBsdfRefraction", "ShaderNodeBsdfGlass",
		"ShaderNodeBsdfTranslucent", "ShaderNodeBsdfAnisotropic", "ShaderNodeBsdfVelvet",
		"ShaderNodeBsdfToon", "ShaderNodeSubsurfaceScattering", "ShaderNodeEmission",
		"ShaderNodeBsdfHair", "ShaderNodeAmbientOcclusion", "ShaderNodeHoldout",
		"ShaderNodeVolumeAbsorption", "ShaderNodeVolumeScatter", "ShaderNodeBump",
		"ShaderNodeNormalMap", "ShaderNodeVectorTransform", "ShaderNodeBlackbody",
		"ShaderNodeSeparateXYZ", "ShaderNodeCombineXYZ", "ShaderNodeBrightContrast",
		"ShaderNodeLightFalloff", "ShaderNodeTexImage", "ShaderNodeTexEnvironment",
		"ShaderNodeTexSky", "ShaderNodeTexNoise", "ShaderNodeTexWave",
		"ShaderNodeTexVoronoi", "ShaderNodeTexMusgrave", "ShaderNodeTexGradient",
		"ShaderNodeTexMagic", "ShaderNodeTexChecker", "ShaderNodeTexBrick",
		"ShaderNodeTexCoord", "ShaderNodeUVMap", "ShaderNodeParticleInfo",
		"ShaderNodeHairInfo", "ShaderNodeObjectInfo", "ShaderNodeWireframe",
		"ShaderNodeTangent", "ShaderNodeLayerWeight", "ShaderNodeLightPath",
		"ShaderNodeAttribute", "ShaderNodeOutputLamp", "ShaderNodeScript",
		"ShaderNodeMixShader", "ShaderNodeAddShader", "ShaderNodeNewGeometry",
		"ShaderNodeFresnel", "ShaderNodeOutputWorld", "ShaderNodeBackground",
	} {
		supported[id] = true
	}
}

// Supported reports whether nodes with the given bl_idname can be exported.
func Supported(idName string) bool { return supported[idName] }

// UnsupportedError reports the first node that prevents a tree from being
// exported. It is recoverable: the owner disables its node tree.
type UnsupportedError struct {
	Node  string
	Owner string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("The %q node is not supported. Nodes will be disabled for %q.", e.Node, e.Owner)
}

// GroupLookup returns the tree a group node instantiates, or nil.
type GroupLookup func(node *scene.Node) *scene.NodeTree

// Validate checks every node of tree, descending into group instances. A
// group whose tree cannot be found is unsupported. owner names the material
// or world in the returned error.
func Validate(tree *scene.NodeTree, owner string, groups GroupLookup) error {
	for i := range tree.Nodes {
		n := &tree.Nodes[i]
		if !validNode(n, groups, map[*scene.NodeTree]bool{}) {
			return &UnsupportedError{Node: n.Name, Owner: owner}
		}
	}
	return nil
}

func validNode(n *scene.Node, groups GroupLookup, open map[*scene.NodeTree]bool) bool {
	if n.IDName != GroupIDName {
		return Supported(n.IDName)
	}
	sub := groups(n)
	if sub == nil || open[sub] {
		return false
	}
	open[sub] = true
	defer delete(open, sub)
	for i := range sub.Nodes {
		if !validNode(&sub.Nodes[i], groups, open) {
			return false
		}
	}
	return true
}
