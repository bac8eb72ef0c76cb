package scene

// NodeType is the evaluated type of a shader node.
type NodeType string

const (
	NodeOutput         NodeType = "OUTPUT"
	NodeOutputMaterial NodeType = "OUTPUT_MATERIAL"
	NodeOutputWorld    NodeType = "OUTPUT_WORLD"
	NodeOutputLamp     NodeType = "OUTPUT_LAMP"
	NodeGroupInstance  NodeType = "GROUP"
	NodeGroupInput     NodeType = "GROUP_INPUT"
	NodeGroupOutput    NodeType = "GROUP_OUTPUT"
	NodeGeometry       NodeType = "GEOMETRY"
	NodeUVMap          NodeType = "UVMAP"
	NodeTexCoord       NodeType = "TEX_COORD"
	NodeNormalMap      NodeType = "NORMAL_MAP"
	NodeMaterial       NodeType = "MATERIAL"
	NodeMaterialExt    NodeType = "MATERIAL_EXT"
	NodeTexture        NodeType = "TEXTURE"
	NodeTexImage       NodeType = "TEX_IMAGE"
	NodeTexEnvironment NodeType = "TEX_ENVIRONMENT"
	NodeRGB            NodeType = "RGB"
)

// NodeTree is an ordered list of nodes and the links between them. Nodes
// and links refer to each other by node name and socket identifier.
type NodeTree struct {
	Nodes  []Node `yaml:"nodes"`
	Links  []Link `yaml:"links"`
	Action Ref    `yaml:"action"`
}

// Node is one shader node.
type Node struct {
	Name       string   `yaml:"name"`
	Type       NodeType `yaml:"type"`
	IDName     string   `yaml:"bl_idname"`
	Group      Ref      `yaml:"node_tree"`
	Texture    Ref      `yaml:"texture"`
	Image      Ref      `yaml:"image"`
	Material   Ref      `yaml:"material"`
	UVLayer    string   `yaml:"uv_layer"`
	ColorLayer string   `yaml:"color_layer"`
	Inputs     []Socket `yaml:"inputs"`
	Outputs    []Socket `yaml:"outputs"`
	Props      Props    `yaml:"props"`
}

// Socket is a node input or output.
type Socket struct {
	Name       string `yaml:"name"`
	Identifier string `yaml:"identifier"`
	Type       string `yaml:"type"`
	Default    any    `yaml:"default_value"`
}

// ID returns the socket identifier, defaulting to its name.
func (s Socket) ID() string {
	if s.Identifier != "" {
		return s.Identifier
	}
	return s.Name
}

// Link connects an output socket to an input socket.
type Link struct {
	FromNode   string `yaml:"from_node"`
	FromSocket string `yaml:"from_socket"`
	ToNode     string `yaml:"to_node"`
	ToSocket   string `yaml:"to_socket"`
	Invalid    bool   `yaml:"invalid"`
}

// Node returns the node with the given name.
func (t *NodeTree) Node(name string) (*Node, bool) {
	for i := range t.Nodes {
		if t.Nodes[i].Name == name {
			return &t.Nodes[i], true
		}
	}
	return nil, false
}

// OutputLinked reports whether the named output socket of a node feeds any
// link.
func (t *NodeTree) OutputLinked(node, socket string) bool {
	for _, l := range t.Links {
		if l.FromNode == node && l.FromSocket == socket {
			return true
		}
	}
	return false
}

// InputLinked reports whether the named input socket of a node is fed by a
// link.
func (t *NodeTree) InputLinked(node, socket string) bool {
	_, ok := t.InputLink(node, socket)
	return ok
}

// InputLink returns the first link feeding the given input socket.
func (t *NodeTree) InputLink(node, socket string) (Link, bool) {
	for _, l := range t.Links {
		if l.ToNode == node && l.ToSocket == socket {
			return l, true
		}
	}
	return Link{}, false
}
