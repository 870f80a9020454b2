package scene

import (
	"github.com/marrow3d/marrow/engine/mesh"
)

// Node is one element of a scene subtree: either a group carrying children or
// a leaf carrying a mesh. The tagged form keeps traversal free of type
// switches over renderer-specific node kinds.
type Node struct {
	name     string
	children []*Node
	mesh     mesh.Mesh
}

// NewGroup creates a group node with the given children.
//
// Parameters:
//   - name: the node identifier
//   - children: initial child nodes
//
// Returns:
//   - *Node: the group node
func NewGroup(name string, children ...*Node) *Node {
	return &Node{name: name, children: children}
}

// NewLeaf creates a leaf node carrying a mesh.
//
// Parameters:
//   - name: the node identifier
//   - m: the mesh
//
// Returns:
//   - *Node: the leaf node
func NewLeaf(name string, m mesh.Mesh) *Node {
	return &Node{name: name, mesh: m}
}

// Name returns the node identifier.
func (n *Node) Name() string {
	return n.name
}

// Mesh returns the mesh carried by a leaf node, or nil for a group.
func (n *Node) Mesh() mesh.Mesh {
	return n.mesh
}

// Children returns the node's children.
func (n *Node) Children() []*Node {
	return n.children
}

// AddChild appends a child node.
//
// Parameters:
//   - child: the node to append
func (n *Node) AddChild(child *Node) {
	n.children = append(n.children, child)
}

// Walk visits the subtree rooted at n in depth-first order, calling visit for
// every node. Returning false from visit stops the traversal.
//
// Parameters:
//   - visit: the visitor callback
//
// Returns:
//   - bool: false if the traversal was stopped early
func (n *Node) Walk(visit func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !visit(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(visit) {
			return false
		}
	}
	return true
}

// CollectAnimatedMeshes gathers every mesh in the subtree that carries bone
// influence buffers. This is the target-set rebuild invoked whenever the
// owning subtree changes; meshes without influence data never enter the set.
//
// Parameters:
//   - root: the subtree to scan
//
// Returns:
//   - []mesh.Mesh: the animated meshes in traversal order
func CollectAnimatedMeshes(root *Node) []mesh.Mesh {
	var out []mesh.Mesh
	root.Walk(func(n *Node) bool {
		if n.mesh != nil && n.mesh.IsAnimated() {
			out = append(out, n.mesh)
		}
		return true
	})
	return out
}
