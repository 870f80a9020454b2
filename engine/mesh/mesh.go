package mesh

import (
	"github.com/pkg/errors"
)

// ErrInfluenceLayout is returned when per-vertex bone influence data does not
// match the required 4-slot contiguous layout.
var ErrInfluenceLayout = errors.New("bone influence buffers must hold exactly 4 slots per vertex")

// ErrMaxWeights is returned when a mesh declares a weights-per-vertex count
// outside the supported [1,4] range.
var ErrMaxWeights = errors.New("max weights per vertex must be in [1,4]")

// mesh is the implementation of the Mesh interface.
type mesh struct {
	name    string
	buffers map[Semantic]*Buffer

	// Per-vertex influence data, 4 slots per vertex. Vertex i occupies
	// slots [4i, 4i+4) in both slices. Slots past maxWeightsPerVertex are
	// zero-weight padding and are never read as influences.
	boneIndices         []uint32
	boneWeights         []float32
	maxWeightsPerVertex int

	dirty map[Semantic]bool
}

// Mesh is a named set of vertex attribute buffers plus optional per-vertex
// bone influence data. Live buffers (Position, Normal, Tangent) are the
// deformable copies consumed by the renderer; their BindPose* counterparts
// hold the immutable rest pose. A mesh is animated iff it carries bone
// influence data.
type Mesh interface {
	// Name retrieves the mesh identifier.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// VertexCount returns the number of vertices, derived from the bind-pose
	// position buffer (which survives GPU-mode buffer release).
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// Buffer retrieves the attribute buffer for the given semantic, or nil if
	// the mesh does not carry it.
	//
	// Parameters:
	//   - sem: the attribute semantic
	//
	// Returns:
	//   - *Buffer: the buffer or nil
	Buffer(sem Semantic) *Buffer

	// SetBuffer installs or replaces an attribute buffer. The data slice is
	// owned by the mesh afterwards.
	//
	// Parameters:
	//   - sem: the attribute semantic
	//   - components: float32 elements per vertex
	//   - data: the backing storage
	SetBuffer(sem Semantic, components int, data []float32)

	// IsAnimated reports whether the mesh carries bone influence buffers.
	//
	// Returns:
	//   - bool: true if bone indices and weights are present
	IsAnimated() bool

	// BoneIndices returns the per-vertex bone index slots (4 per vertex),
	// or nil for a non-animated mesh.
	//
	// Returns:
	//   - []uint32: the bone index slots
	BoneIndices() []uint32

	// BoneWeights returns the per-vertex bone weight slots (4 per vertex),
	// or nil for a non-animated mesh.
	//
	// Returns:
	//   - []float32: the bone weight slots
	BoneWeights() []float32

	// MaxWeightsPerVertex returns how many leading influence slots are
	// meaningful for each vertex.
	//
	// Returns:
	//   - int: the declared weights-per-vertex count
	MaxWeightsPerVertex() int

	// SetBoneInfluences installs per-vertex influence data. Both slices must
	// hold exactly 4 slots per vertex and maxWeights must be in [1,4].
	//
	// Parameters:
	//   - indices: bone index slots, 4 per vertex
	//   - weights: bone weight slots, 4 per vertex
	//   - maxWeights: number of meaningful leading slots per vertex
	//
	// Returns:
	//   - error: ErrInfluenceLayout or ErrMaxWeights on invalid data
	SetBoneInfluences(indices []uint32, weights []float32, maxWeights int) error

	// PrepareForCPUAnimation materializes array-backed storage for software
	// skinning: bind-pose copies are captured from the live buffers if they
	// do not exist yet, and released live buffers are reallocated from the
	// bind pose. Idempotent.
	PrepareForCPUAnimation()

	// PrepareForGPUAnimation releases the CPU-writable live buffer storage.
	// The bind-pose copies are retained; the GPU reads those directly and
	// applies the skinning transform in the shader. Idempotent.
	PrepareForGPUAnimation()

	// MarkDirty flags live buffers as modified since the last upload.
	//
	// Parameters:
	//   - sems: the semantics to flag
	MarkDirty(sems ...Semantic)

	// DirtyBuffers returns the semantics flagged since the last ClearDirty,
	// consumed by the rendering pipeline's upload stage.
	//
	// Returns:
	//   - []Semantic: the dirty semantics
	DirtyBuffers() []Semantic

	// ClearDirty resets the dirty flags after an upload.
	ClearDirty()
}

var _ Mesh = &mesh{}

// NewMesh creates a new Mesh instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of MeshBuilderOption functions to configure the Mesh
//
// Returns:
//   - Mesh: a new instance of Mesh configured with the provided options
func NewMesh(options ...MeshBuilderOption) Mesh {
	m := &mesh{
		buffers: make(map[Semantic]*Buffer),
		dirty:   make(map[Semantic]bool),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) VertexCount() int {
	if b := m.buffers[BindPosePosition]; b != nil {
		return b.VertexCount()
	}
	if b := m.buffers[Position]; b != nil {
		return b.VertexCount()
	}
	return 0
}

func (m *mesh) Buffer(sem Semantic) *Buffer {
	return m.buffers[sem]
}

func (m *mesh) SetBuffer(sem Semantic, components int, data []float32) {
	m.buffers[sem] = &Buffer{
		semantic:   sem,
		components: components,
		data:       data,
	}
}

func (m *mesh) IsAnimated() bool {
	return len(m.boneIndices) > 0 && len(m.boneWeights) > 0
}

func (m *mesh) BoneIndices() []uint32 {
	return m.boneIndices
}

func (m *mesh) BoneWeights() []float32 {
	return m.boneWeights
}

func (m *mesh) MaxWeightsPerVertex() int {
	return m.maxWeightsPerVertex
}

func (m *mesh) SetBoneInfluences(indices []uint32, weights []float32, maxWeights int) error {
	vc := m.VertexCount()
	if len(indices) != vc*4 || len(weights) != vc*4 {
		return errors.Wrapf(ErrInfluenceLayout, "mesh %q: got %d indices and %d weights for %d vertices",
			m.name, len(indices), len(weights), vc)
	}
	if maxWeights < 1 || maxWeights > 4 {
		return errors.Wrapf(ErrMaxWeights, "mesh %q: got %d", m.name, maxWeights)
	}
	m.boneIndices = indices
	m.boneWeights = weights
	m.maxWeightsPerVertex = maxWeights
	return nil
}

func (m *mesh) PrepareForCPUAnimation() {
	for live, rest := range bindPoseFor {
		lb := m.buffers[live]
		rb := m.buffers[rest]

		// Capture the rest pose from the live buffer the first time through.
		if rb == nil && lb != nil && lb.data != nil {
			snap := make([]float32, len(lb.data))
			copy(snap, lb.data)
			m.SetBuffer(rest, lb.components, snap)
			rb = m.buffers[rest]
		}
		if rb == nil {
			continue
		}

		// Reallocate a released live buffer from the rest pose.
		if lb == nil || lb.data == nil {
			data := make([]float32, len(rb.data))
			copy(data, rb.data)
			m.SetBuffer(live, rb.components, data)
		}
	}
}

func (m *mesh) PrepareForGPUAnimation() {
	for live, rest := range bindPoseFor {
		lb := m.buffers[live]
		if lb == nil || lb.data == nil {
			continue
		}
		// Never drop vertex data without a rest-pose copy to restore from.
		if m.buffers[rest] == nil {
			snap := make([]float32, len(lb.data))
			copy(snap, lb.data)
			m.SetBuffer(rest, lb.components, snap)
		}
		lb.data = nil
	}
}

func (m *mesh) MarkDirty(sems ...Semantic) {
	for _, s := range sems {
		m.dirty[s] = true
	}
}

func (m *mesh) DirtyBuffers() []Semantic {
	out := make([]Semantic, 0, len(m.dirty))
	for s := range m.dirty {
		out = append(out, s)
	}
	return out
}

func (m *mesh) ClearDirty() {
	clear(m.dirty)
}
