package mesh

// Semantic identifies a named vertex attribute buffer on a Mesh.
type Semantic int

const (
	// Position is the live, deformable vertex position buffer (3 floats per vertex).
	Position Semantic = iota
	// Normal is the live, deformable vertex normal buffer (3 floats per vertex).
	Normal
	// Tangent is the live, deformable tangent buffer (4 floats per vertex:
	// direction xyz plus handedness w). Optional.
	Tangent
	// BindPosePosition is the immutable rest-pose copy of Position.
	BindPosePosition
	// BindPoseNormal is the immutable rest-pose copy of Normal.
	BindPoseNormal
	// BindPoseTangent is the immutable rest-pose copy of Tangent. Optional.
	BindPoseTangent
)

// bindPoseFor maps a live deformable semantic to its rest-pose counterpart.
var bindPoseFor = map[Semantic]Semantic{
	Position: BindPosePosition,
	Normal:   BindPoseNormal,
	Tangent:  BindPoseTangent,
}

// String returns the attribute name for logging and buffer labels.
func (s Semantic) String() string {
	switch s {
	case Position:
		return "position"
	case Normal:
		return "normal"
	case Tangent:
		return "tangent"
	case BindPosePosition:
		return "bind_pose_position"
	case BindPoseNormal:
		return "bind_pose_normal"
	case BindPoseTangent:
		return "bind_pose_tangent"
	default:
		return "unknown"
	}
}

// Buffer is a single vertex attribute buffer: a window over owned contiguous
// float32 storage with an explicit component count per vertex. There is no
// implicit cursor state; readers and writers index with ordinary integers.
type Buffer struct {
	semantic   Semantic
	components int
	data       []float32
}

// Semantic returns the attribute this buffer stores.
//
// Returns:
//   - Semantic: the buffer's semantic
func (b *Buffer) Semantic() Semantic {
	return b.semantic
}

// Components returns the number of float32 elements per vertex (3 for
// positions and normals, 4 for tangents).
//
// Returns:
//   - int: elements per vertex
func (b *Buffer) Components() int {
	return b.components
}

// Data returns the backing storage, or nil if the buffer has been released
// for GPU-only animation and is not CPU-writable.
//
// Returns:
//   - []float32: the backing slice or nil
func (b *Buffer) Data() []float32 {
	return b.data
}

// Writable reports whether the buffer currently has CPU-resident storage.
//
// Returns:
//   - bool: true if Data() is non-nil
func (b *Buffer) Writable() bool {
	return b.data != nil
}

// VertexCount returns the number of vertices this buffer covers.
//
// Returns:
//   - int: len(Data) / Components, or 0 for a released buffer
func (b *Buffer) VertexCount() int {
	if b.data == nil || b.components == 0 {
		return 0
	}
	return len(b.data) / b.components
}
