package mesh

// MeshBuilderOption is a functional option for configuring a Mesh during creation.
type MeshBuilderOption func(*mesh)

// WithName sets the mesh identifier.
//
// Parameters:
//   - name: the mesh name
//
// Returns:
//   - MeshBuilderOption: the configured option
func WithName(name string) MeshBuilderOption {
	return func(m *mesh) {
		m.name = name
	}
}

// WithPositions installs the live position buffer (3 floats per vertex).
//
// Parameters:
//   - data: the position data, owned by the mesh afterwards
//
// Returns:
//   - MeshBuilderOption: the configured option
func WithPositions(data []float32) MeshBuilderOption {
	return func(m *mesh) {
		m.SetBuffer(Position, 3, data)
	}
}

// WithNormals installs the live normal buffer (3 floats per vertex).
//
// Parameters:
//   - data: the normal data, owned by the mesh afterwards
//
// Returns:
//   - MeshBuilderOption: the configured option
func WithNormals(data []float32) MeshBuilderOption {
	return func(m *mesh) {
		m.SetBuffer(Normal, 3, data)
	}
}

// WithTangents installs the live tangent buffer (4 floats per vertex:
// direction xyz plus handedness w).
//
// Parameters:
//   - data: the tangent data, owned by the mesh afterwards
//
// Returns:
//   - MeshBuilderOption: the configured option
func WithTangents(data []float32) MeshBuilderOption {
	return func(m *mesh) {
		m.SetBuffer(Tangent, 4, data)
	}
}
