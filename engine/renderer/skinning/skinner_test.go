package skinning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marrow3d/marrow/common"
	"github.com/marrow3d/marrow/engine/mesh"
)

// buildSkinnedMesh creates a prepared CPU-animated mesh with the given vertex
// data and influence layout (4 slots per vertex).
func buildSkinnedMesh(t *testing.T, positions, normals, tangents []float32, indices []uint32, weights []float32, maxWeights int) mesh.Mesh {
	t.Helper()
	opts := []mesh.MeshBuilderOption{
		mesh.WithName("test"),
		mesh.WithPositions(positions),
		mesh.WithNormals(normals),
	}
	if tangents != nil {
		opts = append(opts, mesh.WithTangents(tangents))
	}
	m := mesh.NewMesh(opts...)
	require.NoError(t, m.SetBoneInfluences(indices, weights, maxWeights))
	m.PrepareForCPUAnimation()
	return m
}

// uniformInfluences returns 4-slot influence data binding every vertex fully
// to bone 0.
func uniformInfluences(vertexCount int) ([]uint32, []float32) {
	indices := make([]uint32, vertexCount*4)
	weights := make([]float32, vertexCount*4)
	for v := 0; v < vertexCount; v++ {
		weights[v*4] = 1
	}
	return indices, weights
}

func TestSkinIdentityPreservesBindPose(t *testing.T) {
	positions := []float32{1, 2, 3, -4, 5, -6}
	normals := []float32{0, 0, 1, 0, 1, 0}
	indices, weights := uniformInfluences(2)
	m := buildSkinnedMesh(t, positions, normals, nil, indices, weights, 1)

	pool := NewScratchPool()
	require.NoError(t, Skin(m, []common.Mat4{common.Identity()}, pool))

	assert.Equal(t, []float32{1, 2, 3, -4, 5, -6}, m.Buffer(mesh.Position).Data())
	assert.Equal(t, []float32{0, 0, 1, 0, 1, 0}, m.Buffer(mesh.Normal).Data())
}

func TestSkinZeroFirstWeightSkipsVertex(t *testing.T) {
	positions := []float32{1, 1, 1, 2, 2, 2}
	normals := []float32{0, 0, 1, 0, 0, 1}
	// Vertex 0 deforms normally; vertex 1 has a zero first slot but junk in
	// the later slots, which must not be consulted.
	indices := []uint32{0, 0, 0, 0, 0, 1, 1, 1}
	weights := []float32{1, 0, 0, 0, 0, 0.5, 0.3, 0.2}
	m := buildSkinnedMesh(t, positions, normals, nil, indices, weights, 4)

	offsets := []common.Mat4{common.Translation(10, 0, 0), common.Translation(0, 10, 0)}
	pool := NewScratchPool()
	require.NoError(t, Skin(m, offsets, pool))

	got := m.Buffer(mesh.Position).Data()
	assert.Equal(t, []float32{11, 1, 1}, got[:3], "vertex 0 deforms")
	assert.Equal(t, []float32{2, 2, 2}, got[3:], "vertex 1 keeps its bind pose")
}

func TestSkinBlendsWeightedTranslations(t *testing.T) {
	positions := []float32{0, 0, 0}
	normals := []float32{0, 0, 1}
	indices := []uint32{0, 1, 0, 0}
	weights := []float32{0.3, 0.7, 0, 0}
	m := buildSkinnedMesh(t, positions, normals, nil, indices, weights, 2)

	offsets := []common.Mat4{common.Translation(1, 0, 0), common.Translation(0, 1, 0)}
	pool := NewScratchPool()
	require.NoError(t, Skin(m, offsets, pool))

	got := m.Buffer(mesh.Position).Data()
	assert.InDelta(t, 0.3, got[0], 1e-6)
	assert.InDelta(t, 0.7, got[1], 1e-6)
	assert.InDelta(t, 0, got[2], 1e-6)
}

func TestSkinEqualWeightsIdenticalBonesIsNoOp(t *testing.T) {
	positions := []float32{2, -3, 4}
	normals := []float32{0, 1, 0}
	indices := []uint32{0, 1, 0, 0}
	weights := []float32{0.5, 0.5, 0, 0}
	m := buildSkinnedMesh(t, positions, normals, nil, indices, weights, 2)

	// Both influences carry the same transform; the weights partition unity,
	// so the blend reproduces the single-bone result exactly.
	offsets := []common.Mat4{common.Identity(), common.Identity()}
	pool := NewScratchPool()
	require.NoError(t, Skin(m, offsets, pool))

	assert.Equal(t, []float32{2, -3, 4}, m.Buffer(mesh.Position).Data())
	assert.Equal(t, []float32{0, 1, 0}, m.Buffer(mesh.Normal).Data())
}

func TestSkinNormalsIgnoreTranslation(t *testing.T) {
	positions := []float32{5, 5, 5}
	normals := []float32{0, 1, 0}
	indices, weights := uniformInfluences(1)
	m := buildSkinnedMesh(t, positions, normals, nil, indices, weights, 1)

	pool := NewScratchPool()
	require.NoError(t, Skin(m, []common.Mat4{common.Translation(100, 100, 100)}, pool))

	assert.Equal(t, []float32{105, 105, 105}, m.Buffer(mesh.Position).Data())
	assert.Equal(t, []float32{0, 1, 0}, m.Buffer(mesh.Normal).Data(),
		"normals take only the linear block")
}

func TestSkinTangentHandednessPassthrough(t *testing.T) {
	positions := []float32{0, 0, 0}
	normals := []float32{0, 0, 1}
	tangents := []float32{1, 0, 0, -1}
	indices, weights := uniformInfluences(1)
	m := buildSkinnedMesh(t, positions, normals, tangents, indices, weights, 1)

	// 90 degrees about Z rotates the tangent direction; w must survive.
	s := float32(0.70710678)
	rot := common.FromTRS([3]float32{}, [4]float32{0, 0, s, s}, [3]float32{1, 1, 1})
	pool := NewScratchPool()
	require.NoError(t, Skin(m, []common.Mat4{rot}, pool))

	tan := m.Buffer(mesh.Tangent).Data()
	assert.InDelta(t, 0, tan[0], 1e-5)
	assert.InDelta(t, 1, tan[1], 1e-5)
	assert.InDelta(t, 0, tan[2], 1e-5)
	assert.Equal(t, float32(-1), tan[3])
}

func TestSkinMultipleChunks(t *testing.T) {
	// Three hundred vertices forces three chunk iterations.
	const vc = 300
	positions := make([]float32, vc*3)
	normals := make([]float32, vc*3)
	tangents := make([]float32, vc*4)
	for v := 0; v < vc; v++ {
		positions[v*3] = float32(v)
		normals[v*3+2] = 1
		tangents[v*4] = 1
		tangents[v*4+3] = 1
	}
	indices, weights := uniformInfluences(vc)
	m := buildSkinnedMesh(t, positions, normals, tangents, indices, weights, 1)

	pool := NewScratchPool()
	require.NoError(t, Skin(m, []common.Mat4{common.Translation(0, 1, 0)}, pool))

	pos := m.Buffer(mesh.Position).Data()
	tan := m.Buffer(mesh.Tangent).Data()
	for v := 0; v < vc; v++ {
		assert.Equal(t, float32(v), pos[v*3], "vertex %d x", v)
		assert.Equal(t, float32(1), pos[v*3+1], "vertex %d y", v)
		assert.Equal(t, float32(1), tan[v*4], "vertex %d tangent x", v)
		assert.Equal(t, float32(1), tan[v*4+3], "vertex %d handedness", v)
	}
}

func TestSkinInvalidMaxWeights(t *testing.T) {
	m := mesh.NewMesh(
		mesh.WithName("unconfigured"),
		mesh.WithPositions([]float32{0, 0, 0}),
		mesh.WithNormals([]float32{0, 0, 1}),
	)
	m.PrepareForCPUAnimation()

	pool := NewScratchPool()
	err := Skin(m, []common.Mat4{common.Identity()}, pool)
	assert.ErrorIs(t, err, mesh.ErrMaxWeights)

	// Validation failed before the scratch region was borrowed.
	s, err := pool.Acquire()
	require.NoError(t, err)
	pool.Release(s)
}

func TestSkinUnpreparedMesh(t *testing.T) {
	positions := []float32{0, 0, 0}
	normals := []float32{0, 0, 1}
	indices, weights := uniformInfluences(1)
	m := buildSkinnedMesh(t, positions, normals, nil, indices, weights, 1)
	m.PrepareForGPUAnimation()

	pool := NewScratchPool()
	err := Skin(m, []common.Mat4{common.Identity()}, pool)
	assert.Error(t, err)

	s, err := pool.Acquire()
	require.NoError(t, err)
	pool.Release(s)
}

func TestSkinMarksDeformedBuffersDirty(t *testing.T) {
	positions := []float32{0, 0, 0}
	normals := []float32{0, 0, 1}
	tangents := []float32{1, 0, 0, 1}
	indices, weights := uniformInfluences(1)
	m := buildSkinnedMesh(t, positions, normals, tangents, indices, weights, 1)

	pool := NewScratchPool()
	require.NoError(t, Skin(m, []common.Mat4{common.Identity()}, pool))
	assert.ElementsMatch(t, []mesh.Semantic{mesh.Position, mesh.Normal, mesh.Tangent}, m.DirtyBuffers())
}

func TestResetThenSkinIsRepeatable(t *testing.T) {
	positions := []float32{1, 0, 0, 0, 1, 0}
	normals := []float32{0, 0, 1, 0, 0, 1}
	indices, weights := uniformInfluences(2)
	m := buildSkinnedMesh(t, positions, normals, nil, indices, weights, 1)

	offsets := []common.Mat4{common.Translation(2, 0, 0)}
	pool := NewScratchPool()

	require.NoError(t, ResetToBindPose(m))
	require.NoError(t, Skin(m, offsets, pool))
	first := append([]float32(nil), m.Buffer(mesh.Position).Data()...)

	// A second full frame over the already-deformed buffers must land on the
	// same result, not accumulate.
	require.NoError(t, ResetToBindPose(m))
	require.NoError(t, Skin(m, offsets, pool))
	assert.Equal(t, first, m.Buffer(mesh.Position).Data())
	assert.Equal(t, []float32{3, 0, 0}, first[:3])
}

func TestResetToBindPoseRestoresLiveBuffers(t *testing.T) {
	positions := []float32{1, 2, 3}
	normals := []float32{0, 0, 1}
	indices, weights := uniformInfluences(1)
	m := buildSkinnedMesh(t, positions, normals, nil, indices, weights, 1)

	m.Buffer(mesh.Position).Data()[0] = 42
	require.NoError(t, ResetToBindPose(m))
	assert.Equal(t, []float32{1, 2, 3}, m.Buffer(mesh.Position).Data())
}

func TestResetToBindPoseRecoversReleasedBuffers(t *testing.T) {
	positions := []float32{7, 8, 9}
	normals := []float32{0, 1, 0}
	indices, weights := uniformInfluences(1)
	m := buildSkinnedMesh(t, positions, normals, nil, indices, weights, 1)

	// Simulate a previous hardware phase that dropped CPU storage; the reset
	// quietly re-materializes it.
	m.PrepareForGPUAnimation()
	require.NoError(t, ResetToBindPose(m))
	assert.Equal(t, []float32{7, 8, 9}, m.Buffer(mesh.Position).Data())
}

func TestResetToBindPoseMissingBuffers(t *testing.T) {
	m := mesh.NewMesh(mesh.WithName("positions_only"),
		mesh.WithPositions([]float32{0, 0, 0}))
	err := ResetToBindPose(m)
	assert.Error(t, err, "a mesh without normals cannot be reset")
}
