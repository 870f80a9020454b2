package mesh

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuadMesh() Mesh {
	return NewMesh(
		WithName("quad"),
		WithPositions([]float32{
			0, 0, 0,
			1, 0, 0,
			1, 1, 0,
			0, 1, 0,
		}),
		WithNormals([]float32{
			0, 0, 1,
			0, 0, 1,
			0, 0, 1,
			0, 0, 1,
		}),
	)
}

func TestNewMeshBuilders(t *testing.T) {
	m := newQuadMesh()

	assert.Equal(t, "quad", m.Name())
	assert.Equal(t, 4, m.VertexCount())

	pos := m.Buffer(Position)
	require.NotNil(t, pos)
	assert.Equal(t, 3, pos.Components())
	assert.Equal(t, 4, pos.VertexCount())
	assert.True(t, pos.Writable())

	assert.Nil(t, m.Buffer(Tangent))
}

func TestSetBoneInfluencesValidation(t *testing.T) {
	m := newQuadMesh()

	err := m.SetBoneInfluences(make([]uint32, 7), make([]float32, 16), 2)
	assert.ErrorIs(t, err, ErrInfluenceLayout)

	err = m.SetBoneInfluences(make([]uint32, 16), make([]float32, 16), 0)
	assert.ErrorIs(t, err, ErrMaxWeights)

	err = m.SetBoneInfluences(make([]uint32, 16), make([]float32, 16), 5)
	assert.ErrorIs(t, err, ErrMaxWeights)

	assert.False(t, m.IsAnimated())

	err = m.SetBoneInfluences(make([]uint32, 16), make([]float32, 16), 4)
	require.NoError(t, err)
	assert.True(t, m.IsAnimated())
	assert.Equal(t, 4, m.MaxWeightsPerVertex())
}

func TestPrepareForCPUAnimationCapturesBindPose(t *testing.T) {
	m := newQuadMesh()
	m.PrepareForCPUAnimation()

	rest := m.Buffer(BindPosePosition)
	require.NotNil(t, rest)
	assert.Equal(t, m.Buffer(Position).Data(), rest.Data())

	// Deforming the live buffer must not touch the captured rest pose.
	m.Buffer(Position).Data()[0] = 99
	assert.Equal(t, float32(0), rest.Data()[0])

	// Idempotent: a second call keeps the original snapshot.
	m.PrepareForCPUAnimation()
	assert.Equal(t, float32(0), m.Buffer(BindPosePosition).Data()[0])
}

func TestPrepareForGPUAnimationReleasesLiveBuffers(t *testing.T) {
	m := newQuadMesh()
	m.PrepareForGPUAnimation()

	// Live storage is dropped but the rest pose survives, so the vertex
	// count is still derivable.
	assert.False(t, m.Buffer(Position).Writable())
	assert.False(t, m.Buffer(Normal).Writable())
	require.NotNil(t, m.Buffer(BindPosePosition))
	assert.Equal(t, 4, m.VertexCount())

	// Switching back rebuilds live storage from the rest pose.
	m.PrepareForCPUAnimation()
	pos := m.Buffer(Position)
	require.True(t, pos.Writable())
	assert.Equal(t, m.Buffer(BindPosePosition).Data(), pos.Data())
}

func TestDirtyTracking(t *testing.T) {
	m := newQuadMesh()
	assert.Empty(t, m.DirtyBuffers())

	m.MarkDirty(Position, Normal)
	dirty := m.DirtyBuffers()
	assert.ElementsMatch(t, []Semantic{Position, Normal}, dirty)

	m.ClearDirty()
	assert.Empty(t, m.DirtyBuffers())
}

func TestSemanticString(t *testing.T) {
	assert.Equal(t, "position", Position.String())
	assert.Equal(t, "bind_pose_tangent", BindPoseTangent.String())
	assert.Equal(t, "unknown", Semantic(42).String())
}

func TestErrorsCarryMeshName(t *testing.T) {
	m := NewMesh(WithName("broken"), WithPositions([]float32{0, 0, 0}))
	err := m.SetBoneInfluences(nil, nil, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.ErrorIs(t, errors.Cause(err), ErrInfluenceLayout)
}
