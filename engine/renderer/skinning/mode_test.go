package skinning

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marrow3d/marrow/engine/mesh"
	"github.com/marrow3d/marrow/engine/renderer/material"
)

// fakeProbe records validation attempts and returns a fixed outcome.
type fakeProbe struct {
	calls int
	err   error
}

func (p *fakeProbe) Validate(boneCount int) error {
	p.calls++
	return p.err
}

func newTargetMesh(t *testing.T) mesh.Mesh {
	t.Helper()
	m := mesh.NewMesh(
		mesh.WithName("target"),
		mesh.WithPositions([]float32{0, 0, 0}),
		mesh.WithNormals([]float32{0, 0, 1}),
	)
	require.NoError(t, m.SetBoneInfluences(make([]uint32, 4), []float32{1, 0, 0, 0}, 1))
	return m
}

func TestPaddedBoneCount(t *testing.T) {
	assert.Equal(t, 10, paddedBoneCount(1))
	assert.Equal(t, 10, paddedBoneCount(10))
	assert.Equal(t, 20, paddedBoneCount(11))
	assert.Equal(t, 60, paddedBoneCount(52))
	assert.Equal(t, 260, paddedBoneCount(255))
}

func TestUpdateProbesOnceAndEngagesHardware(t *testing.T) {
	probe := &fakeProbe{}
	c := NewModeController(probe, true)
	assert.Equal(t, ModeUntested, c.Mode())
	assert.False(t, c.CapabilityKnown())

	got := c.Update(30)
	assert.Equal(t, ModeHardware, got)
	assert.True(t, c.CapabilityKnown())
	assert.True(t, c.HardwareSupported())
	assert.Equal(t, 1, probe.calls)

	// Later frames never re-run the probe.
	for i := 0; i < 3; i++ {
		assert.Equal(t, ModeHardware, c.Update(30))
	}
	assert.Equal(t, 1, probe.calls)
}

func TestUpdateBoneCeiling(t *testing.T) {
	// At the ceiling the probe still runs.
	probe := &fakeProbe{}
	c := NewModeController(probe, true)
	assert.Equal(t, ModeHardware, c.Update(255))
	assert.Equal(t, 1, probe.calls)

	// One past the ceiling the probe is never attempted.
	probe = &fakeProbe{}
	c = NewModeController(probe, true)
	assert.Equal(t, ModeSoftware, c.Update(256))
	assert.Equal(t, 0, probe.calls)
	assert.True(t, c.CapabilityKnown())
	assert.False(t, c.HardwareSupported())
}

func TestUpdateProbeFailureFallsBackPermanently(t *testing.T) {
	probe := &fakeProbe{err: errors.New("shader rejected")}
	c := NewModeController(probe, true)

	assert.Equal(t, ModeSoftware, c.Update(30))
	assert.True(t, c.CapabilityKnown())
	assert.False(t, c.HardwareSupported())
	assert.Equal(t, 1, probe.calls)

	// Re-requesting hardware cannot resurrect it; the outcome is sticky.
	c.SetPreferHardware(true)
	assert.Equal(t, ModeSoftware, c.Update(30))
	assert.Equal(t, 1, probe.calls)
}

func TestUpdateSoftwarePreferredSkipsProbe(t *testing.T) {
	probe := &fakeProbe{}
	c := NewModeController(probe, false)

	assert.Equal(t, ModeSoftware, c.Update(30))
	assert.Equal(t, 0, probe.calls)
	assert.False(t, c.CapabilityKnown())
}

func TestUpdateNilProbeFallsBack(t *testing.T) {
	c := NewModeController(nil, true)
	assert.Equal(t, ModeSoftware, c.Update(30))
	assert.True(t, c.CapabilityKnown())
	assert.False(t, c.HardwareSupported())
}

func TestPreferenceToggleSwitchesWithoutReprobe(t *testing.T) {
	probe := &fakeProbe{}
	c := NewModeController(probe, true)
	require.Equal(t, ModeHardware, c.Update(30))

	c.SetPreferHardware(false)
	assert.Equal(t, ModeSoftware, c.Update(30))

	c.SetPreferHardware(true)
	assert.Equal(t, ModeHardware, c.Update(30))
	assert.Equal(t, 1, probe.calls)
}

func TestTransitionsDriveMaterialsAndTargets(t *testing.T) {
	probe := &fakeProbe{}
	c := NewModeController(probe, true)

	mat := material.NewMaterial(material.WithName("skin"))
	target := newTargetMesh(t)
	c.SetMaterials([]material.Material{mat})
	c.SetTargets([]mesh.Mesh{target})

	require.Equal(t, ModeHardware, c.Update(52))

	count, ok := mat.BoneCountOverride()
	assert.True(t, ok)
	assert.Equal(t, 60, count, "bone count override pads to the next multiple of ten")
	assert.False(t, target.Buffer(mesh.Position).Writable(), "hardware mode releases CPU storage")

	c.SetPreferHardware(false)
	require.Equal(t, ModeSoftware, c.Update(52))

	_, ok = mat.BoneCountOverride()
	assert.False(t, ok)
	_, ok = mat.BoneMatrices()
	assert.False(t, ok)
	assert.True(t, target.Buffer(mesh.Position).Writable(), "software mode restores CPU storage")
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "untested", ModeUntested.String())
	assert.Equal(t, "software", ModeSoftware.String())
	assert.Equal(t, "hardware", ModeHardware.String())
}
