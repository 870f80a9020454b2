package skinning

import (
	"log/slog"

	"github.com/marrow3d/marrow/common"
	"github.com/marrow3d/marrow/engine/mesh"
	"github.com/marrow3d/marrow/engine/renderer/material"
)

// Mode identifies which skinning pipeline is currently wired to the mesh
// buffers and material parameters.
type Mode int

const (
	// ModeUntested means no pipeline has been wired yet; the first Update
	// resolves it to software or hardware.
	ModeUntested Mode = iota
	// ModeSoftware means the CPU skin pass owns the live buffers.
	ModeSoftware
	// ModeHardware means the GPU shader deforms vertices and the live
	// CPU-writable buffers are released.
	ModeHardware
)

// String returns the mode name for logging.
func (m Mode) String() string {
	switch m {
	case ModeSoftware:
		return "software"
	case ModeHardware:
		return "hardware"
	default:
		return "untested"
	}
}

// maxHardwareBones is the hard bone-count ceiling of the hardware pipeline;
// past it the capability probe is not even attempted.
const maxHardwareBones = 255

// paddedBoneCount returns the next multiple of ten at or above n, the slack
// used to size the shader-side bone matrix array.
func paddedBoneCount(n int) int {
	return (n + 9) / 10 * 10
}

// CapabilityProbe validates that the target hardware/shader pipeline supports
// hardware skinning for the current bone count. Implemented by the renderer;
// faked in tests.
type CapabilityProbe interface {
	// Validate attempts a one-shot compile/render validation of the hardware
	// skinning pipeline.
	//
	// Parameters:
	//   - boneCount: the actual bone count of the skeleton
	//
	// Returns:
	//   - error: a diagnostic on shader-compile or pipeline failure
	Validate(boneCount int) error
}

// ModeController is the per-control state machine deciding software versus
// hardware skinning. The capability probe runs at most once for the lifetime
// of the controller: a probe failure (or a bone count past the hardware
// ceiling) permanently disables hardware mode, logged as a diagnostic and
// never retried.
type ModeController struct {
	preferHardware bool

	state           Mode
	capabilityKnown bool
	supported       bool

	probe     CapabilityProbe
	materials []material.Material
	targets   []mesh.Mesh
}

// NewModeController creates a controller in the untested state.
//
// Parameters:
//   - probe: the hardware capability probe
//   - preferHardware: whether hardware skinning should be attempted
//
// Returns:
//   - *ModeController: the new controller
func NewModeController(probe CapabilityProbe, preferHardware bool) *ModeController {
	return &ModeController{
		probe:          probe,
		preferHardware: preferHardware,
		state:          ModeUntested,
	}
}

// SetTargets replaces the mesh set switched between CPU and GPU buffer modes
// on transitions. Called when the owning subtree changes.
//
// Parameters:
//   - targets: the animated target meshes
func (c *ModeController) SetTargets(targets []mesh.Mesh) {
	c.targets = targets
}

// SetMaterials replaces the materials carrying the shared skinning overrides.
//
// Parameters:
//   - materials: the materials to manage
func (c *ModeController) SetMaterials(materials []material.Material) {
	c.materials = materials
}

// SetPreferHardware changes the preferred pipeline. Taking effect is deferred
// to the next Update; the capability probe never re-runs either way.
//
// Parameters:
//   - prefer: true to prefer hardware skinning
func (c *ModeController) SetPreferHardware(prefer bool) {
	c.preferHardware = prefer
}

// Mode returns the currently wired pipeline.
//
// Returns:
//   - Mode: the active mode
func (c *ModeController) Mode() Mode {
	return c.state
}

// CapabilityKnown reports whether the one-shot hardware test has run.
//
// Returns:
//   - bool: true once the probe outcome (or ceiling rejection) is recorded
func (c *ModeController) CapabilityKnown() bool {
	return c.capabilityKnown
}

// HardwareSupported reports the recorded probe outcome. Meaningless until
// CapabilityKnown returns true.
//
// Returns:
//   - bool: true if the probe validated hardware skinning
func (c *ModeController) HardwareSupported() bool {
	return c.supported
}

// Update evaluates the mode transition once per visible frame and performs
// any buffer/parameter switching. The returned mode is fixed for the frame:
// callers must not begin buffer mutation before Update returns.
//
// Parameters:
//   - boneCount: the skeleton's actual bone count
//
// Returns:
//   - Mode: the pipeline to use this frame
func (c *ModeController) Update(boneCount int) Mode {
	switch {
	case c.preferHardware && !c.capabilityKnown:
		c.capabilityKnown = true
		if boneCount > maxHardwareBones {
			c.supported = false
			slog.Warn("hardware skinning unavailable: bone count exceeds pipeline ceiling",
				"bones", boneCount, "max", maxHardwareBones)
			c.switchToSoftware()
			break
		}
		if c.probe == nil {
			c.supported = false
			slog.Warn("hardware skinning requested without a capability probe, falling back to software")
			c.switchToSoftware()
			break
		}
		c.switchToHardware(boneCount)
		if err := c.probe.Validate(boneCount); err != nil {
			c.supported = false
			slog.Warn("hardware skinning probe failed, falling back to software", "error", err)
			c.switchToSoftware()
			break
		}
		c.supported = true

	case c.preferHardware && c.supported && c.state != ModeHardware:
		c.switchToHardware(boneCount)

	case !c.preferHardware && c.state == ModeHardware:
		c.switchToSoftware()
	}

	if c.state == ModeUntested {
		c.switchToSoftware()
	}
	return c.state
}

// RefreshBoneMatrices replaces the bone-matrix-array override on every
// managed material with this frame's offset snapshot. Hardware mode only.
//
// Parameters:
//   - offsets: one offset matrix per bone
func (c *ModeController) RefreshBoneMatrices(offsets []common.Mat4) {
	for _, mat := range c.materials {
		mat.SetBoneMatrices(offsets)
	}
}

// switchToHardware enables the skinning overrides and releases CPU-writable
// buffers on every target. Idempotent when already in hardware mode.
func (c *ModeController) switchToHardware(boneCount int) {
	padded := paddedBoneCount(boneCount)
	for _, mat := range c.materials {
		mat.SetBoneCountOverride(padded)
		mat.SetBoneMatrices(nil)
	}
	for _, m := range c.targets {
		m.PrepareForGPUAnimation()
	}
	c.state = ModeHardware
}

// switchToSoftware disables the skinning overrides and reallocates
// CPU-writable buffers on every target. Idempotent when already in software
// mode.
func (c *ModeController) switchToSoftware() {
	for _, mat := range c.materials {
		mat.ClearSkinningOverrides()
	}
	for _, m := range c.targets {
		m.PrepareForCPUAnimation()
	}
	c.state = ModeSoftware
}
