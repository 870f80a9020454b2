package renderer

import (
	_ "embed"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"

	"github.com/marrow3d/marrow/engine/renderer/skinning"
)

// skinnedVertexSource is the canonical WGSL definition of the hardware
// skinning vertex stage. The probe prepends a MAX_BONES constant sized to
// the padded bone count before compiling.
//
//go:embed assets/skinned_vertex.wgsl
var skinnedVertexSource string

// capabilityProbe is the wgpu-backed implementation of skinning.CapabilityProbe.
type capabilityProbe struct {
	device Device
}

var _ skinning.CapabilityProbe = &capabilityProbe{}

// NewCapabilityProbe creates a capability probe that validates the hardware
// skinning pipeline against the given device by compiling the skinning
// shader and creating its pipeline layout.
//
// Parameters:
//   - d: the device to validate against
//
// Returns:
//   - skinning.CapabilityProbe: the probe
func NewCapabilityProbe(d Device) skinning.CapabilityProbe {
	return &capabilityProbe{device: d}
}

// Validate performs the one-shot compile validation of the hardware skinning
// shader for the given bone count. Any shader-compile or layout failure is
// returned as a diagnostic for the mode controller to log; it is never fatal.
//
// Parameters:
//   - boneCount: the actual bone count of the skeleton
//
// Returns:
//   - error: the compile/layout diagnostic, or nil on success
func (p *capabilityProbe) Validate(boneCount int) error {
	// Pad to the next multiple of ten so the compiled array matches the
	// bone-count override the mode controller sets on materials.
	padded := (boneCount + 9) / 10 * 10
	src := fmt.Sprintf("const MAX_BONES: u32 = %du;\n\n%s", padded, skinnedVertexSource)

	module, err := p.device.Handle().CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "hardware_skinning_probe",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: src,
		},
	})
	if err != nil {
		return errors.Wrap(err, "skinning shader failed to compile")
	}
	defer module.Release()

	bgl, err := p.device.Handle().CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "hardware_skinning_probe",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeUniform,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeReadOnlyStorage,
				},
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "skinning bind group layout rejected")
	}
	defer bgl.Release()

	layout, err := p.device.Handle().CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "hardware_skinning_probe",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		return errors.Wrap(err, "skinning pipeline layout rejected")
	}
	layout.Release()

	return nil
}
