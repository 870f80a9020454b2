package skinning

import (
	"github.com/marrow3d/marrow/engine/renderer/material"
	"github.com/marrow3d/marrow/engine/scene"
	"github.com/marrow3d/marrow/engine/skeleton"
)

// controlConfig collects builder options before the control is assembled.
type controlConfig struct {
	skel           *skeleton.Skeleton
	probe          CapabilityProbe
	preferHardware bool
	materials      []material.Material
	subtree        *scene.Node
}

// ControlBuilderOption is a functional option for configuring a Control during creation.
type ControlBuilderOption func(*controlConfig)

// WithSkeleton sets the skeleton the control deforms against. Required.
//
// Parameters:
//   - s: the skeleton
//
// Returns:
//   - ControlBuilderOption: the configured option
func WithSkeleton(s *skeleton.Skeleton) ControlBuilderOption {
	return func(c *controlConfig) {
		c.skel = s
	}
}

// WithProbe sets the hardware capability probe used for the one-shot test.
//
// Parameters:
//   - p: the capability probe
//
// Returns:
//   - ControlBuilderOption: the configured option
func WithProbe(p CapabilityProbe) ControlBuilderOption {
	return func(c *controlConfig) {
		c.probe = p
	}
}

// WithPreferHardware requests hardware skinning; the one-shot capability
// probe decides whether it actually engages.
//
// Parameters:
//   - prefer: true to prefer hardware skinning
//
// Returns:
//   - ControlBuilderOption: the configured option
func WithPreferHardware(prefer bool) ControlBuilderOption {
	return func(c *controlConfig) {
		c.preferHardware = prefer
	}
}

// WithMaterials sets the materials carrying the shared skinning overrides.
//
// Parameters:
//   - mats: the materials
//
// Returns:
//   - ControlBuilderOption: the configured option
func WithMaterials(mats ...material.Material) ControlBuilderOption {
	return func(c *controlConfig) {
		c.materials = mats
	}
}

// WithSubtree sets the owning scene subtree, building the initial target set.
//
// Parameters:
//   - root: the scene subtree
//
// Returns:
//   - ControlBuilderOption: the configured option
func WithSubtree(root *scene.Node) ControlBuilderOption {
	return func(c *controlConfig) {
		c.subtree = root
	}
}
