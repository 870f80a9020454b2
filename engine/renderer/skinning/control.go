package skinning

import (
	"github.com/marrow3d/marrow/common"
	"github.com/marrow3d/marrow/engine/mesh"
	"github.com/marrow3d/marrow/engine/renderer/material"
	"github.com/marrow3d/marrow/engine/scene"
	"github.com/marrow3d/marrow/engine/skeleton"
)

// control is the implementation of the Control interface.
type control struct {
	skel       *skeleton.Skeleton
	controller *ModeController
	pool       *ScratchPool

	targets   []mesh.Mesh
	materials []material.Material

	// offsets is this frame's shared read-only snapshot, reused across
	// frames to avoid per-frame allocation.
	offsets []common.Mat4

	frameProcessed bool
}

// Control drives skinning for one skeleton and its bound meshes, once per
// visible frame: it fixes the mode decision, then either runs the software
// reset+skin pass over every target or refreshes the shared bone-matrix
// array consumed by the GPU pipeline. A second visibility pass within the
// same tick is a no-op until BeginFrame is called again.
type Control interface {
	// Skeleton retrieves the skeleton this control deforms against.
	//
	// Returns:
	//   - *skeleton.Skeleton: the skeleton
	Skeleton() *skeleton.Skeleton

	// Controller retrieves the mode state machine, exposing the active mode
	// and the sticky capability-probe outcome.
	//
	// Returns:
	//   - *ModeController: the mode controller
	Controller() *ModeController

	// Targets retrieves the animated meshes currently bound to the skeleton.
	//
	// Returns:
	//   - []mesh.Mesh: the target set
	Targets() []mesh.Mesh

	// SetSubtree rebuilds the target set from the owning scene subtree,
	// collecting every mesh that carries bone influence buffers. Called by
	// the scene layer whenever the subtree changes.
	//
	// Parameters:
	//   - root: the scene subtree this control is attached to
	SetSubtree(root *scene.Node)

	// BeginFrame opens a new render tick, re-arming RunFrame.
	BeginFrame()

	// RunFrame performs the per-frame skinning work exactly once per tick:
	// offset-matrix snapshot, mode decision, then the software pass
	// (bind-pose reset + skin for every target) or the hardware bone-matrix
	// refresh. Configuration errors abort the pass and propagate; capability
	// and buffer-preparation faults are recovered internally.
	//
	// Returns:
	//   - error: a configuration error from the skin pass
	RunFrame() error
}

var _ Control = &control{}

// NewControl creates a skinning control with the specified options applied.
// A skeleton must be supplied via WithSkeleton; the capability probe defaults
// to none (software only) unless WithProbe is used.
//
// Parameters:
//   - options: a variadic list of ControlBuilderOption functions to configure the Control
//
// Returns:
//   - Control: a new instance of Control configured with the provided options
func NewControl(options ...ControlBuilderOption) Control {
	c := &control{
		pool: NewScratchPool(),
	}
	cfg := &controlConfig{}
	for _, opt := range options {
		opt(cfg)
	}

	c.skel = cfg.skel
	c.materials = cfg.materials
	c.controller = NewModeController(cfg.probe, cfg.preferHardware)
	c.controller.SetMaterials(c.materials)
	if cfg.subtree != nil {
		c.SetSubtree(cfg.subtree)
	}
	return c
}

func (c *control) Skeleton() *skeleton.Skeleton {
	return c.skel
}

func (c *control) Controller() *ModeController {
	return c.controller
}

func (c *control) Targets() []mesh.Mesh {
	return c.targets
}

func (c *control) SetSubtree(root *scene.Node) {
	c.targets = scene.CollectAnimatedMeshes(root)
	c.controller.SetTargets(c.targets)
}

func (c *control) BeginFrame() {
	c.frameProcessed = false
}

func (c *control) RunFrame() error {
	if c.frameProcessed {
		return nil
	}

	// One snapshot per frame, shared by every target mesh so all meshes
	// bound to this skeleton deform consistently within the frame.
	c.offsets = c.skel.OffsetMatrices(c.offsets)

	// The mode decision is fixed before any buffer mutation begins.
	mode := c.controller.Update(c.skel.BoneCount())

	if mode == ModeHardware {
		c.controller.RefreshBoneMatrices(c.offsets)
	} else {
		for _, m := range c.targets {
			if err := ResetToBindPose(m); err != nil {
				return err
			}
			if err := Skin(m, c.offsets, c.pool); err != nil {
				return err
			}
		}
	}

	c.frameProcessed = true
	return nil
}
