package material

import (
	"github.com/marrow3d/marrow/common"
)

// material is the implementation of the Material interface.
type material struct {
	name        string
	baseColor   [4]float32
	pipelineKey string

	// Skinning overrides. When enabled they are consumed by the hardware
	// skinning shader; the skinning mode controller owns their state.
	boneCount       int
	boneCountSet    bool
	boneMatrices    []common.Mat4
	boneMatricesSet bool
}

// Material defines the interface for a render material, encapsulating surface
// properties, the render pipeline reference, and the two shared skinning
// parameters (bone count, bone matrix array) consumed by the hardware
// skinning shader.
//
// Surface properties (name, base color) are set at load time and are
// read-only through this interface. The skinning overrides are mutable: their
// enabled/value state is owned by the skinning mode controller and toggled
// when the active pipeline switches between software and hardware skinning.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the albedo/diffuse RGBA color of the material.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// SetPipelineKey sets the render pipeline key for this material.
	//
	// Parameters:
	//   - key: the pipeline key to associate with this material
	SetPipelineKey(key string)

	// SetBoneCountOverride enables the bone-count shader parameter with the
	// given value.
	//
	// Parameters:
	//   - count: the shader array size (padded above the actual bone count)
	SetBoneCountOverride(count int)

	// BoneCountOverride retrieves the bone-count parameter value and whether
	// it is currently enabled.
	//
	// Returns:
	//   - int: the parameter value
	//   - bool: true if the override is enabled
	BoneCountOverride() (int, bool)

	// SetBoneMatrices enables the bone-matrix-array shader parameter and
	// replaces its value with the given per-frame snapshot. The slice is
	// copied so later pose updates do not mutate it.
	//
	// Parameters:
	//   - mats: one offset matrix per bone
	SetBoneMatrices(mats []common.Mat4)

	// BoneMatrices retrieves the bone-matrix-array parameter value and
	// whether it is currently enabled.
	//
	// Returns:
	//   - []common.Mat4: the matrix array
	//   - bool: true if the override is enabled
	BoneMatrices() ([]common.Mat4, bool)

	// ClearSkinningOverrides disables both skinning parameters. Called when
	// the active pipeline switches back to software skinning.
	ClearSkinningOverrides()
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor: [4]float32{1, 1, 1, 1},
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) SetPipelineKey(key string) {
	m.pipelineKey = key
}

func (m *material) SetBoneCountOverride(count int) {
	m.boneCount = count
	m.boneCountSet = true
}

func (m *material) BoneCountOverride() (int, bool) {
	return m.boneCount, m.boneCountSet
}

func (m *material) SetBoneMatrices(mats []common.Mat4) {
	if cap(m.boneMatrices) < len(mats) {
		m.boneMatrices = make([]common.Mat4, len(mats))
	}
	m.boneMatrices = m.boneMatrices[:len(mats)]
	copy(m.boneMatrices, mats)
	m.boneMatricesSet = true
}

func (m *material) BoneMatrices() ([]common.Mat4, bool) {
	return m.boneMatrices, m.boneMatricesSet
}

func (m *material) ClearSkinningOverrides() {
	m.boneCountSet = false
	m.boneMatricesSet = false
	m.boneMatrices = m.boneMatrices[:0]
}
