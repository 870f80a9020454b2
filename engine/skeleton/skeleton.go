package skeleton

import (
	"github.com/pkg/errors"

	"github.com/marrow3d/marrow/common"
)

// Transform represents a decomposed bone transform for animation interpolation.
type Transform struct {
	// Translation is the position offset.
	Translation [3]float32

	// Rotation is the orientation as a quaternion (x, y, z, w).
	Rotation [4]float32

	// Scale is the scale factor along each axis.
	Scale [3]float32
}

// IdentityTransform returns a Transform with no translation, identity rotation
// and unit scale.
//
// Returns:
//   - Transform: the identity transform
func IdentityTransform() Transform {
	return Transform{
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
	}
}

// Bone represents a single bone in a skeleton hierarchy.
type Bone struct {
	// Name is the bone's identifier (for debugging and animation targeting).
	Name string

	// ParentIndex is the index of the parent bone (-1 for root bones).
	// Parents must precede their children in the skeleton's bone order.
	ParentIndex int32

	// InverseBindMatrix transforms from model space to bone space at bind pose.
	// This is the inverse of the bone's world transform when the mesh was bound.
	InverseBindMatrix common.Mat4

	// LocalTransform is the bone's transform relative to its parent.
	// Updated each frame during animation playback.
	LocalTransform Transform

	// worldMatrix is the bone's model-space transform for the current pose,
	// recomputed by UpdateWorldMatrices.
	worldMatrix common.Mat4
}

// Skeleton represents a bone hierarchy whose current pose produces one offset
// matrix per bone each frame: (current world transform) * (inverse bind pose).
type Skeleton struct {
	// Bones is the array of all bones, ordered so parents precede children.
	Bones []Bone

	// BoneNameToIndex maps bone names to their indices for quick lookup.
	BoneNameToIndex map[string]int32
}

// NewSkeleton creates a skeleton from a bone hierarchy, validating the parent
// links: a parent index must be -1 or refer to an earlier bone in the slice.
//
// Parameters:
//   - bones: the bones, ordered parents before children
//
// Returns:
//   - *Skeleton: the validated skeleton
//   - error: an error if the hierarchy is empty or malformed
func NewSkeleton(bones []Bone) (*Skeleton, error) {
	if len(bones) == 0 {
		return nil, errors.New("skeleton: bone list is empty")
	}

	nameToIndex := make(map[string]int32, len(bones))
	for i := range bones {
		pnt := bones[i].ParentIndex
		switch {
		case pnt >= int32(len(bones)):
			return nil, errors.Errorf("skeleton: bone %d parent %d out of bounds", i, pnt)
		case pnt == int32(i):
			return nil, errors.Errorf("skeleton: bone %d refers to itself as parent", i)
		case pnt >= int32(i):
			return nil, errors.Errorf("skeleton: bone %d parent %d must precede it", i, pnt)
		case pnt < 0:
			bones[i].ParentIndex = -1
		}
		if bones[i].LocalTransform == (Transform{}) {
			bones[i].LocalTransform = IdentityTransform()
		}
		nameToIndex[bones[i].Name] = int32(i)
	}

	s := &Skeleton{
		Bones:           bones,
		BoneNameToIndex: nameToIndex,
	}
	s.UpdateWorldMatrices()
	return s, nil
}

// BoneCount returns the number of bones in the skeleton.
//
// Returns:
//   - int: the bone count
func (s *Skeleton) BoneCount() int {
	return len(s.Bones)
}

// UpdateWorldMatrices recomputes each bone's model-space transform from its
// local TRS and its parent's world matrix. Bones are ordered parents before
// children, so a single forward pass suffices.
func (s *Skeleton) UpdateWorldMatrices() {
	for i := range s.Bones {
		b := &s.Bones[i]
		local := common.FromTRS(b.LocalTransform.Translation, b.LocalTransform.Rotation, b.LocalTransform.Scale)
		if b.ParentIndex < 0 {
			b.worldMatrix = local
		} else {
			b.worldMatrix = common.Mul(s.Bones[b.ParentIndex].worldMatrix, local)
		}
	}
}

// WorldMatrix returns the model-space transform of the bone at the given
// index for the current pose.
//
// Parameters:
//   - index: the bone index
//
// Returns:
//   - common.Mat4: the bone's world matrix
func (s *Skeleton) WorldMatrix(index int) common.Mat4 {
	return s.Bones[index].worldMatrix
}

// OffsetMatrices fills dst with one offset matrix per bone index for the
// current pose: world * inverseBind, mapping bind-pose space to animated-pose
// space. dst is grown as needed and returned; passing the previous frame's
// slice avoids reallocation. The result is a read-only snapshot for the
// duration of a skin pass and is shared by every mesh bound to this skeleton.
//
// Parameters:
//   - dst: a slice to reuse, may be nil
//
// Returns:
//   - []common.Mat4: one offset matrix per bone
func (s *Skeleton) OffsetMatrices(dst []common.Mat4) []common.Mat4 {
	if cap(dst) < len(s.Bones) {
		dst = make([]common.Mat4, len(s.Bones))
	}
	dst = dst[:len(s.Bones)]
	for i := range s.Bones {
		dst[i] = common.Mul(s.Bones[i].worldMatrix, s.Bones[i].InverseBindMatrix)
	}
	return dst
}
