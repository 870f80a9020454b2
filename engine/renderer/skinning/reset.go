package skinning

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/marrow3d/marrow/engine/mesh"
)

// resetPairs maps each live deformable buffer to its rest-pose source, in the
// order they are restored. Tangents are optional.
var resetPairs = [3]struct {
	live, rest mesh.Semantic
}{
	{mesh.Position, mesh.BindPosePosition},
	{mesh.Normal, mesh.BindPoseNormal},
	{mesh.Tangent, mesh.BindPoseTangent},
}

// ResetToBindPose overwrites the live Position/Normal (and Tangent, if
// present) buffers with their bind-pose contents, verbatim, vertex for
// vertex. It runs before every software skin pass; in hardware mode the GPU
// reads the bind pose directly and this is never called.
//
// A live buffer that is not CPU-writable (released for a previous hardware
// phase, or never prepared) triggers a one-time prepare-for-CPU fixup, logged
// as a diagnostic and never surfaced as a failure. A mesh that still lacks
// required buffers after the fixup is a configuration error.
//
// Parameters:
//   - m: the animated mesh to restore
//
// Returns:
//   - error: a configuration error if required buffers are missing
func ResetToBindPose(m mesh.Mesh) error {
	for _, pair := range resetPairs {
		lb := m.Buffer(pair.live)
		rb := m.Buffer(pair.rest)

		// A mesh with no tangent data at all simply skips the tangent pass.
		if pair.live == mesh.Tangent && lb == nil && rb == nil {
			continue
		}

		if rb == nil || lb == nil || !lb.Writable() {
			slog.Debug("materializing CPU-writable skinning buffers",
				"mesh", m.Name(), "attribute", pair.live.String())
			m.PrepareForCPUAnimation()
			lb = m.Buffer(pair.live)
			rb = m.Buffer(pair.rest)
		}
		if rb == nil || lb == nil || !lb.Writable() {
			return errors.Errorf("skinning: mesh %q is missing %s buffers", m.Name(), pair.live)
		}

		copy(lb.Data(), rb.Data())
	}
	return nil
}
