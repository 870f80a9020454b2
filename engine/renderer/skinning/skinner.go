package skinning

import (
	"github.com/pkg/errors"

	"github.com/marrow3d/marrow/common"
	"github.com/marrow3d/marrow/engine/mesh"
)

// Skin deforms the mesh's live Position, Normal and (if present) Tangent
// buffers in place by blending each vertex across its bone influences:
//
//   - positions accumulate weight * (M * bindPosition) over the full affine
//     offset matrix M of each referenced bone;
//   - normals and tangent directions accumulate weight * (Mlinear * value)
//     using only the upper-left 3x3 block, translation excluded. No
//     inverse-transpose correction is applied; bone transforms are assumed
//     rigid or uniformly scaled, and non-uniform bone scale will skew normals;
//   - a vertex whose first weight slot is exactly zero is skipped entirely,
//     keeping whatever the bind-pose reset wrote;
//   - the tangent w component (handedness) is copied through untransformed.
//
// The live buffers must already hold bind-pose values for this frame (see
// ResetToBindPose). Processing runs in forward-only chunks through a scratch
// region borrowed from the pool, released on every exit path. After the mesh
// finishes its deformed buffers are marked dirty for upload.
//
// Parameters:
//   - m: the animated mesh to deform
//   - offsets: one offset matrix per bone, this frame's read-only snapshot
//   - pool: the scratch pool to borrow the chunk region from
//
// Returns:
//   - error: a configuration error for invalid influence layout, raised
//     before any buffer is touched
func Skin(m mesh.Mesh, offsets []common.Mat4, pool *ScratchPool) error {
	maxWeights := m.MaxWeightsPerVertex()
	if maxWeights <= 0 || maxWeights > 4 {
		return errors.Wrapf(mesh.ErrMaxWeights, "mesh %q: got %d", m.Name(), maxWeights)
	}

	indices := m.BoneIndices()
	weights := m.BoneWeights()
	vertexCount := m.VertexCount()
	if len(indices) != vertexCount*4 || len(weights) != vertexCount*4 {
		return errors.Wrapf(mesh.ErrInfluenceLayout, "mesh %q: %d indices, %d weights, %d vertices",
			m.Name(), len(indices), len(weights), vertexCount)
	}

	pos := m.Buffer(mesh.Position)
	nrm := m.Buffer(mesh.Normal)
	if pos == nil || !pos.Writable() || nrm == nil || !nrm.Writable() {
		return errors.Errorf("skinning: mesh %q is not prepared for CPU animation", m.Name())
	}
	tan := m.Buffer(mesh.Tangent)

	scratch, err := pool.Acquire()
	if err != nil {
		return err
	}
	defer pool.Release(scratch)

	if tan != nil && tan.Writable() {
		skinWithTangents(scratch, pos.Data(), nrm.Data(), tan.Data(), indices, weights, maxWeights, offsets)
		m.MarkDirty(mesh.Position, mesh.Normal, mesh.Tangent)
	} else {
		skinPositionsNormals(scratch, pos.Data(), nrm.Data(), indices, weights, maxWeights, offsets)
		m.MarkDirty(mesh.Position, mesh.Normal)
	}
	return nil
}

// skinPositionsNormals is the tangent-free kernel. It walks the mesh forward
// in chunks of at most chunkVertices, reading a run of bind-pose values into
// the scratch region, blending in place, and writing the run back to the
// offsets it was read from.
func skinPositionsNormals(s *Scratch, pos, nrm []float32, indices []uint32, weights []float32, maxWeights int, offsets []common.Mat4) {
	vertexCount := len(pos) / 3
	pad := 4 - maxWeights

	for start := 0; start < vertexCount; start += chunkVertices {
		n := min(chunkVertices, vertexCount-start)
		posOff := start * 3
		copy(s.positions[:n*3], pos[posOff:posOff+n*3])
		copy(s.normals[:n*3], nrm[posOff:posOff+n*3])

		slot := start * 4
		for v := 0; v < n; v++ {
			// Slot 0 carrying no weight marks an effectively rigid vertex:
			// leave the bind-pose values untouched, whatever slots 1-3 hold.
			if weights[slot] == 0 {
				slot += 4
				continue
			}

			base := v * 3
			px, py, pz := s.positions[base], s.positions[base+1], s.positions[base+2]
			nx, ny, nz := s.normals[base], s.normals[base+1], s.normals[base+2]

			var rpx, rpy, rpz, rnx, rny, rnz float32
			for w := 0; w < maxWeights; w++ {
				wt := weights[slot]
				mtx := &offsets[indices[slot]]
				slot++

				rpx += wt * (mtx[0]*px + mtx[4]*py + mtx[8]*pz + mtx[12])
				rpy += wt * (mtx[1]*px + mtx[5]*py + mtx[9]*pz + mtx[13])
				rpz += wt * (mtx[2]*px + mtx[6]*py + mtx[10]*pz + mtx[14])

				rnx += wt * (mtx[0]*nx + mtx[4]*ny + mtx[8]*nz)
				rny += wt * (mtx[1]*nx + mtx[5]*ny + mtx[9]*nz)
				rnz += wt * (mtx[2]*nx + mtx[6]*ny + mtx[10]*nz)
			}
			// Fixed stride past the zero-weight padding slots; they are
			// never read as influences.
			slot += pad

			s.positions[base], s.positions[base+1], s.positions[base+2] = rpx, rpy, rpz
			s.normals[base], s.normals[base+1], s.normals[base+2] = rnx, rny, rnz
		}

		copy(pos[posOff:posOff+n*3], s.positions[:n*3])
		copy(nrm[posOff:posOff+n*3], s.normals[:n*3])
	}
}

// skinWithTangents is the tangent-carrying kernel. Tangent chunks use a
// 4-wide stride while position/normal chunks use a 3-wide stride, so the two
// buffer families track consumed element counts independently even though
// they advance by the same vertex run.
func skinWithTangents(s *Scratch, pos, nrm, tan []float32, indices []uint32, weights []float32, maxWeights int, offsets []common.Mat4) {
	vertexCount := len(pos) / 3
	pad := 4 - maxWeights

	posConsumed := 0
	tanConsumed := 0
	for start := 0; start < vertexCount; start += chunkVertices {
		n := min(chunkVertices, vertexCount-start)
		copy(s.positions[:n*3], pos[posConsumed:posConsumed+n*3])
		copy(s.normals[:n*3], nrm[posConsumed:posConsumed+n*3])
		copy(s.tangents[:n*4], tan[tanConsumed:tanConsumed+n*4])

		slot := start * 4
		for v := 0; v < n; v++ {
			if weights[slot] == 0 {
				slot += 4
				continue
			}

			base := v * 3
			tbase := v * 4
			px, py, pz := s.positions[base], s.positions[base+1], s.positions[base+2]
			nx, ny, nz := s.normals[base], s.normals[base+1], s.normals[base+2]
			tx, ty, tz := s.tangents[tbase], s.tangents[tbase+1], s.tangents[tbase+2]

			var rpx, rpy, rpz, rnx, rny, rnz, rtx, rty, rtz float32
			for w := 0; w < maxWeights; w++ {
				wt := weights[slot]
				mtx := &offsets[indices[slot]]
				slot++

				rpx += wt * (mtx[0]*px + mtx[4]*py + mtx[8]*pz + mtx[12])
				rpy += wt * (mtx[1]*px + mtx[5]*py + mtx[9]*pz + mtx[13])
				rpz += wt * (mtx[2]*px + mtx[6]*py + mtx[10]*pz + mtx[14])

				rnx += wt * (mtx[0]*nx + mtx[4]*ny + mtx[8]*nz)
				rny += wt * (mtx[1]*nx + mtx[5]*ny + mtx[9]*nz)
				rnz += wt * (mtx[2]*nx + mtx[6]*ny + mtx[10]*nz)

				rtx += wt * (mtx[0]*tx + mtx[4]*ty + mtx[8]*tz)
				rty += wt * (mtx[1]*tx + mtx[5]*ty + mtx[9]*tz)
				rtz += wt * (mtx[2]*tx + mtx[6]*ty + mtx[10]*tz)
			}
			slot += pad

			s.positions[base], s.positions[base+1], s.positions[base+2] = rpx, rpy, rpz
			s.normals[base], s.normals[base+1], s.normals[base+2] = rnx, rny, rnz
			// Handedness (w) is copied through unmodified.
			s.tangents[tbase], s.tangents[tbase+1], s.tangents[tbase+2] = rtx, rty, rtz
		}

		copy(pos[posConsumed:posConsumed+n*3], s.positions[:n*3])
		copy(nrm[posConsumed:posConsumed+n*3], s.normals[:n*3])
		copy(tan[tanConsumed:tanConsumed+n*4], s.tangents[:n*4])
		posConsumed += n * 3
		tanConsumed += n * 4
	}
}
