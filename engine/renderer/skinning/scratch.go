package skinning

import (
	"github.com/pkg/errors"
)

// chunkVertices is the number of vertices a skin pass stages per chunk. The
// scratch region bounds peak working-set size regardless of mesh size: a pass
// walks the mesh forward in runs of at most this many vertices.
const chunkVertices = 128

// Scratch is a fixed-capacity transform region borrowed from a ScratchPool
// for the duration of one skin pass. Position and normal chunks use a 3-wide
// stride while tangent chunks use a 4-wide stride, so the two buffer families
// are staged separately and their element counts tracked independently.
type Scratch struct {
	positions [chunkVertices * 3]float32
	normals   [chunkVertices * 3]float32
	tangents  [chunkVertices * 4]float32
}

// ScratchPool hands out the reusable scratch region for skin passes. Capacity
// is fixed and shared by one caller at a time; Acquire while the region is
// outstanding is an error. Callers must Release on every exit path, normal
// return or error, so the pool never leaks capacity across frames.
type ScratchPool struct {
	scratch Scratch
	inUse   bool
}

// NewScratchPool creates an empty pool with its scratch region available.
//
// Returns:
//   - *ScratchPool: the new pool
func NewScratchPool() *ScratchPool {
	return &ScratchPool{}
}

// Acquire borrows the scratch region for one skin pass.
//
// Returns:
//   - *Scratch: the scratch region
//   - error: an error if the region is already outstanding
func (p *ScratchPool) Acquire() (*Scratch, error) {
	if p.inUse {
		return nil, errors.New("skinning: scratch region already acquired")
	}
	p.inUse = true
	return &p.scratch, nil
}

// Release returns the scratch region to the pool. Contents are not cleared;
// every pass fully overwrites the ranges it reads back.
//
// Parameters:
//   - s: the region previously returned by Acquire
func (p *ScratchPool) Release(s *Scratch) {
	if s == &p.scratch {
		p.inUse = false
	}
}
