package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"

	"github.com/marrow3d/marrow/common"
	"github.com/marrow3d/marrow/engine/mesh"
)

// gpuBuffer tracks one created buffer and its allocated size, so uploads can
// reuse it until the data outgrows it.
type gpuBuffer struct {
	buf  *wgpu.Buffer
	size uint64
}

// uploader is the implementation of the Uploader interface.
type uploader struct {
	device Device

	// meshBuffers is keyed by "<mesh name>/<attribute>".
	meshBuffers map[string]*gpuBuffer
	boneBuffer  *gpuBuffer
	countBuffer *gpuBuffer
}

// boneUniform mirrors the BoneUniform block in the skinning shader. Padded to
// 16 bytes per WebGPU uniform alignment rules.
type boneUniform struct {
	count uint32
	_     [3]uint32
}

// Uploader is the rendering pipeline's upload stage for skinned meshes. It
// consumes the per-frame dirty signal on each mesh, pushing deformed
// attribute buffers to the GPU after a software skin pass, and refreshes the
// bone matrix storage buffer consumed by the hardware skinning shader.
type Uploader interface {
	// UploadMesh pushes every dirty attribute buffer of the mesh to the GPU
	// and clears the dirty flags. Buffers are created on first use and
	// recreated when the data outgrows them.
	//
	// Parameters:
	//   - m: the mesh whose dirty buffers should upload
	//
	// Returns:
	//   - error: an error if buffer creation fails
	UploadMesh(m mesh.Mesh) error

	// UploadBoneMatrices refreshes the bone matrix storage buffer with this
	// frame's offset snapshot, along with the bone-count uniform the skinning
	// shader reads alongside it.
	//
	// Parameters:
	//   - mats: one offset matrix per bone
	//
	// Returns:
	//   - error: an error if buffer creation fails
	UploadBoneMatrices(mats []common.Mat4) error

	// Release releases all GPU buffers held by the uploader.
	Release()
}

var _ Uploader = &uploader{}

// NewUploader creates an Uploader bound to the given device.
//
// Parameters:
//   - d: the device whose queue receives the writes
//
// Returns:
//   - Uploader: the new uploader
func NewUploader(d Device) Uploader {
	return &uploader{
		device:      d,
		meshBuffers: make(map[string]*gpuBuffer),
	}
}

func (u *uploader) UploadMesh(m mesh.Mesh) error {
	for _, sem := range m.DirtyBuffers() {
		b := m.Buffer(sem)
		if b == nil || !b.Writable() {
			continue
		}
		raw := common.SliceToBytes(b.Data())
		if len(raw) == 0 {
			continue
		}

		key := m.Name() + "/" + sem.String()
		gb := u.meshBuffers[key]
		if gb == nil || gb.size < uint64(len(raw)) {
			if gb != nil {
				gb.buf.Release()
			}
			buf, err := u.device.Handle().CreateBuffer(&wgpu.BufferDescriptor{
				Label:            key,
				Size:             uint64(len(raw)),
				Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
				MappedAtCreation: false,
			})
			if err != nil {
				return errors.Wrapf(err, "renderer: creating %s buffer", key)
			}
			gb = &gpuBuffer{buf: buf, size: uint64(len(raw))}
			u.meshBuffers[key] = gb
		}
		u.device.Queue().WriteBuffer(gb.buf, 0, raw)
	}
	m.ClearDirty()
	return nil
}

func (u *uploader) UploadBoneMatrices(mats []common.Mat4) error {
	raw := common.SliceToBytes(mats)
	if len(raw) == 0 {
		return nil
	}

	if u.boneBuffer == nil || u.boneBuffer.size < uint64(len(raw)) {
		if u.boneBuffer != nil {
			u.boneBuffer.buf.Release()
		}
		buf, err := u.device.Handle().CreateBuffer(&wgpu.BufferDescriptor{
			Label:            "bone_matrices",
			Size:             uint64(len(raw)),
			Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return errors.Wrap(err, "renderer: creating bone matrix buffer")
		}
		u.boneBuffer = &gpuBuffer{buf: buf, size: uint64(len(raw))}
	}
	u.device.Queue().WriteBuffer(u.boneBuffer.buf, 0, raw)

	uni := boneUniform{count: uint32(len(mats))}
	uniRaw := common.StructToBytes(&uni)
	if u.countBuffer == nil {
		buf, err := u.device.Handle().CreateBuffer(&wgpu.BufferDescriptor{
			Label:            "bone_count",
			Size:             uint64(len(uniRaw)),
			Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return errors.Wrap(err, "renderer: creating bone count buffer")
		}
		u.countBuffer = &gpuBuffer{buf: buf, size: uint64(len(uniRaw))}
	}
	u.device.Queue().WriteBuffer(u.countBuffer.buf, 0, uniRaw)
	return nil
}

func (u *uploader) Release() {
	for key, gb := range u.meshBuffers {
		gb.buf.Release()
		delete(u.meshBuffers, key)
	}
	if u.boneBuffer != nil {
		u.boneBuffer.buf.Release()
		u.boneBuffer = nil
	}
	if u.countBuffer != nil {
		u.countBuffer.buf.Release()
		u.countBuffer = nil
	}
}
