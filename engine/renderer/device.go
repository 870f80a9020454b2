package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// device is the implementation of the Device interface.
type device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	handle   *wgpu.Device
	queue    *wgpu.Queue
}

// Device owns the wgpu instance, adapter, device and queue shared by the
// capability probe and the upload stage. It can run headless (no surface)
// for probe-only use, or against a window surface for presentation.
type Device interface {
	// Handle returns the underlying wgpu device.
	//
	// Returns:
	//   - *wgpu.Device: the device handle
	Handle() *wgpu.Device

	// Queue returns the device's default queue used for buffer writes.
	//
	// Returns:
	//   - *wgpu.Queue: the queue handle
	Queue() *wgpu.Queue

	// Release releases the GPU resources held by this device.
	Release()
}

var _ Device = &device{}

// NewDevice acquires a wgpu adapter and device with the provided options
// applied.
//
// Parameters:
//   - options: a variadic list of DeviceBuilderOption functions to configure the Device
//
// Returns:
//   - Device: the acquired device
//   - error: an error if no suitable adapter or device is available
func NewDevice(options ...DeviceBuilderOption) (Device, error) {
	cfg := &deviceConfig{}
	for _, opt := range options {
		opt(cfg)
	}

	d := &device{
		instance: wgpu.CreateInstance(nil),
	}

	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
		CompatibleSurface:    cfg.surface,
	})
	if err != nil {
		return nil, errors.Wrap(err, "renderer: no suitable adapter")
	}
	d.adapter = a

	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Skinning Device",
	})
	if err != nil {
		return nil, errors.Wrap(err, "renderer: device request failed")
	}
	d.handle = dev
	d.queue = dev.GetQueue()

	return d, nil
}

func (d *device) Handle() *wgpu.Device {
	return d.handle
}

func (d *device) Queue() *wgpu.Queue {
	return d.queue
}

func (d *device) Release() {
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.handle != nil {
		d.handle.Release()
		d.handle = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}

// deviceConfig collects builder options before the device is acquired.
type deviceConfig struct {
	forceFallbackAdapter bool
	surface              *wgpu.Surface
}

// DeviceBuilderOption is a functional option for configuring a Device during creation.
type DeviceBuilderOption func(*deviceConfig)

// WithForceFallbackAdapter requests the software rasterizer adapter, useful
// for CI machines without a GPU.
//
// Returns:
//   - DeviceBuilderOption: the configured option
func WithForceFallbackAdapter() DeviceBuilderOption {
	return func(c *deviceConfig) {
		c.forceFallbackAdapter = true
	}
}

// WithCompatibleSurface constrains adapter selection to one compatible with
// the given presentation surface.
//
// Parameters:
//   - s: the surface to present to
//
// Returns:
//   - DeviceBuilderOption: the configured option
func WithCompatibleSurface(s *wgpu.Surface) DeviceBuilderOption {
	return func(c *deviceConfig) {
		c.surface = s
	}
}
