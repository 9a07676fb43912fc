package device

import (
	"fmt"
	"unsafe"

	"github.com/notargets/gocca"
)

// occaDevice adapts a *gocca.OCCADevice to the Device contract. OCCA bundles
// what raw OpenCL splits into platform+device+context+queue into one handle,
// so this adapter does the same.
type occaDevice struct {
	dev    *gocca.OCCADevice
	limits Limits
}

// NewOCCADevice wraps an already-created gocca device. limits should reflect
// the target hardware's reported capabilities; OCCA does not expose a
// capability-query API, so the caller supplies them (falls back to
// DefaultLimits if zero).
func NewOCCADevice(dev *gocca.OCCADevice, limits Limits) Device {
	if dev == nil {
		panic("device: nil *gocca.OCCADevice")
	}
	if limits.MaxWorkGroupSize == 0 {
		limits = DefaultLimits()
	}
	return &occaDevice{dev: dev, limits: limits}
}

// DefaultLimits returns conservative capability defaults matching a
// low-end OpenCL 1.2 device, used when the caller does not supply real
// hardware-reported limits.
func DefaultLimits() Limits {
	return Limits{
		MaxWorkGroupSize: 256,
		MaxWorkItemSizes: []int{256, 256, 256},
		MaxDimensions:    3,
		LocalMemSize:     32 * 1024,
		Name:             "unknown",
		Version:          "unknown",
	}
}

// NewOCCADeviceFromProps creates a gocca device from an OCCA JSON properties
// string (e.g. `{"mode": "OpenCL", "platform_id": 0, "device_id": 0}`).
func NewOCCADeviceFromProps(props string, limits Limits) (Device, error) {
	dev, err := gocca.NewDevice(props)
	if err != nil {
		return nil, fmt.Errorf("device: failed to create OCCA device (%s): %w", props, err)
	}
	return NewOCCADevice(dev, limits), nil
}

func (d *occaDevice) Limits() Limits { return d.limits }

func (d *occaDevice) Mode() string { return d.dev.Mode() }

func (d *occaDevice) Malloc(bytes int64, init unsafe.Pointer) Buffer {
	mem := d.dev.Malloc(bytes, init, nil)
	return &occaBuffer{mem: mem, bytes: bytes}
}

func (d *occaDevice) BuildProgram(source string) Program {
	return &occaProgram{dev: d, source: source}
}

func (d *occaDevice) Finish() { d.dev.Finish() }

func (d *occaDevice) Free() { d.dev.Free() }
