// Package device defines the capability boundary the tuner core consumes:
// platform/device/queue selection, run-time program compilation, kernel
// argument binding and launch, buffer transfer, and profiled timing. It
// deliberately does not expose raw OpenCL/CUDA types — TunerCore never
// imports gocca directly, only this package's interfaces.
package device

import "unsafe"

// BuildStatus reports the outcome of compiling a Program.
type BuildStatus int

const (
	BuildOK BuildStatus = iota
	BuildError
	BuildInvalidBinary
)

// Limits describes the capability queries TunerCore needs from a Device to
// validate a Configuration's thread ranges and local-memory usage.
type Limits struct {
	MaxWorkGroupSize  int
	MaxWorkItemSizes  []int
	MaxDimensions     int
	LocalMemSize      int64
	Name              string
	Version           string
}

// Device is the top-level handle. In the OCCA model a single Device object
// bundles what raw OpenCL splits into platform+device+context+queue: gocca
// selects platform/device via JSON properties at construction time and has
// no separate context/queue object exposed to callers.
type Device interface {
	Limits() Limits
	Mode() string

	// Malloc allocates device memory, optionally initialized from init (may
	// be nil for zero-initialized memory).
	Malloc(bytes int64, init unsafe.Pointer) Buffer

	// BuildProgram compiles source into a Program bound to this device.
	BuildProgram(source string) Program

	// Finish blocks until all outstanding device work completes.
	Finish()

	// Free releases the device handle and everything allocated on it.
	Free()
}

// Buffer is device-owned memory. Read/Write are synchronous: the host
// blocks until the transfer completes.
type Buffer interface {
	Bytes() int64
	Write(data unsafe.Pointer, bytes int64)
	Read(data unsafe.Pointer, bytes int64)
	Free()
}

// Program is a compiled-or-compilable translation unit.
type Program interface {
	// Build compiles the given entry point and returns the resulting kernel.
	// On failure it returns a nil Kernel, the BuildStatus, and the compiler
	// log.
	Build(entryPoint string, options []string) (Kernel, BuildStatus, string)
}

// Kernel is a compiled, launchable entry point.
type Kernel interface {
	// LocalMemUsage returns the compiler-reported local/shared memory
	// footprint in bytes for this kernel, used for the post-compile
	// resource-exceeded check.
	LocalMemUsage() int64

	// Launch runs the kernel over the given global/local thread ranges with
	// the given ordinal-bound arguments (scalars or Buffer handles), and
	// returns a profiled Event.
	Launch(dev Device, global, local []int, args []interface{}) (Event, error)

	Free()
}

// Event exposes the profiled elapsed time of one kernel launch.
type Event interface {
	ElapsedMS() float64
}
