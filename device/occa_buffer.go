package device

import (
	"unsafe"

	"github.com/notargets/gocca"
)

// occaBuffer adapts a *gocca.OCCAMemory to the Buffer interface.
type occaBuffer struct {
	mem   *gocca.OCCAMemory
	bytes int64
}

func (b *occaBuffer) Bytes() int64 { return b.bytes }

func (b *occaBuffer) Write(data unsafe.Pointer, bytes int64) {
	b.mem.CopyFrom(data, bytes)
}

func (b *occaBuffer) Read(data unsafe.Pointer, bytes int64) {
	b.mem.CopyTo(data, bytes)
}

func (b *occaBuffer) Free() {
	b.mem.Free()
}

// occaMemory exposes the wrapped *gocca.OCCAMemory so occaKernel.Launch can
// pass it directly to gocca's RunWithArgs, which expects the concrete gocca
// type rather than the Buffer interface.
func (b *occaBuffer) occaMemory() *gocca.OCCAMemory {
	return b.mem
}
