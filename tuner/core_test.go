package tuner

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/oclbench/cltune/argument"
	"github.com/oclbench/cltune/device"
	"github.com/oclbench/cltune/internal/clog"
)

// fakeBuffer is an in-memory device.Buffer that just holds raw bytes.
type fakeBuffer struct{ data []byte }

func (b *fakeBuffer) Bytes() int64 { return int64(len(b.data)) }
func (b *fakeBuffer) Write(data unsafe.Pointer, bytes int64) {
	b.data = make([]byte, bytes)
	if bytes > 0 {
		copy(b.data, unsafe.Slice((*byte)(data), bytes))
	}
}
func (b *fakeBuffer) Read(data unsafe.Pointer, bytes int64) {
	if bytes == 0 {
		return
	}
	copy(unsafe.Slice((*byte)(data), bytes), b.data)
}
func (b *fakeBuffer) Free() {}

// fakeEvent reports a fixed elapsed time.
type fakeEvent struct{ ms float64 }

func (e fakeEvent) ElapsedMS() float64 { return e.ms }

// fakeKernel always launches successfully with a fixed timing.
type fakeKernel struct{ ms float64 }

func (k *fakeKernel) LocalMemUsage() int64 { return 0 }
func (k *fakeKernel) Launch(dev device.Device, global, local []int, args []interface{}) (device.Event, error) {
	return fakeEvent{ms: k.ms}, nil
}
func (k *fakeKernel) Free() {}

// fakeProgram always builds successfully.
type fakeProgram struct{ ms float64 }

func (p *fakeProgram) Build(entryPoint string, options []string) (device.Kernel, device.BuildStatus, string) {
	return &fakeKernel{ms: p.ms}, device.BuildOK, ""
}

// fakeDevice drives Core.Tune without a real OCCA backend.
type fakeDevice struct{ ms float64 }

func (d *fakeDevice) Limits() device.Limits { return device.DefaultLimits() }
func (d *fakeDevice) Mode() string          { return "fake" }
func (d *fakeDevice) Malloc(bytes int64, init unsafe.Pointer) device.Buffer {
	b := &fakeBuffer{}
	b.Write(init, bytes)
	return b
}
func (d *fakeDevice) BuildProgram(source string) device.Program { return &fakeProgram{ms: d.ms} }
func (d *fakeDevice) Finish()                                   {}
func (d *fakeDevice) Free()                                     {}

func newTestLogger() clog.Logger {
	return clog.JSON(&bytes.Buffer{}, 100) // effectively silent: level above any emitted record
}

func TestCore_Tune_NoParameters(t *testing.T) {
	dev := &fakeDevice{ms: 5.0}
	c := New(dev, newTestLogger())

	id, err := c.AddKernel("copy", "__kernel void copy(){}", []int{64}, []int{8})
	if err != nil {
		t.Fatal(err)
	}
	out := argument.AddOutput(c.Args(), "out", []float64{0, 0})
	if err := argument.SetReference(out, []float64{0, 0}); err != nil {
		t.Fatal(err)
	}
	_ = id

	if err := c.Tune(); err != nil {
		t.Fatal(err)
	}
	results := c.Results()
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Time != 5.0 {
		t.Fatalf("expected time 5.0, got %v", results[0].Time)
	}
	if !results[0].Verified {
		t.Fatal("expected verification to pass")
	}
}

func TestCore_Tune_NilLoggerIsSilentNotFatal(t *testing.T) {
	dev := &fakeDevice{ms: 5.0}
	c := New(dev, nil)

	if _, err := c.AddKernel("copy", "__kernel void copy(){}", []int{64}, []int{8}); err != nil {
		t.Fatal(err)
	}
	out := argument.AddOutput(c.Args(), "out", []float64{0, 0})
	if err := argument.SetReference(out, []float64{0, 0}); err != nil {
		t.Fatal(err)
	}

	if err := c.Tune(); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.store.Best(); !ok {
		t.Fatal("expected a best result")
	}
}

func TestCore_Tune_WithParametersUsesFullSearch(t *testing.T) {
	dev := &fakeDevice{ms: 2.0}
	c := New(dev, newTestLogger())
	c.UseFullSearch()

	id, err := c.AddKernel("scale", "__kernel void scale(){}", []int{64}, []int{8})
	if err != nil {
		t.Fatal(err)
	}
	k, err := c.Kernel(id)
	if err != nil {
		t.Fatal(err)
	}
	if err := k.AddParameter("BLOCK", []int{1, 2, 4}); err != nil {
		t.Fatal(err)
	}

	if err := c.Tune(); err != nil {
		t.Fatal(err)
	}
	if got := len(c.Results()); got != 3 {
		t.Fatalf("expected 3 results (one per BLOCK value), got %d", got)
	}
}

func TestCore_Tune_ReferenceCapturesGroundTruth(t *testing.T) {
	dev := &fakeDevice{ms: 1.0}
	c := New(dev, newTestLogger())

	refID, err := c.AddKernel("ref", "__kernel void ref(){}", []int{64}, []int{8})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetReference(refID); err != nil {
		t.Fatal(err)
	}
	if _, err := c.AddKernel("variant", "__kernel void variant(){}", []int{64}, []int{8}); err != nil {
		t.Fatal(err)
	}
	argument.AddOutput(c.Args(), "out", []float64{1, 2, 3})

	if err := c.Tune(); err != nil {
		t.Fatal(err)
	}
	// The reference kernel itself never appears in Results(); only "variant" does.
	for _, r := range c.Results() {
		if r.KernelName == "ref" {
			t.Fatal("reference kernel should not appear in Tune results")
		}
		if !r.Verified {
			t.Fatalf("expected %s to verify against the captured reference", r.KernelName)
		}
	}
}

func TestCore_Best(t *testing.T) {
	dev := &fakeDevice{ms: 3.0}
	c := New(dev, newTestLogger())
	c.UseFullSearch()
	id, err := c.AddKernel("k", "__kernel void k(){}", []int{64}, []int{8})
	if err != nil {
		t.Fatal(err)
	}
	k, _ := c.Kernel(id)
	k.AddParameter("X", []int{1, 2})

	if err := c.Tune(); err != nil {
		t.Fatal(err)
	}
	best, ok := c.Best()
	if !ok {
		t.Fatal("expected a best result")
	}
	if best.Time != 3.0 {
		t.Fatalf("expected best time 3.0, got %v", best.Time)
	}
}
