package argument

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/oclbench/cltune/device"
)

// Kind distinguishes the three argument roles: scalar, input buffer, or
// output buffer.
type Kind int

const (
	KindScalar Kind = iota
	KindInput
	KindOutput
)

// Argument is one entry in a Store: a scalar value or a host-resident
// buffer, its DataType tag, its dense ordinal, and — for outputs — the
// zero template it is reset to before each launch and the reference values
// it is later compared against.
type Argument struct {
	ordinal   int
	kind      Kind
	dtype     DataType
	name      string
	host      any
	zero      any
	reference any
	buffer    device.Buffer
}

func (a *Argument) Ordinal() int       { return a.ordinal }
func (a *Argument) Kind() Kind         { return a.kind }
func (a *Argument) DataType() DataType { return a.dtype }
func (a *Argument) Name() string       { return a.name }

// Store is the tuner-wide list of Arguments, assigned dense ordinals in
// registration order.
type Store struct {
	args []*Argument
}

// New creates an empty Store.
func New() *Store {
	return &Store{}
}

// Args returns every registered Argument in ordinal order.
func (s *Store) Args() []*Argument {
	return s.args
}

func (s *Store) add(kind Kind, dtype DataType, name string, host any) *Argument {
	a := &Argument{ordinal: len(s.args), kind: kind, dtype: dtype, name: name, host: host}
	s.args = append(s.args, a)
	return a
}

// AddScalar registers a by-value scalar argument.
func AddScalar[T Numeric](s *Store, name string, value T) *Argument {
	return s.add(KindScalar, dataTypeOf[T](), name, value)
}

// AddInput registers a host-resident input buffer, copied to the device
// once and never reset between runs.
func AddInput[T Numeric](s *Store, name string, data []T) *Argument {
	cp := append([]T(nil), data...)
	return s.add(KindInput, dataTypeOf[T](), name, cp)
}

// AddOutput registers a host-resident output buffer. Its device buffer is
// overwritten with zeros of the declared element type before each
// configuration's series of timed launches, so one configuration's leftover
// writes can never leak into the next configuration's verification.
func AddOutput[T Numeric](s *Store, name string, data []T) *Argument {
	cp := append([]T(nil), data...)
	arg := s.add(KindOutput, dataTypeOf[T](), name, cp)
	arg.zero = make([]T, len(data))
	return arg
}

// SetReference attaches the expected values an output Argument is verified
// against. arg must have been returned by AddOutput.
func SetReference[T Numeric](arg *Argument, expected []T) error {
	if arg.kind != KindOutput {
		return fmt.Errorf("argument %q: SetReference requires an output argument", arg.name)
	}
	arg.reference = append([]T(nil), expected...)
	return nil
}

// Bind mallocs and populates a device Buffer for every input/output
// Argument. Scalars need no device storage — they are passed by value at
// launch time.
func (s *Store) Bind(dev device.Device) error {
	for _, a := range s.args {
		if a.kind == KindScalar {
			continue
		}
		ptr, n := bufferBytes(a.host)
		if n == 0 {
			a.buffer = dev.Malloc(0, nil)
			continue
		}
		buf := dev.Malloc(n, ptr)
		a.buffer = buf
	}
	return nil
}

// ResetOutputs overwrites every output Argument's device Buffer with zeros
// of its declared element type. tuner.Core runs it once per configuration,
// immediately before that configuration's kNumRuns timed launches.
func (s *Store) ResetOutputs() {
	for _, a := range s.args {
		if a.kind != KindOutput {
			continue
		}
		ptr, n := bufferBytes(a.zero)
		if n > 0 {
			a.buffer.Write(ptr, n)
		}
	}
}

// LaunchArgs assembles the kernel-call argument list in ordinal order:
// scalars by value, buffers as device.Buffer.
func (s *Store) LaunchArgs() []interface{} {
	out := make([]interface{}, len(s.args))
	for i, a := range s.args {
		if a.kind == KindScalar {
			out[i] = a.host
		} else {
			out[i] = a.buffer
		}
	}
	return out
}

// Free releases every Argument's device Buffer.
func (s *Store) Free() {
	for _, a := range s.args {
		if a.buffer != nil {
			a.buffer.Free()
		}
	}
}

// CaptureReference reads every output Argument back from the device and
// adopts whatever it currently holds as that Argument's reference value —
// the mechanism a reference-kernel run uses to establish ground truth for
// every subsequent variant's VerifyOutputs call. The read lands in a and
// throwaway scratch slice, never overwriting a.host, so a later
// ResetOutputs still zeros from a.zero rather than from captured reference
// data.
func (s *Store) CaptureReference() {
	for _, a := range s.args {
		if a.kind != KindOutput {
			continue
		}
		scratch := cloneHost(a.host)
		ptr, n := bufferBytes(scratch)
		if n > 0 {
			a.buffer.Read(ptr, n)
		}
		a.reference = scratch
	}
}

func cloneHost(host any) any {
	switch v := host.(type) {
	case []float32:
		return append([]float32(nil), v...)
	case []float64:
		return append([]float64(nil), v...)
	case []int32:
		return append([]int32(nil), v...)
	case []int64:
		return append([]int64(nil), v...)
	case []uint64:
		return append([]uint64(nil), v...)
	case []complex64:
		return append([]complex64(nil), v...)
	case []complex128:
		return append([]complex128(nil), v...)
	default:
		return nil
	}
}

// VerifyOutputs reads every output Argument back from the device and
// compares it against its reference. The comparison metric is the sum of
// absolute elementwise differences (real and imaginary parts summed
// independently for complex types); an output passes when that sum is not
// NaN and does not exceed tolerance*N, where N is the output's element
// count. Outputs with no reference set are skipped. Returns false, and the
// worst observed deviation, on the first Argument that exceeds tolerance.
func (s *Store) VerifyOutputs(tolerance float64) (bool, float64, error) {
	worst := 0.0
	for _, a := range s.args {
		if a.kind != KindOutput || a.reference == nil {
			continue
		}
		scratch := cloneHost(a.host)
		ptr, n := bufferBytes(scratch)
		if n > 0 {
			a.buffer.Read(ptr, n)
		}
		deviation, count, err := compareCategory(scratch, a.reference)
		if err != nil {
			return false, worst, fmt.Errorf("argument %q: %w", a.name, err)
		}
		if deviation > worst {
			worst = deviation
		}
		bound := tolerance * float64(count)
		if math.IsNaN(deviation) || deviation > bound {
			return false, worst, nil
		}
	}
	return true, worst, nil
}

// bufferBytes returns an unsafe.Pointer to a stored slice's backing array
// and its length in bytes, dispatching once on the concrete type.
func bufferBytes(host any) (unsafe.Pointer, int64) {
	switch v := host.(type) {
	case []float32:
		return sliceBytes(v, 4)
	case []float64:
		return sliceBytes(v, 8)
	case []int32:
		return sliceBytes(v, 4)
	case []int64:
		return sliceBytes(v, 8)
	case []uint64:
		return sliceBytes(v, 8)
	case []complex64:
		return sliceBytes(v, 8)
	case []complex128:
		return sliceBytes(v, 16)
	default:
		return nil, 0
	}
}

func sliceBytes[T any](v []T, elemSize int64) (unsafe.Pointer, int64) {
	if len(v) == 0 {
		return nil, 0
	}
	return unsafe.Pointer(&v[0]), int64(len(v)) * elemSize
}

// compareCategory dispatches to the real or complex absolute-difference-sum
// routine for whichever concrete slice type got and want hold, and reports
// the element count the caller uses to scale its tolerance bound.
func compareCategory(gotAny, wantAny any) (deviation float64, count int, err error) {
	switch got := gotAny.(type) {
	case []float32:
		want := wantAny.([]float32)
		return absDiffSum(got, want), len(want), nil
	case []float64:
		want := wantAny.([]float64)
		return absDiffSum(got, want), len(want), nil
	case []int32:
		want := wantAny.([]int32)
		return absDiffSum(got, want), len(want), nil
	case []int64:
		want := wantAny.([]int64)
		return absDiffSum(got, want), len(want), nil
	case []uint64:
		want := wantAny.([]uint64)
		return absDiffSum(got, want), len(want), nil
	case []complex64:
		want := wantAny.([]complex64)
		return complexAbsDiffSum(got, want), len(want), nil
	case []complex128:
		want := wantAny.([]complex128)
		return complexAbsDiffSum(got, want), len(want), nil
	default:
		return 0, 0, fmt.Errorf("unsupported argument type %T", gotAny)
	}
}

// absDiffSum sums |reference[i] - result[i]| over every element.
func absDiffSum[T RealNumeric](got, want []T) float64 {
	var sum float64
	for i := range want {
		sum += math.Abs(float64(want[i]) - float64(got[i]))
	}
	return sum
}

// complexAbsDiffSum sums |Δreal| + |Δimag| over every element.
func complexAbsDiffSum[T ~complex64 | ~complex128](got, want []T) float64 {
	var sum float64
	for i := range want {
		g, w := complex128(got[i]), complex128(want[i])
		sum += math.Abs(real(w)-real(g)) + math.Abs(imag(w)-imag(g))
	}
	return sum
}
