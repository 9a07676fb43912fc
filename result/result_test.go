package result

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/oclbench/cltune/internal/clog"
	"github.com/oclbench/cltune/kernel"
)

func TestStore_BestSkipsUnverifiedAndFailed(t *testing.T) {
	s := NewStore()
	s.Add(TunerResult{KernelName: "k", Time: 1.0, Verified: false})
	s.Add(TunerResult{KernelName: "k", Time: math.Inf(1), Verified: true})
	s.Add(TunerResult{KernelName: "k", Time: 5.0, Verified: true})
	s.Add(TunerResult{KernelName: "k", Time: 2.0, Verified: true})

	best, ok := s.Best()
	if !ok {
		t.Fatal("expected a best result")
	}
	if best.Time != 2.0 {
		t.Fatalf("expected best time 2.0, got %v", best.Time)
	}
}

func TestStore_BestEmpty(t *testing.T) {
	s := NewStore()
	if _, ok := s.Best(); ok {
		t.Fatal("expected no best result for an empty store")
	}
}

func TestStore_BestAllFailed(t *testing.T) {
	s := NewStore()
	s.Add(TunerResult{KernelName: "a", Time: math.Inf(1)})
	s.Add(TunerResult{KernelName: "b", Time: math.Inf(1), Verified: true})

	if _, ok := s.Best(); ok {
		t.Fatal("expected no best result when every run failed")
	}
}

func TestStore_AllIsAppendOnlyOrder(t *testing.T) {
	s := NewStore()
	s.Add(TunerResult{KernelName: "a"})
	s.Add(TunerResult{KernelName: "b"})
	all := s.All()
	if len(all) != 2 || all[0].KernelName != "a" || all[1].KernelName != "b" {
		t.Fatalf("expected append order preserved, got %v", all)
	}
}

func TestTunerResult_Failed(t *testing.T) {
	if !(TunerResult{Time: math.Inf(1)}).Failed() {
		t.Fatal("expected +Inf time to be Failed")
	}
	if (TunerResult{Time: 3.5}).Failed() {
		t.Fatal("expected finite time to not be Failed")
	}
}

func TestReporter_ReportRun(t *testing.T) {
	var buf bytes.Buffer
	log := clog.Pretty(&buf, slog.LevelInfo)
	r := NewReporter(log)
	cfg := kernel.Configuration{{Name: "X", Value: 16}}

	r.ReportRun(TunerResult{KernelName: "k", Time: 12.5, Verified: true, Configuration: cfg}, 0, 4)
	if !strings.Contains(buf.String(), clog.TagOK) {
		t.Fatalf("expected OK tag in output: %s", buf.String())
	}

	buf.Reset()
	r.ReportRun(TunerResult{KernelName: "k", Time: math.Inf(1), Configuration: cfg}, 1, 4)
	if !strings.Contains(buf.String(), clog.TagFailure) {
		t.Fatalf("expected FAILED tag in output: %s", buf.String())
	}

	buf.Reset()
	r.ReportRun(TunerResult{KernelName: "k", Time: 9.0, Verified: false, Configuration: cfg}, 2, 4)
	if !strings.Contains(buf.String(), clog.TagWarning) {
		t.Fatalf("expected WARNING tag in output: %s", buf.String())
	}
}
