package search

import (
	"bytes"
	"math"
	"testing"

	"github.com/oclbench/cltune/kernel"
)

func testConfigs() []kernel.Configuration {
	var cfgs []kernel.Configuration
	for _, x := range []int{1, 2, 4, 8} {
		for _, y := range []int{1, 2, 4, 8} {
			cfgs = append(cfgs, kernel.Configuration{
				{Name: "X", Value: x},
				{Name: "Y", Value: y},
			})
		}
	}
	return cfgs
}

func TestFullSearch_VisitsEveryConfigurationOnce(t *testing.T) {
	cfgs := testConfigs()
	s := NewFullSearch(cfgs)
	if s.NumConfigurations() != len(cfgs) {
		t.Fatalf("expected %d configurations, got %d", len(cfgs), s.NumConfigurations())
	}
	seen := make(map[string]bool)
	for i := 0; i < s.NumConfigurations(); i++ {
		cfg := s.GetConfiguration()
		seen[cfg.Key()] = true
		s.PushExecutionTime(float64(i))
		s.CalculateNextIndex()
	}
	if len(seen) != len(cfgs) {
		t.Fatalf("expected every configuration visited once, got %d distinct", len(seen))
	}
}

func TestFullSearch_PrintLog(t *testing.T) {
	cfgs := testConfigs()
	s := NewFullSearch(cfgs)
	for i := 0; i < 3; i++ {
		s.GetConfiguration()
		s.PushExecutionTime(float64(i))
		s.CalculateNextIndex()
	}
	var buf bytes.Buffer
	s.PrintLog(&buf)
	if got := buf.String(); got == "" {
		t.Fatal("expected non-empty log")
	}
}

func TestRandomSearch_VisitBudget(t *testing.T) {
	cfgs := testConfigs()
	s := NewRandomSearch(cfgs, 0.5)
	if want := len(cfgs) / 2; s.NumConfigurations() != want {
		t.Fatalf("expected %d visits, got %d", want, s.NumConfigurations())
	}
	for i := 0; i < s.NumConfigurations(); i++ {
		cfg := s.GetConfiguration()
		if len(cfg) != 2 {
			t.Fatalf("unexpected configuration shape: %v", cfg)
		}
		s.PushExecutionTime(1.0)
		s.CalculateNextIndex()
	}
}

func TestRandomSearch_MinimumOneVisit(t *testing.T) {
	cfgs := testConfigs()
	s := NewRandomSearch(cfgs, 0.0001)
	if s.NumConfigurations() != 1 {
		t.Fatalf("expected minimum 1 visit, got %d", s.NumConfigurations())
	}
}

func TestAnnealing_AlwaysAcceptsImprovement(t *testing.T) {
	cfgs := testConfigs()
	s := NewAnnealing(cfgs, 1.0, 1.0)
	for i := 0; i < s.NumConfigurations(); i++ {
		s.GetConfiguration()
		evaluated := s.index
		s.PushExecutionTime(100.0 - float64(i)) // strictly improving
		s.CalculateNextIndex()
		// The final call only exhausts the budget; every earlier one must
		// accept the just-evaluated, faster candidate.
		if i < s.NumConfigurations()-1 && s.current != evaluated {
			t.Fatalf("step %d: improving candidate %d was not accepted (current %d)", i, evaluated, s.current)
		}
	}
	if s.executionTimes[s.current] == math.Inf(1) {
		t.Fatal("current should have a recorded execution time")
	}
}

func TestAnnealing_NeighborStaysWithinOneStep(t *testing.T) {
	cfgs := testConfigs()
	s := NewAnnealing(cfgs, 1.0, 1.0)
	base := 0 // X=1,Y=1
	next := s.neighbor(base)
	baseVals := s.configurations[base].Values()
	nextVals := s.configurations[next].Values()
	changed := 0
	for i := range baseVals {
		if baseVals[i] != nextVals[i] {
			changed++
		}
	}
	if changed > 1 {
		t.Fatalf("expected at most one parameter to change, got %d", changed)
	}
}

func TestPSO_RunsToBudget(t *testing.T) {
	cfgs := testConfigs()
	s := NewPSO(cfgs, 1.0, 4, 1.5, 1.5, 0.7)
	for i := 0; i < s.NumConfigurations(); i++ {
		cfg := s.GetConfiguration()
		if len(cfg) != 2 {
			t.Fatalf("unexpected configuration shape: %v", cfg)
		}
		s.PushExecutionTime(float64(len(cfgs) - i))
		s.CalculateNextIndex()
	}
	if math.IsInf(s.globalBestFit, 1) {
		t.Fatal("expected global best fitness to have been updated")
	}
}

func TestQuantizeStep_ClampsToOneStep(t *testing.T) {
	cases := map[float64]int{
		0.0:  0,
		0.4:  0,
		0.6:  1,
		5.0:  1,
		-0.6: -1,
		-5.0: -1,
	}
	for v, want := range cases {
		if got := quantizeStep(v); got != want {
			t.Errorf("quantizeStep(%v) = %d, want %d", v, got, want)
		}
	}
}
