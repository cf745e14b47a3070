package ledger

import (
	"reflect"
	"testing"

	"finboard/internal/core"
)

func TestComputeTargetProgress_Bounds(t *testing.T) {
	for seed := uint64(0); seed < 200; seed++ {
		tp := ComputeTargetProgress(march2024, NewSource(seed))

		if tp.Target.Cents < core.Units(1000).Cents || tp.Target.Cents > core.Units(5000).Cents {
			t.Fatalf("seed %d: target %v outside [1000, 5000]", seed, tp.Target)
		}
		if tp.Actual.Cents < 0 || tp.Actual.Cents > tp.Target.Cents {
			t.Fatalf("seed %d: actual %v outside [0, %v]", seed, tp.Actual, tp.Target)
		}
		if tp.PreviousActual.Cents > tp.Target.Cents || tp.Today.Cents > tp.Actual.Cents {
			t.Fatalf("seed %d: previous %v today %v", seed, tp.PreviousActual, tp.Today)
		}
		if tp.ProgressPercent.IsNegative() || tp.ProgressPercent.Float64() > 100 {
			t.Fatalf("seed %d: progress %s", seed, tp.ProgressPercent)
		}
		if tp.PreviousActual.IsZero() != (tp.ChangeVsPreviousMonth == nil) {
			t.Fatalf("seed %d: change %v with previous %v", seed, tp.ChangeVsPreviousMonth, tp.PreviousActual)
		}
	}
}

func TestComputeTargetProgress_FullTarget(t *testing.T) {
	// target offset 3000 -> 4000; actual offset 4000 -> 4000
	src := &scriptedSource{draws: []int64{3000, 4000, 2000, 0}}

	tp := ComputeTargetProgress(march2024, src)

	if tp.Target != core.Units(4000) || tp.Actual != core.Units(4000) {
		t.Fatalf("target %v actual %v", tp.Target, tp.Actual)
	}
	if got := tp.ProgressPercent.String(); got != "100.00" {
		t.Fatalf("progress %s, want 100.00", got)
	}
	if tp.PreviousActual != core.Units(2000) {
		t.Fatalf("previous %v", tp.PreviousActual)
	}
	if tp.ChangeVsPreviousMonth == nil || tp.ChangeVsPreviousMonth.String() != "100.0" {
		t.Fatalf("change %v, want 100.0", tp.ChangeVsPreviousMonth)
	}
	if !tp.Today.IsZero() {
		t.Fatalf("today %v", tp.Today)
	}
}

func TestComputeTargetProgress_NoPreviousBaseline(t *testing.T) {
	src := &scriptedSource{draws: []int64{0, 500, 0}}

	tp := ComputeTargetProgress(march2024, src)

	if tp.Target != core.Units(1000) {
		t.Fatalf("target %v", tp.Target)
	}
	if got := tp.ProgressPercent.String(); got != "50.00" {
		t.Fatalf("progress %s, want 50.00", got)
	}
	if tp.ChangeVsPreviousMonth != nil {
		t.Fatalf("change %s without a baseline", tp.ChangeVsPreviousMonth)
	}
}

func TestGenerateAnnualSeries(t *testing.T) {
	s := GenerateAnnualSeries(2024, YearSource(11, 2024, StreamAnnual))

	if s.Year != 2024 || len(s.Months) != 12 || len(s.Income) != 12 || len(s.Expense) != 12 {
		t.Fatalf("series shape %+v", s)
	}
	if s.Months[0] != "Jan" || s.Months[11] != "Dec" {
		t.Fatalf("months %v", s.Months)
	}
	for i := range 12 {
		if in := s.Income[i].Cents; in < core.Units(1000).Cents || in > core.Units(5000).Cents {
			t.Errorf("month %d income %v", i, s.Income[i])
		}
		if ex := s.Expense[i].Cents; ex < core.Units(500).Cents || ex > core.Units(2000).Cents {
			t.Errorf("month %d expense %v", i, s.Expense[i])
		}
	}

	if again := GenerateAnnualSeries(2024, YearSource(11, 2024, StreamAnnual)); !reflect.DeepEqual(s, again) {
		t.Fatal("same seed produced a different series")
	}
}

func TestComputeTargetProgress_PanicsOnInvalidPeriod(t *testing.T) {
	mustPanic(t, "month 13", func() { ComputeTargetProgress(core.Period{Year: 2024, Month: 13}, NewSource(1)) })
	mustPanic(t, "year 0", func() { GenerateAnnualSeries(0, NewSource(1)) })
}
