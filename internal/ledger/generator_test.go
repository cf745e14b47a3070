package ledger

import (
	"reflect"
	"testing"
	"time"

	"finboard/internal/core"
)

// scriptedSource returns queued draws in order, then zero. Shuffle is a no-op
// so pool order is predictable.
type scriptedSource struct {
	draws []int64
}

func (s *scriptedSource) next() int64 {
	if len(s.draws) == 0 {
		return 0
	}
	v := s.draws[0]
	s.draws = s.draws[1:]
	return v
}

func (s *scriptedSource) IntN(n int) int { return int(s.next()) % n }
func (s *scriptedSource) Int64N(n int64) int64 { return s.next() % n }
func (s *scriptedSource) Shuffle(n int, swap func(i, j int)) {}

var march2024 = core.Period{Year: 2024, Month: time.March}

func mustPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s did not panic", name)
		}
	}()
	f()
}

func TestGenerateRecords_ScriptedCountOfFive(t *testing.T) {
	// count offset 2 -> 3+2 = 5 records; everything else draws the minimum
	src := &scriptedSource{draws: []int64{2}}

	records := GenerateRecords(march2024, core.Expense, src)

	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}
	for i, r := range records {
		if r.Amount.Cents < 500 || r.Amount.Cents > 20500 {
			t.Errorf("record %d amount %v outside [5.00, 205.00]", i, r.Amount)
		}
		if want := core.Pool(core.Expense)[i%5].Name; r.Category != want {
			t.Errorf("record %d category %q, want %q", i, r.Category, want)
		}
		if r.Name != r.Category+" Purchase" {
			t.Errorf("record %d name %q", i, r.Name)
		}
		if r.Source != core.GeneratedSource {
			t.Errorf("record %d source %q", i, r.Source)
		}
		if r.OccurredOn.Day() != 1 {
			t.Errorf("record %d day %d", i, r.OccurredOn.Day())
		}
		if want := int64(2024*100000 + 2*1000 + 1*10 + i); r.ID != want {
			t.Errorf("record %d id %d, want %d", i, r.ID, want)
		}
	}
}

func TestGenerateRecords_Properties(t *testing.T) {
	periods := []core.Period{
		{Year: 2024, Month: time.February},
		{Year: 2023, Month: time.February},
		{Year: 2024, Month: time.April},
		{Year: 2024, Month: time.December},
	}
	for seed := uint64(0); seed < 50; seed++ {
		for _, p := range periods {
			for _, k := range core.Kinds() {
				records := GenerateRecords(p, k, NewSource(seed))
				if len(records) < 3 || len(records) > 7 {
					t.Fatalf("seed %d %s %s: %d records", seed, p, k, len(records))
				}

				lo, hi := amountRange(k)
				var sum int64
				for _, r := range records {
					if !p.Contains(r.OccurredOn) || r.OccurredOn.Day() > p.DaysIn() {
						t.Fatalf("date %s outside %s", r.OccurredOn.ISO(), p)
					}
					if !core.InPool(k, r.Category) || r.Kind != k {
						t.Fatalf("%s record with category %s", r.Kind, r.Category)
					}
					if r.Amount.Cents < lo || r.Amount.Cents > hi {
						t.Fatalf("%s amount %v outside range", k, r.Amount)
					}
					if err := r.Validate(); err != nil {
						t.Fatalf("invalid record: %v", err)
					}
					sum += r.Amount.Cents
				}
				if total := Aggregate(records).Total.Cents; total != sum {
					t.Fatalf("aggregate %d, sum %d", total, sum)
				}
			}
		}
	}
}

func TestGenerateRecords_CyclesPoolBeforeRepeating(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		records := GenerateRecords(march2024, core.Revenue, NewSource(seed))
		seen := map[string]int{}
		for i, r := range records {
			if i < 4 && seen[r.Category] != 0 {
				t.Fatalf("seed %d: category %s repeated before pool exhausted", seed, r.Category)
			}
			if i >= 4 && records[i-4].Category != r.Category {
				t.Fatalf("seed %d: record %d category %s, want %s", seed, i, r.Category, records[i-4].Category)
			}
			seen[r.Category]++
		}
	}
}

func TestGenerateRecords_SameSeedSameOutput(t *testing.T) {
	a := GenerateRecords(march2024, core.Expense, SourceFor(42, march2024, StreamExpense))
	b := GenerateRecords(march2024, core.Expense, SourceFor(42, march2024, StreamExpense))
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different records")
	}
}

func TestGenerateRecords_PanicsOnInvalidInput(t *testing.T) {
	mustPanic(t, "zero period", func() { GenerateRecords(core.Period{}, core.Expense, NewSource(1)) })
	mustPanic(t, "unknown kind", func() { GenerateRecords(march2024, core.Kind("all"), NewSource(1)) })
}

func TestAggregate(t *testing.T) {
	records := []core.TransactionRecord{
		{Category: "Dining", Icon: "🍽️", Amount: core.Money{Cents: 1050}},
		{Category: "Groceries", Icon: "🥦", Amount: core.Money{Cents: 2001}},
		{Category: "Dining", Icon: "🍽️", Amount: core.Money{Cents: 949}},
	}

	first := Aggregate(records)
	if second := Aggregate(records); !reflect.DeepEqual(first, second) {
		t.Fatal("Aggregate is not idempotent")
	}
	if first.Total.Cents != 4000 {
		t.Fatalf("total %d, want 4000", first.Total.Cents)
	}
	if len(first.ByCategory) != 2 {
		t.Fatalf("categories: %+v", first.ByCategory)
	}
	dining := first.ByCategory[0]
	if dining.Name != "Dining" || dining.Amount.Cents != 1999 || dining.Count != 2 {
		t.Fatalf("dining %+v", dining)
	}
	if first.ByCategory[1].Name != "Groceries" {
		t.Fatalf("second category %q", first.ByCategory[1].Name)
	}
	if Aggregate(nil).Total.Cents != 0 {
		t.Fatal("empty aggregate must be zero")
	}
}

func TestPercentChange(t *testing.T) {
	cases := []struct {
		cur, prev core.Money
		want      string
	}{
		{core.Units(150), core.Units(100), "50.0"},
		{core.Units(50), core.Units(100), "-50.0"},
		{core.Money{Cents: 10001}, core.Money{Cents: 30000}, "-66.7"},
	}
	for _, tc := range cases {
		pc, ok := PercentChange(tc.cur, tc.prev)
		if !ok || pc.String() != tc.want {
			t.Errorf("PercentChange(%v, %v) = %s, %v; want %s", tc.cur, tc.prev, pc, ok, tc.want)
		}
	}

	for _, x := range []int64{0, 1, 99999} {
		if _, ok := PercentChange(core.Money{Cents: x}, core.Money{}); ok {
			t.Errorf("PercentChange(%d, 0) reported a value", x)
		}
	}
}

func TestComputeSnapshot(t *testing.T) {
	snap := ComputeSnapshot(march2024, NewSource(7))
	if snap.Period != march2024 {
		t.Fatalf("period %s", snap.Period)
	}
	if snap.TotalExpense.Cents <= 0 || snap.PreviousTotalRevenue.Cents <= 0 {
		t.Fatalf("empty totals %+v", snap)
	}
	if snap.PercentChange == nil || snap.RevenuePercentChange == nil {
		t.Fatal("expected percent changes with a baseline")
	}

	want, _ := PercentChange(snap.TotalExpense, snap.PreviousTotalExpense)
	if snap.PercentChange.String() != want.String() {
		t.Fatalf("percent change %s, want %s", snap.PercentChange, want)
	}
	if snap.Net() != snap.TotalRevenue.Sub(snap.TotalExpense) {
		t.Fatalf("net %v", snap.Net())
	}
}

func TestComputeSnapshot_FirstPeriodHasNoBaseline(t *testing.T) {
	first := core.Period{Year: core.MinYear, Month: time.January}
	snap := ComputeSnapshot(first, NewSource(3))
	if snap.PreviousTotalExpense.Cents != 0 || snap.PercentChange != nil || snap.RevenuePercentChange != nil {
		t.Fatalf("first period has a baseline: %+v", snap)
	}
}

func TestSummarizeMatchesMonthFor(t *testing.T) {
	cur := MonthFor(9, march2024)
	prev := MonthFor(9, march2024.Previous())
	snap := Summarize(cur, prev)

	if snap.PreviousTotalExpense != Aggregate(prev.Expenses).Total {
		t.Fatalf("previous expense %v", snap.PreviousTotalExpense)
	}
	if snap.TotalRevenue != Aggregate(cur.Revenues).Total {
		t.Fatalf("revenue %v", snap.TotalRevenue)
	}
	if !reflect.DeepEqual(cur.Expenses, cur.Records(core.Expense)) || !reflect.DeepEqual(cur.Revenues, cur.Records(core.Revenue)) {
		t.Fatal("Records does not return the month's records")
	}
}
