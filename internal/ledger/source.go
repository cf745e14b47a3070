package ledger

import (
	"hash/fnv"
	"math/rand/v2"

	"finboard/internal/core"
)

// Source is the randomness the generator draws from. *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
	Int64N(n int64) int64
	Shuffle(n int, swap func(i, j int))
}

// Stream names used to derive independent sources for one period.
const (
	StreamExpense  = "expense"
	StreamRevenue  = "revenue"
	StreamTarget   = "target"
	StreamAnnual   = "annual"
	StreamPrevious = "previous"
)

// NewSource returns a PCG-backed source for the seed.
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SourceFor derives a deterministic source for a named stream of a period.
// Two calls with the same arguments always produce the same sequence.
func SourceFor(seed uint64, p core.Period, stream string) Source {
	h := fnv.New64a()
	_, _ = h.Write([]byte(p.String()))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(stream))
	return rand.New(rand.NewPCG(seed, h.Sum64()))
}

// YearSource derives a source for a stream that covers a whole year.
func YearSource(seed uint64, year int, stream string) Source {
	return SourceFor(seed, core.Period{Year: year, Month: 1}, "year:"+stream)
}

// randomInt draws uniformly from [lo, hi].
func randomInt(src Source, lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + src.Int64N(hi-lo+1)
}
