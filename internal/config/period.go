package config

import (
	"time"

	"finboard/internal/core"
)

func parsePeriod(s string) (core.Period, error) {
	return core.ParsePeriod(s)
}

// StartPeriod is BOARD_PERIOD when set, else the month containing now.
// Validate has already rejected a malformed BOARD_PERIOD.
func (c *Config) StartPeriod(now time.Time) core.Period {
	if c.InitialPeriod != "" {
		if p, err := parsePeriod(c.InitialPeriod); err == nil {
			return p
		}
	}
	return core.PeriodOf(now)
}

// Seed is BOARD_SEED when set, else derived from now so each fresh start
// shows different sample data.
func (c *Config) Seed(now time.Time) uint64 {
	if c.BoardSeed != 0 {
		return c.BoardSeed
	}
	return uint64(now.UnixNano())
}
