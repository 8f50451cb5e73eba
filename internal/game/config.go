package game

import "time"

type Config struct {
	Cells        int           // number of target cells
	StartLives   int           // lives at the start of every round
	RoundSeconds int           // countdown start value
	TickInterval time.Duration // cadence of both the countdown and the rotation

	// LegacyQuirks keeps the legacy boundary behaviour: the
	// rotation never picks the last cell and the countdown ends one tick
	// after reaching zero.
	LegacyQuirks bool
}

func DefaultConfig() Config {
	return Config{
		Cells:        9,
		StartLives:   5,
		RoundSeconds: 60,
		TickInterval: 1000 * time.Millisecond,
	}
}

// normalized replaces unusable values with defaults.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.Cells < 1 {
		c.Cells = def.Cells
	}
	if c.StartLives < 0 {
		c.StartLives = def.StartLives
	}
	if c.RoundSeconds < 1 {
		c.RoundSeconds = def.RoundSeconds
	}
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	return c
}
