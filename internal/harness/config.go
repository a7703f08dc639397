package harness

import (
	"time"
)

// Config controls how the matrix is exercised.
type Config struct {
	// work is how long a caller stays in each step of its Op.
	// It must be long enough that two callers released together
	// overlap in the steps they are allowed to share.
	work time.Duration

	// jitter is the upper bound of a random delay each caller sleeps
	// after the start line and before touching the lock.
	jitter time.Duration

	// rounds is how many times each pairing is run.
	rounds int

	// logf receives one line per observation. Nil means silent.
	logf func(format string, args ...any)
}

// Option configures a Config.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		work:   50 * time.Millisecond,
		rounds: 1,
	}
}

// WithWork sets the time spent in each step. Non-positive values are ignored.
func WithWork(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.work = d
		}
	}
}

// WithJitter delays each caller by a random duration in [0, d) before it
// touches the lock. The delay should stay well below the work duration,
// otherwise callers may stop overlapping.
func WithJitter(d time.Duration) Option {
	return func(c *Config) {
		c.jitter = max(d, 0)
	}
}

// WithRounds sets how many times each pairing is run. Values below one are
// ignored.
func WithRounds(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.rounds = n
		}
	}
}

// WithLogf sets a sink for per-observation log lines, e.g. testing.T.Logf.
func WithLogf(f func(format string, args ...any)) Option {
	return func(c *Config) {
		c.logf = f
	}
}
