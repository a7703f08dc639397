package harness

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Helios-vmg/rwmutex"
)

func TestCounter(t *testing.T) {
	var c Counter
	leave := c.Track()
	c.Enter()
	assert.Equal(t, 2, c.Current())
	c.Leave()
	leave()
	assert.Equal(t, 0, c.Current())
	assert.Equal(t, 2, c.Max())

	const n = 64
	var wg sync.WaitGroup
	var line StartLine
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			line.Arrive(n)
			defer c.Track()()
			time.Sleep(20 * time.Millisecond)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, c.Current())
	assert.LessOrEqual(t, c.Max(), n)
	assert.Greater(t, c.Max(), 2)
}

func TestStartLine_ReleasesTogether(t *testing.T) {
	const parties = 8
	const rounds = 20
	var line StartLine
	var mu sync.Mutex
	arrived := 0

	var wg sync.WaitGroup
	wg.Add(parties)
	for range parties {
		go func() {
			defer wg.Done()
			for r := range rounds {
				mu.Lock()
				arrived++
				mu.Unlock()
				line.Arrive(parties)
				mu.Lock()
				got := arrived
				mu.Unlock()
				assert.GreaterOrEqual(t, got, (r+1)*parties)
				line.Arrive(parties)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, parties*rounds, arrived)
}

func TestStartLine_PanicsOnBadParties(t *testing.T) {
	var line StartLine
	assert.Panics(t, func() { line.Arrive(0) })
	assert.Equal(t, 0, line.Arrive(1))
}

func TestOpString(t *testing.T) {
	names := map[string]bool{}
	for _, op := range Ops {
		names[op.String()] = true
	}
	assert.Len(t, names, len(Ops))
	assert.Equal(t, "invalid", Op(42).String())
}

func TestExpected_Symmetric(t *testing.T) {
	for _, a := range Ops {
		for _, b := range Ops {
			assert.Equal(t, Expected(a, b), Expected(b, a), "%v + %v", a, b)
		}
	}
	assert.Equal(t, Bounds{Shared: 0, Exclusive: 1}, Expected(Write, Write))
	assert.Equal(t, Bounds{Shared: 2, Exclusive: 0}, Expected(Read, Read))
	assert.Equal(t, Bounds{Shared: 1, Exclusive: 1}, Expected(Read, Write))
}

func TestPerform_Alone(t *testing.T) {
	for _, op := range Ops {
		t.Run(op.String(), func(t *testing.T) {
			var m rwmutex.RWMutex
			var shared, exclusive Counter
			steps := 0
			Perform(&m, op, &shared, &exclusive, func() { steps++ })

			require.Equal(t, rwmutex.Stats{State: rwmutex.Unlocked}, m.Stats())
			assert.Equal(t, 0, shared.Current())
			assert.Equal(t, 0, exclusive.Current())
			switch op {
			case Read:
				assert.Equal(t, 1, steps)
				assert.Equal(t, 1, shared.Max())
				assert.Equal(t, 0, exclusive.Max())
			case ReadThenWrite:
				assert.Equal(t, 2, steps)
				assert.Equal(t, 1, shared.Max())
				assert.Equal(t, 1, exclusive.Max())
			case ReadThenWriteThenRead:
				assert.Equal(t, 3, steps)
				assert.Equal(t, 1, shared.Max())
				assert.Equal(t, 1, exclusive.Max())
			case Write:
				assert.Equal(t, 1, steps)
				assert.Equal(t, 0, shared.Max())
				assert.Equal(t, 1, exclusive.Max())
			}
		})
	}
}

func TestPerform_UnknownOp(t *testing.T) {
	var m rwmutex.RWMutex
	var shared, exclusive Counter
	assert.Panics(t, func() {
		Perform(&m, Op(9), &shared, &exclusive, func() {})
	})
}

func TestConfigOptions(t *testing.T) {
	cfg := defaultConfig()
	for _, o := range []Option{
		WithWork(-1),
		WithRounds(0),
		WithJitter(-time.Second),
	} {
		o(&cfg)
	}
	assert.Equal(t, defaultConfig().work, cfg.work)
	assert.Equal(t, 1, cfg.rounds)
	assert.Zero(t, cfg.jitter)

	WithWork(time.Second)(&cfg)
	WithRounds(3)(&cfg)
	WithJitter(time.Millisecond)(&cfg)
	assert.Equal(t, time.Second, cfg.work)
	assert.Equal(t, 3, cfg.rounds)
	assert.Equal(t, time.Millisecond, cfg.jitter)
}

// Each pairing runs on its own lock, so pairings run in parallel.
func TestMatrix(t *testing.T) {
	rounds := 3
	if testing.Short() {
		rounds = 1
	}
	for _, a := range Ops {
		for _, b := range Ops {
			t.Run(a.String()+"+"+b.String(), func(t *testing.T) {
				t.Parallel()
				obs, err := Run(a, b,
					WithRounds(rounds),
					WithJitter(5*time.Millisecond),
					WithLogf(t.Logf),
				)
				require.NoError(t, err)
				require.Len(t, obs, rounds)
				for _, o := range obs {
					assert.Equal(t, a, o.A)
					assert.Equal(t, b, o.B)
				}
			})
		}
	}
}

func TestRunMatrix(t *testing.T) {
	if testing.Short() {
		t.Skip("runs every pairing sequentially")
	}
	obs, err := RunMatrix(WithWork(30 * time.Millisecond))
	require.NoError(t, err)
	assert.Len(t, obs, len(Ops)*len(Ops))
}
