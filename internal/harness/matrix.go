package harness

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Helios-vmg/rwmutex"
)

// Bounds are the exact maxima a pairing must produce: the most callers seen
// holding for reading at once, and the most seen holding for writing.
type Bounds struct {
	Shared    int
	Exclusive int
}

// Observation is the outcome of one round of one pairing.
type Observation struct {
	A, B      Op
	Round     int
	Shared    int
	Exclusive int
}

func (o Observation) String() string {
	return fmt.Sprintf("%v + %v (round %d): shared=%d exclusive=%d",
		o.A, o.B, o.Round, o.Shared, o.Exclusive)
}

// expected is indexed by the two Ops of a pairing.
var expected = [len(Ops)][len(Ops)]Bounds{
	Read: {
		Read:                  {2, 0},
		ReadThenWrite:         {2, 1},
		ReadThenWriteThenRead: {2, 1},
		Write:                 {1, 1},
	},
	ReadThenWrite: {
		Read:                  {2, 1},
		ReadThenWrite:         {2, 1},
		ReadThenWriteThenRead: {2, 1},
		Write:                 {1, 1},
	},
	ReadThenWriteThenRead: {
		Read:                  {2, 1},
		ReadThenWrite:         {2, 1},
		ReadThenWriteThenRead: {2, 1},
		Write:                 {1, 1},
	},
	Write: {
		Read:                  {1, 1},
		ReadThenWrite:         {1, 1},
		ReadThenWriteThenRead: {1, 1},
		Write:                 {0, 1},
	},
}

// Expected returns the bounds that running a and b together must produce.
func Expected(a, b Op) Bounds {
	return expected[a][b]
}

// Run releases a caller performing a and a caller performing b at the same
// instant, once per configured round with a fresh lock each round, and
// reports what each round observed. The error lists every round whose observation
// differs from Expected(a, b), and any round that left the lock held.
func Run(a, b Op, opts ...Option) ([]Observation, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	var (
		line StartLine
		errs []error
		obs  = make([]Observation, 0, cfg.rounds)
		want = Expected(a, b)
	)
	work := func() { time.Sleep(cfg.work) }

	for round := range cfg.rounds {
		var m rwmutex.RWMutex
		var shared, exclusive Counter
		var g errgroup.Group
		for _, op := range [2]Op{a, b} {
			g.Go(func() (err error) {
				defer func() {
					if v := recover(); v != nil {
						err = fmt.Errorf("%v: %v", op, v)
					}
				}()
				line.Arrive(2)
				if cfg.jitter > 0 {
					time.Sleep(rand.N(cfg.jitter))
				}
				Perform(&m, op, &shared, &exclusive, work)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			errs = append(errs, err)
		}

		o := Observation{
			A:         a,
			B:         b,
			Round:     round,
			Shared:    shared.Max(),
			Exclusive: exclusive.Max(),
		}
		obs = append(obs, o)
		if cfg.logf != nil {
			cfg.logf("%v", o)
		}
		if o.Shared != want.Shared || o.Exclusive != want.Exclusive {
			errs = append(errs, fmt.Errorf("%v: want shared=%d exclusive=%d",
				o, want.Shared, want.Exclusive))
		}
		if st := m.Stats(); st != (rwmutex.Stats{State: rwmutex.Unlocked}) {
			errs = append(errs, fmt.Errorf("%v: lock left %v with %d queued, %d contending",
				o, st.State, st.Queued, st.Contending))
		}
	}
	return obs, errors.Join(errs...)
}

// RunMatrix runs every ordered pairing of Ops and joins their errors.
func RunMatrix(opts ...Option) ([]Observation, error) {
	var (
		all  []Observation
		errs []error
	)
	for _, a := range Ops {
		for _, b := range Ops {
			obs, err := Run(a, b, opts...)
			all = append(all, obs...)
			if err != nil {
				errs = append(errs, err)
			}
		}
	}
	return all, errors.Join(errs...)
}
