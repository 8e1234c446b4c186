package helios

import (
	"context"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Option configures the parallel operations.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(opts *options) {
	f(opts)
}

type options struct {
	workers  int
	progress func(n int)
}

// WithWorkers bounds the number of goroutines, 0 meaning GOMAXPROCS.
func WithWorkers(n int) Option {
	return optionFunc(func(o *options) {
		o.workers = n
	})
}

// WithProgress is called with 1 as each unit of work finishes, possibly
// from several goroutines at once.
func WithProgress(fn func(n int)) Option {
	return optionFunc(func(o *options) {
		o.progress = fn
	})
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt.apply(o)
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	if o.progress == nil {
		o.progress = func(int) {}
	}
	return o
}

// parallel runs fn(i) for i in [0, n) on the worker pool.
func (o *options) parallel(ctx context.Context, n int, fn func(i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i := 0; i < n; i++ {
		i := i
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := fn(i)
			o.progress(1)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// VerifyVotes verifies every vote on the worker pool. The result for each
// vote is independent; the error is only for cancellation or an unusable election.
func VerifyVotes(ctx context.Context, election *Election, votes []*EncryptedVote, opts ...Option) ([]bool, error) {
	v, err := newVerifier(election)
	if err != nil {
		return nil, err
	}
	ok := make([]bool, len(votes))
	err = buildOptions(opts).parallel(ctx, len(votes), func(i int) error {
		if err := v.vote(votes[i]); err != nil {
			log.Debug().Int("vote", i).Err(err).Msg("encrypted vote rejected")
			return nil
		}
		ok[i] = true
		return nil
	})
	return ok, err
}
