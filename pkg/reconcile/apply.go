package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cenkalti/backoff/v4"

	"github.com/bgplab-net/bgplab/pkg/graph"
	"github.com/bgplab-net/bgplab/pkg/provider"
	"github.com/bgplab-net/bgplab/pkg/util"
)

// Reconciler applies changesets against a provider.
type Reconciler struct {
	Provider provider.Provider
	Parallel int    // max concurrent provider calls within a tier
	Retries  uint64 // retry attempts per provider call
}

// New returns a Reconciler with default parallelism and retries.
func New(p provider.Provider) *Reconciler {
	return &Reconciler{Provider: p, Parallel: 4, Retries: 3}
}

// Result summarizes one apply or destroy run.
type Result struct {
	RunID    string
	Observed []*provider.Observed // live state after the run, in apply order
	Created  int
	Updated  int
	Deleted  int
}

// Apply executes the changeset: deletes first (dependents before
// dependencies), then creates/updates tier by tier. Resources within a
// tier share no edges and are reconciled in parallel. On error the
// current tier is drained and the partial result returned, so callers
// can still persist what was applied.
func (r *Reconciler) Apply(ctx context.Context, g *graph.Graph, cs *ChangeSet) (*Result, error) {
	res := &Result{RunID: cs.RunID}

	byRef := make(map[graph.Ref]Change, len(cs.Changes))
	for _, c := range cs.Changes {
		byRef[c.Ref] = c
	}

	var mu sync.Mutex

	// Delete sweep, reverse kind order.
	for i := len(kindOrder) - 1; i >= 0; i-- {
		kind := kindOrder[i]
		var refs []graph.Ref
		for _, c := range cs.Changes {
			if c.Type == ChangeDelete && c.Ref.Kind == kind {
				refs = append(refs, c.Ref)
			}
		}
		if len(refs) == 0 {
			continue
		}
		err := r.forEach(ctx, len(refs), func(j int) error {
			ref := refs[j]
			util.WithResource(string(ref.Kind), ref.Name).Info("deleting")
			if err := r.withRetry(ctx, func() error {
				return r.Provider.Delete(ctx, ref)
			}); err != nil {
				return fmt.Errorf("%s: %w", ref, err)
			}
			mu.Lock()
			res.Deleted++
			mu.Unlock()
			return nil
		})
		if err != nil {
			return res, err
		}
	}

	// Create/update sweep, forward tier order.
	for _, tier := range g.Tiers() {
		tier := tier
		err := r.forEach(ctx, len(tier), func(j int) error {
			resource := tier[j]
			ref := resource.Ref()
			change, ok := byRef[ref]

			var obs *provider.Observed
			var opErr error
			switch {
			case !ok:
				// Unchanged; re-read so the result reflects live state.
				opErr = r.withRetry(ctx, func() error {
					var err error
					obs, err = r.Provider.Get(ctx, ref)
					return err
				})
			case change.Type == ChangeAdd:
				util.WithResource(string(ref.Kind), ref.Name).Info("creating")
				opErr = r.withRetry(ctx, func() error {
					var err error
					obs, err = r.Provider.Create(ctx, resource)
					return err
				})
			case change.Type == ChangeModify:
				util.WithResource(string(ref.Kind), ref.Name).Info("updating")
				opErr = r.withRetry(ctx, func() error {
					var err error
					obs, err = r.Provider.Update(ctx, resource)
					return err
				})
			default:
				return nil
			}
			if opErr != nil {
				return fmt.Errorf("%s: %w", ref, opErr)
			}

			mu.Lock()
			res.Observed = append(res.Observed, obs)
			switch {
			case ok && change.Type == ChangeAdd:
				res.Created++
			case ok && change.Type == ChangeModify:
				res.Updated++
			}
			mu.Unlock()
			return nil
		})
		if err != nil {
			return res, err
		}
	}

	return res, nil
}

// Destroy deletes every resource in the graph, dependents first.
// Resources already gone are skipped.
func (r *Reconciler) Destroy(ctx context.Context, g *graph.Graph) (*Result, error) {
	res := &Result{RunID: NewChangeSet(g.Lab).RunID}

	var mu sync.Mutex
	tiers := g.Tiers()
	for i := len(tiers) - 1; i >= 0; i-- {
		tier := tiers[i]
		err := r.forEach(ctx, len(tier), func(j int) error {
			ref := tier[j].Ref()
			err := r.withRetry(ctx, func() error {
				return r.Provider.Delete(ctx, ref)
			})
			if errors.Is(err, util.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s: %w", ref, err)
			}
			mu.Lock()
			res.Deleted++
			mu.Unlock()
			return nil
		})
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// forEach runs fn(0..n-1) with bounded parallelism and returns the
// first error after all workers finish.
func (r *Reconciler) forEach(ctx context.Context, n int, fn func(i int) error) error {
	parallel := r.Parallel
	if parallel < 1 {
		parallel = 1
	}

	sem := make(chan struct{}, parallel)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := fn(i); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	return firstErr
}

// withRetry wraps a provider call with exponential backoff. Validation
// class failures are permanent; only transient provider errors retry.
func (r *Reconciler) withRetry(ctx context.Context, fn func() error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.Retries), ctx)
	return backoff.Retry(func() error {
		err := fn()
		switch {
		case err == nil:
			return nil
		case errors.Is(err, util.ErrNotFound),
			errors.Is(err, util.ErrAlreadyExists),
			errors.Is(err, util.ErrDependencyMissing):
			return backoff.Permanent(err)
		default:
			return err
		}
	}, b)
}
