package engine

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"fx-signal-lab/internal/fn"
	"fx-signal-lab/internal/pkgid"
)

// evalLayer fans one layer's nodes out across the worker pool. The layer
// grouping guarantees no two concurrently running nodes have a dependency
// relationship; the cache and the shared result map are the only contended
// state and both are locked.
func (e *Evaluator) evalLayer(
	ctx context.Context,
	layer []pkgid.ID,
	results map[pkgid.ID]fn.Value,
	mu *sync.Mutex,
	substitutions *int,
) error {
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(e.Workers)

	for _, id := range layer {
		grp.Go(func() error {
			if err := passBudget(ctx); err != nil {
				return err
			}
			subs, err := e.evalNode(id, results, mu)
			if err != nil {
				return err
			}
			mu.Lock()
			*substitutions += subs
			mu.Unlock()
			return nil
		})
	}
	return grp.Wait()
}
