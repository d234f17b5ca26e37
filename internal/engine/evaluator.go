package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fx-signal-lab/internal/fn"
	"fx-signal-lab/internal/graph"
	"fx-signal-lab/internal/observability"
	"fx-signal-lab/internal/pkgid"
)

// ErrTimeout is returned when an evaluation pass exceeds its wall-clock
// budget. The pass is aborted without returning partial results; values
// cached by completed nodes remain valid for the next attempt.
var ErrTimeout = errors.New("evaluation pass exceeded time budget")

// Evaluator executes the graph in topological order. It owns the result
// cache and must not be shared across unrelated graphs.
//
// An Evaluator assumes the graph is frozen for the duration of a pass;
// the caller (normally the feed session) is responsible for keeping
// registrations and passes from overlapping.
type Evaluator struct {
	g      *graph.Graph
	cache  *Cache
	logger *slog.Logger

	// Budget bounds one evaluation pass; 0 means unbounded. The legacy
	// system targets single-digit-to-tens-of-milliseconds per pass.
	Budget time.Duration

	// Workers enables layer-parallel evaluation when > 1. Nodes within one
	// layer never depend on each other (a registration invariant), so they
	// may run concurrently as a pure performance optimization.
	Workers int

	lastSubstitutions int
}

// NewEvaluator creates an evaluator over g with its own cache.
// A nil logger falls back to slog.Default().
func NewEvaluator(g *graph.Graph, cache *Cache, logger *slog.Logger) *Evaluator {
	if cache == nil {
		cache = NewCache(DefaultTTL)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{g: g, cache: cache, logger: logger}
}

// Cache exposes the evaluator-owned cache for invalidation and stats.
func (e *Evaluator) Cache() *Cache {
	return e.cache
}

// LastSubstitutions returns the missing-input substitution count of the
// most recent successful pass. Like Evaluate itself, it is not safe for
// concurrent use.
func (e *Evaluator) LastSubstitutions() int {
	return e.lastSubstitutions
}

// Evaluate runs one pass over the whole graph and returns node values.
// If targets are given the returned map is filtered to those identifiers;
// otherwise all node values are returned.
//
// Re-evaluating with unchanged raw inputs and no intervening registrations
// yields identical outputs: the order is deterministic and every function
// is stateless.
func (e *Evaluator) Evaluate(ctx context.Context, targets ...pkgid.ID) (map[pkgid.ID]fn.Value, error) {
	start := time.Now()

	if e.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Budget)
		defer cancel()
	}

	results := make(map[pkgid.ID]fn.Value, e.g.Len())
	substitutions := 0

	var err error
	if e.Workers > 1 {
		substitutions, err = e.runParallel(ctx, results)
	} else {
		substitutions, err = e.runSerial(ctx, results)
	}

	elapsed := time.Since(start)
	e.cache.recordBuild(elapsed)

	if err != nil {
		timedOut := errors.Is(err, ErrTimeout)
		observability.RecordPass("error", elapsed.Seconds(), timedOut)
		return nil, err
	}
	observability.RecordPass("ok", elapsed.Seconds(), false)
	observability.RecordSubstitutions(substitutions)
	observability.RecordPassSuccess(time.Now())
	e.lastSubstitutions = substitutions

	if len(targets) == 0 {
		return results, nil
	}
	filtered := make(map[pkgid.ID]fn.Value, len(targets))
	for _, id := range targets {
		if v, ok := results[id]; ok {
			filtered[id] = v
		}
	}
	return filtered, nil
}

// runSerial evaluates in strict topological order on the calling goroutine.
func (e *Evaluator) runSerial(ctx context.Context, results map[pkgid.ID]fn.Value) (int, error) {
	order, err := e.g.Order()
	if err != nil {
		return 0, err
	}

	substitutions := 0
	for _, id := range order {
		if err := passBudget(ctx); err != nil {
			return substitutions, err
		}
		subs, err := e.evalNode(id, results, nil)
		if err != nil {
			return substitutions, err
		}
		substitutions += subs
	}
	return substitutions, nil
}

// runParallel evaluates layer by layer, fanning nodes of one layer out
// across Workers goroutines.
func (e *Evaluator) runParallel(ctx context.Context, results map[pkgid.ID]fn.Value) (int, error) {
	layers, err := e.g.Layers()
	if err != nil {
		return 0, err
	}

	var mu sync.Mutex
	substitutions := 0
	for _, layer := range layers {
		if err := e.evalLayer(ctx, layer, results, &mu, &substitutions); err != nil {
			return substitutions, err
		}
	}
	return substitutions, nil
}

// evalNode resolves inputs, dispatches the node's function, and stores the
// result. mu guards results when non-nil (parallel path). Returns the
// number of missing-input substitutions performed.
func (e *Evaluator) evalNode(id pkgid.ID, results map[pkgid.ID]fn.Value, mu *sync.Mutex) (int, error) {
	n, ok := e.g.Node(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s", graph.ErrNotFound, id)
	}

	// Raw data needs no computation.
	if n.Kind == graph.KindRawData {
		storeResult(results, mu, id, n.Value)
		return 0, nil
	}

	// A fresh cache entry short-circuits recomputation.
	if n.Evaluated {
		if v, ok := e.cache.Get(id); ok {
			storeResult(results, mu, id, v)
			return 0, nil
		}
	}

	inputs := make([]fn.Value, len(n.Inputs))
	substitutions := 0
	for i, in := range n.Inputs {
		v, ok := readResult(results, mu, in)
		if !ok || v == nil {
			// Expected transient state (e.g. warm-up before enough history
			// exists): substitute the function's documented default by
			// passing nil, and keep the occurrence observable.
			substitutions++
			e.logger.Warn("missing input substituted",
				slog.String("node", id.Format()),
				slog.String("input", in.Format()),
				slog.String("function", string(n.FuncType())),
			)
			observability.RecordMissingInput(string(n.FuncType()))
			inputs[i] = nil
			continue
		}
		inputs[i] = v
	}

	out, err := n.Func.Evaluate(inputs, n.Params)
	if err != nil {
		return substitutions, fmt.Errorf("evaluate %s: %w", id, err)
	}

	n.Value = out
	n.Evaluated = true
	observability.RecordNodeEvaluated()
	e.cache.Put(id, out)
	storeResult(results, mu, id, out)
	return substitutions, nil
}

// storeResult writes into the shared result map, locking when evaluating in
// parallel.
func storeResult(results map[pkgid.ID]fn.Value, mu *sync.Mutex, id pkgid.ID, v fn.Value) {
	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	results[id] = v
}

// readResult reads from the shared result map, locking when evaluating in
// parallel.
func readResult(results map[pkgid.ID]fn.Value, mu *sync.Mutex, id pkgid.ID) (fn.Value, bool) {
	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	v, ok := results[id]
	return v, ok
}

// passBudget converts a context deadline expiry into ErrTimeout.
func passBudget(ctx context.Context) error {
	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		}
		return ctx.Err()
	default:
		return nil
	}
}
