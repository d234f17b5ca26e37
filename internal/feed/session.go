package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fx-signal-lab/internal/domain"
	"fx-signal-lab/internal/engine"
	"fx-signal-lab/internal/fn"
	"fx-signal-lab/internal/graph"
	"fx-signal-lab/internal/observability"
	"fx-signal-lab/internal/pkgid"
)

// DefaultWindowSize is the number of bars a session keeps per bar symbol.
const DefaultWindowSize = 24

// Session drives updates from a source through the evaluation cycle. All
// graph mutation and evaluation happens under the session mutex, so one
// pass always sees a frozen graph.
type Session struct {
	g       *graph.Graph
	eval    *engine.Evaluator
	logger  *slog.Logger
	signals []pkgid.ID

	// WindowSize bounds the rolling bar window per symbol. Zero means
	// DefaultWindowSize.
	WindowSize int

	// Sink receives signals read out of the watched nodes after each pass.
	// Nil publishes nothing.
	Sink SignalSink

	// Runs receives a per-pass summary. Nil records nothing.
	Runs RunSink

	mu      sync.Mutex
	windows map[pkgid.ID]domain.BarWindow
	latest  map[pkgid.ID]domain.Signal
}

// NewSession creates a session evaluating g. The watched identifiers are
// the nodes whose judgment values are published as signals after each
// pass; typically the top-layer judgment nodes.
func NewSession(g *graph.Graph, eval *engine.Evaluator, logger *slog.Logger, watched ...pkgid.ID) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		g:       g,
		eval:    eval,
		logger:  logger,
		signals: watched,
		windows: make(map[pkgid.ID]domain.BarWindow),
		latest:  make(map[pkgid.ID]domain.Signal),
	}
}

// Run consumes the source until its channel closes or the context is
// cancelled. Update-level failures are logged and skipped; only subscribe
// failures abort.
func (s *Session) Run(ctx context.Context, src Source) error {
	updates, err := src.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("feed subscribe: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if err := s.Handle(ctx, u); err != nil {
				s.logger.Error("feed: update failed", "symbol", u.Symbol, "error", err)
			}
		}
	}
}

// Handle applies one update and runs an evaluation pass: set the raw node,
// invalidate its cached dependents, evaluate, publish the watched nodes.
func (s *Session) Handle(ctx context.Context, u domain.RawUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.apply(u)
	if err != nil {
		return err
	}
	n := s.eval.Cache().Invalidate(s.g, id)
	observability.RecordInvalidations(n)

	before := s.eval.Cache().Stats()
	started := time.Now()
	results, err := s.eval.Evaluate(ctx)
	s.recordRun(ctx, started, before, err)
	if err != nil {
		return err
	}

	s.publish(ctx, results, u.Time)

	// Cache counters are cumulative; export only this pass's delta.
	stats := s.eval.Cache().Stats()
	observability.RecordCacheStats(stats.Hits-before.Hits, stats.Misses-before.Misses)
	observability.UpdateGraphSize(s.g.Len())
	return nil
}

// Latest returns the most recent signal published for a watched node.
func (s *Session) Latest(id pkgid.ID) (domain.Signal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sig, ok := s.latest[id]
	return sig, ok
}

// apply writes the update into its layer-0 node, creating the node on
// first sight. Bar updates fold into the rolling window; the node value is
// the whole window.
func (s *Session) apply(u domain.RawUpdate) (pkgid.ID, error) {
	if u.Bar != nil {
		observability.RecordBar()
		id, err := pkgid.Raw(u.Timeframe, u.Period, u.Currency, u.Symbol)
		if err != nil {
			return pkgid.ID{}, err
		}
		size := s.WindowSize
		if size <= 0 {
			size = DefaultWindowSize
		}
		w := append(s.windows[id], *u.Bar)
		if len(w) > size {
			w = w[len(w)-size:]
		}
		s.windows[id] = w
		return s.g.RegisterRawData(u.Symbol, u.Timeframe, u.Period, u.Currency, w)
	}

	observability.RecordTick()
	if u.Value == nil {
		return pkgid.ID{}, fmt.Errorf("update for %s carries neither value nor bar", u.Symbol)
	}
	return s.g.RegisterRawData(u.Symbol, u.Timeframe, u.Period, u.Currency, *u.Value)
}

// publish reads the watched nodes out of the pass results and forwards
// judgment values as signals.
func (s *Session) publish(ctx context.Context, results map[pkgid.ID]fn.Value, at time.Time) {
	for _, id := range s.signals {
		j, ok := results[id].(domain.Judgment)
		if !ok {
			continue
		}
		sig := domain.Signal{
			NodeID:      id.String(),
			Currency:    id.Currency.Pair(),
			Direction:   j.Direction,
			Confidence:  j.Confidence,
			EvaluatedAt: at,
		}
		s.latest[id] = sig
		observability.RecordSignal(string(j.Direction))

		if s.Sink == nil {
			continue
		}
		if err := s.Sink.PublishSignal(ctx, sig); err != nil {
			s.logger.Error("feed: signal publish failed", "node", sig.NodeID, "error", err)
		}
	}
}

// recordRun forwards a per-pass summary; cache counters are cumulative, so
// the pre-pass snapshot turns them into per-pass deltas.
func (s *Session) recordRun(ctx context.Context, started time.Time, before engine.CacheStats, passErr error) {
	if s.Runs == nil {
		return
	}
	stats := s.eval.Cache().Stats()
	run := domain.EvaluationRun{
		StartedMs:     started.UnixMilli(),
		DurationUs:    time.Since(started).Microseconds(),
		NodeCount:     s.g.Len(),
		CacheHits:     int(stats.Hits - before.Hits),
		CacheMisses:   int(stats.Misses - before.Misses),
		Substitutions: s.eval.LastSubstitutions(),
		TimedOut:      errors.Is(passErr, engine.ErrTimeout),
	}
	if err := s.Runs.RecordRun(ctx, run); err != nil {
		s.logger.Error("feed: run record failed", "error", err)
	}
}
