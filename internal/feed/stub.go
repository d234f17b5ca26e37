package feed

import (
	"context"
	"time"

	"fx-signal-lab/internal/domain"
)

// StubSource replays a fixed sequence of updates. Used by tests and by the
// backtest runner, which feeds it historical bars.
type StubSource struct {
	updates []domain.RawUpdate

	// Interval optionally paces replay; zero replays as fast as the
	// consumer drains.
	Interval time.Duration
}

// NewStubSource creates a source replaying the given updates in order.
func NewStubSource(updates []domain.RawUpdate) *StubSource {
	return &StubSource{updates: updates}
}

// Subscribe returns a channel replaying the configured updates. The
// channel is closed after the last update or when the context is
// cancelled.
func (s *StubSource) Subscribe(ctx context.Context) (<-chan domain.RawUpdate, error) {
	out := make(chan domain.RawUpdate)
	go func() {
		defer close(out)
		for _, u := range s.updates {
			if s.Interval > 0 {
				select {
				case <-time.After(s.Interval):
				case <-ctx.Done():
					return
				}
			}
			select {
			case out <- u:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
