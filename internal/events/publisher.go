package events

import (
	"context"
	"sync"

	"aari-docs/internal/shared/telemetry"
)

// Publisher sends events to a queue backend.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(ctx context.Context, evt Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Emit publishes evt when p is set. Failures are logged, not returned, so a
// mutation never fails because the activity feed is down.
func Emit(ctx context.Context, p Publisher, evt Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, evt); err != nil {
		telemetry.Warn("events.publish_failed", map[string]any{
			"type":        evt.Type,
			"document_id": evt.DocumentID,
			"comment_id":  evt.CommentID,
			"error":       err,
		})
	}
}

var _ Publisher = (*Recorder)(nil)
