package pubsub

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Listener feeds one broker subscription into a Bubble Tea program. The
// model calls Next once at Init and again after handling each event.
type Listener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// Listen subscribes to broker until ctx is cancelled.
func Listen[T any](ctx context.Context, broker *Broker[T]) *Listener[T] {
	return &Listener[T]{ctx: ctx, ch: broker.Subscribe(ctx)}
}

// Next returns a command that blocks for the next event. The command yields
// nil after cancellation or once the broker closes, so the loop stops.
func (l *Listener[T]) Next() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-l.ctx.Done():
			return nil
		case event, ok := <-l.ch:
			if !ok {
				return nil
			}
			return event
		}
	}
}
