package llm

import (
	"context"
	"io"
	"time"
)

// eventStream adapts a producer function into the Stream interface by running
// it on a goroutine and relaying events over a channel.
type eventStream struct {
	events chan Event
	done   chan struct{}
	cancel context.CancelFunc
	err    error
	errCh  chan error
}

// newEventStream starts produce on a goroutine and returns a Stream that
// yields whatever events it sends on the channel argument, in order.
func newEventStream(ctx context.Context, produce func(ctx context.Context, events chan<- Event) error) Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &eventStream{
		events: make(chan Event, 16),
		done:   make(chan struct{}),
		cancel: cancel,
		errCh:  make(chan error, 1),
	}
	go func() {
		defer close(s.events)
		defer close(s.done)
		s.errCh <- produce(ctx, s.events)
	}()
	return s
}

func (s *eventStream) Recv() (Event, error) {
	event, ok := <-s.events
	if !ok {
		select {
		case err := <-s.errCh:
			if err != nil {
				return Event{}, err
			}
		default:
		}
		return Event{}, io.EOF
	}
	return event, nil
}

func (s *eventStream) Close() error {
	s.cancel()
	return nil
}

// chooseModel prefers an explicit per-request override over the provider default.
func chooseModel(requested, fallback string) string {
	if requested != "" {
		return requested
	}
	return fallback
}

// schemaRequired extracts the "required" string array from a JSON schema map.
func schemaRequired(schema map[string]interface{}) []string {
	raw, ok := schema["required"]
	if !ok {
		return nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	required := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			required = append(required, s)
		}
	}
	return required
}

// toolResultTextContent returns the textual content of a tool result.
func toolResultTextContent(result *ToolResult) string {
	if result == nil {
		return ""
	}
	return result.Content
}

// RateLimitError signals a provider-reported rate limit with an optional
// server-provided wait duration.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string { return e.Message }

// IsLongWait reports whether the server asked for a wait long enough that
// retrying is not worth it within a single turn.
func (e *RateLimitError) IsLongWait() bool {
	return e.RetryAfter > 60*time.Second
}
