package audit

import (
	"context"
	"log/slog"
	"time"
)

// Sink receives forwarded events, e.g. a Kafka topic.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker consumes audit events from a channel and hands them to a sink. Sink
// failures are logged and the event is dropped; the worker keeps running.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// drainTimeout bounds the final flush after ctx is cancelled.
const drainTimeout = 5 * time.Second

// Run forwards until ctx is done, then drains what is already buffered.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case event := <-w.inbox:
			w.publish(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case event := <-w.inbox:
			w.publish(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) publish(ctx context.Context, event Event) {
	if err := w.sink.Publish(ctx, event); err != nil {
		w.logger.Error("failed to forward audit event",
			"action", event.Action,
			"error", err,
			"request_id", event.RequestID,
		)
	}
}
