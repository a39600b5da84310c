package audit

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"bharatid/pkg/domain"
	"bharatid/pkg/requestcontext"
)

// Publisher captures structured audit events. Emit appends to the local store
// and, when a forwarding channel is attached, offers the event to it without
// blocking. Forwarding drops events when the channel is full.
type Publisher struct {
	store   Store
	forward chan<- Event
	logger  *slog.Logger
	dropped prometheus.Counter
	emitted *prometheus.CounterVec
}

type Option func(*Publisher)

// WithForwarding attaches the inbox of a Worker.
func WithForwarding(ch chan<- Event) Option {
	return func(p *Publisher) {
		p.forward = ch
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewPublisher(store Store, reg prometheus.Registerer, opts ...Option) *Publisher {
	factory := promauto.With(reg)
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		dropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "bharatid_audit_forward_dropped_total",
			Help: "Audit events not forwarded because the sink buffer was full",
		}),
		emitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bharatid_audit_events_total",
			Help: "Audit events emitted by action",
		}, []string{"action"}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit records event. Timestamp, request id and client ip are filled from ctx
// when unset. A store failure is returned; forwarding never fails the caller.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}

	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	p.emitted.WithLabelValues(string(event.Action)).Inc()

	if p.forward != nil {
		select {
		case p.forward <- event:
		default:
			p.dropped.Inc()
			p.logger.WarnContext(ctx, "audit forward buffer full, event dropped",
				"action", event.Action,
				"request_id", event.RequestID,
			)
		}
	}
	return nil
}

// Record emits and logs a failure instead of returning it. Handlers use it for
// events that must not change the response.
func (p *Publisher) Record(ctx context.Context, event Event) {
	if err := p.Emit(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "failed to record audit event",
			"action", event.Action,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

// Recent returns the newest events, limited to limit.
func (p *Publisher) Recent(ctx context.Context, limit int) ([]Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// ForUser returns every event recorded for userID.
func (p *Publisher) ForUser(ctx context.Context, userID domain.UserID) ([]Event, error) {
	return p.store.ListByUser(ctx, userID)
}
