package audit

import (
	"context"
	"errors"
	"log/slog"

	"agrocert/pkg/requestcontext"
)

// Sink persists or forwards audit events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher fans events out to every configured sink. Delivery is best
// effort: a failing sink is logged and does not stop the others.
type Publisher struct {
	sinks  []Sink
	logger *slog.Logger
}

func NewPublisher(logger *slog.Logger, sinks ...Sink) *Publisher {
	return &Publisher{sinks: sinks, logger: logger}
}

// Emit stamps the event with the request time and id and forwards it.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	var errs []error
	for _, sink := range p.sinks {
		if err := sink.Append(ctx, event); err != nil {
			errs = append(errs, err)
			if p.logger != nil {
				p.logger.WarnContext(ctx, "audit sink failed",
					"action", string(event.Action),
					"error", err,
				)
			}
		}
	}
	return errors.Join(errs...)
}

// LogSink writes events to the structured log with log_type=audit.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Append(ctx context.Context, event Event) error {
	args := []any{
		"log_type", "audit",
		"subject", event.Subject,
		"actor_id", event.ActorID,
		"request_id", event.RequestID,
	}
	for k, v := range event.Details {
		args = append(args, k, v)
	}
	s.logger.InfoContext(ctx, string(event.Action), args...)
	return nil
}
