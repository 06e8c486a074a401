package audit

import (
	"context"
	"log/slog"

	"agrocert/pkg/platform/circuit"
)

// BreakerSink guards a remote sink with a circuit breaker. While the circuit
// is open events for that sink are dropped without a network call, so an
// unreachable broker does not add latency to every audited request.
type BreakerSink struct {
	sink    Sink
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewBreakerSink(sink Sink, breaker *circuit.Breaker, logger *slog.Logger) *BreakerSink {
	return &BreakerSink{sink: sink, breaker: breaker, logger: logger}
}

func (s *BreakerSink) Append(ctx context.Context, event Event) error {
	if !s.breaker.Allow() {
		return nil
	}
	if err := s.sink.Append(ctx, event); err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened && s.logger != nil {
			s.logger.WarnContext(ctx, "audit sink circuit opened", "sink", s.breaker.Name(), "error", err)
		}
		return err
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed && s.logger != nil {
		s.logger.InfoContext(ctx, "audit sink circuit closed", "sink", s.breaker.Name())
	}
	return nil
}
