package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStreamSink appends events to a capped Redis stream for downstream consumers.
type RedisStreamSink struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

const defaultStreamMaxLen = 100_000

func NewRedisStreamSink(client redis.Cmdable, stream string) *RedisStreamSink {
	return &RedisStreamSink{client: client, stream: stream, maxLen: defaultStreamMaxLen}
}

func (s *RedisStreamSink) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]any{
			"action":  string(event.Action),
			"payload": payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd audit event: %w", err)
	}
	return nil
}
