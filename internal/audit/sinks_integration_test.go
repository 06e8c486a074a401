//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"agrocert/internal/audit"
	"agrocert/pkg/testutil/containers"
)

func testEvent() audit.Event {
	return audit.Event{
		Timestamp: time.Now().UTC(),
		Action:    audit.ActionFichaSubmitted,
		Subject:   uuid.NewString(),
		ActorID:   uuid.NewString(),
		Details:   map[string]string{"from": "borrador", "to": "revision"},
	}
}

func TestRedisStreamSink(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	rc := containers.GetManager().GetRedis(t)
	require.NoError(t, rc.FlushAll(ctx))

	sink := audit.NewRedisStreamSink(rc.Client, "audit:test")
	event := testEvent()
	require.NoError(t, sink.Append(ctx, event))

	entries, err := rc.Client.XRange(ctx, "audit:test", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, string(audit.ActionFichaSubmitted), entries[0].Values["action"])

	payloads, err := rc.StreamPayloads(ctx, "audit:test")
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	var got audit.Event
	require.NoError(t, json.Unmarshal([]byte(payloads[0]), &got))
	assert.Equal(t, event.Subject, got.Subject)
	assert.Equal(t, "revision", got.Details["to"])
}

func TestKafkaSink(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	broker := containers.GetManager().GetRedpanda(t)
	topic := "audit-" + uuid.NewString()[:8]

	sink, err := audit.NewKafkaSink(broker.Brokers, topic)
	require.NoError(t, err)
	defer sink.Close()
	require.NoError(t, sink.EnsureTopic(ctx, 1, 1))
	require.NoError(t, sink.EnsureTopic(ctx, 1, 1), "existing topic is not an error")

	event := testEvent()
	require.NoError(t, sink.Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, event.Subject, string(records[0].Key))
	require.Len(t, records[0].Headers, 1)
	assert.Equal(t, string(audit.ActionFichaSubmitted), string(records[0].Headers[0].Value))
}

func TestPostgresSink(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	pg := containers.GetManager().GetPostgres(t)
	require.NoError(t, pg.TruncateTables(ctx, "audit_events"))

	event := testEvent()
	require.NoError(t, audit.NewPostgresSink(pg.DB).Append(ctx, event))

	var (
		action  string
		details []byte
	)
	err := pg.DB.QueryRowContext(ctx, `SELECT action, details FROM audit_events WHERE subject = $1`, event.Subject).Scan(&action, &details)
	require.NoError(t, err)
	assert.Equal(t, string(audit.ActionFichaSubmitted), action)

	var got map[string]string
	require.NoError(t, json.Unmarshal(details, &got))
	assert.Equal(t, "borrador", got["from"])
}
