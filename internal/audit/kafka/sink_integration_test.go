//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/twmb/franz-go/pkg/kgo"

	"bharatid/internal/audit"
	"bharatid/pkg/domain"
)

func TestSinkAgainstRedpanda(t *testing.T) {
	ctx := context.Background()
	container, err := redpanda.Run(ctx, "docker.redpanda.com/redpandadata/redpanda:v24.2.4",
		redpanda.WithAutoCreateTopics())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	broker, err := container.KafkaSeedBroker(ctx)
	require.NoError(t, err)

	sink, err := NewSink([]string{broker}, "bharatid.audit.test")
	require.NoError(t, err)
	defer sink.Close()

	userID := domain.NewUserID()
	require.NoError(t, sink.Publish(ctx, audit.Event{Action: audit.ActionUserEnrolled, UserID: userID}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics("bharatid.audit.test"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	pollCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(pollCtx)
	require.Empty(t, fetches.Errors())

	var got audit.Event
	fetches.EachRecord(func(r *kgo.Record) {
		require.NoError(t, json.Unmarshal(r.Value, &got))
	})
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, audit.ActionUserEnrolled, got.Action)
}
