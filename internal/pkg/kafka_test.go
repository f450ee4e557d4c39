package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEventMessageShape(t *testing.T) {
	at := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	msg := eventMessage(EventMessage{
		AggregateID: 42,
		OutboxID:    7,
		Type:        "submission.approved",
		Payload:     []byte(`{"submission_id":42}`),
		OccurredAt:  at,
	})

	require.Equal(t, "42", string(msg.Key))
	require.JSONEq(t, `{"submission_id":42}`, string(msg.Value))
	require.Equal(t, at, msg.Time)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	require.Equal(t, map[string]string{
		"event_type":   "submission.approved",
		"outbox_id":    "7",
		"content_type": "application/json",
	}, headers)
}
