package messagebroker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	subject string
	data    []byte
	err     error
}

func (r *recordingPublisher) Publish(_ context.Context, subject string, data []byte) error {
	r.subject = subject
	r.data = data
	return r.err
}

func TestPublishJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := &recordingPublisher{}

	PublishJSON(context.Background(), rec, logger, "servicecall.assigned", map[string]int64{"service_call_id": 7})

	assert.Equal(t, "servicecall.assigned", rec.subject)
	var got map[string]int64
	require.NoError(t, json.Unmarshal(rec.data, &got))
	assert.Equal(t, int64(7), got["service_call_id"])
}

func TestPublishJSON_ErrorsAreSwallowed(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := &recordingPublisher{err: errors.New("connection closed")}

	assert.NotPanics(t, func() {
		PublishJSON(context.Background(), rec, logger, "x", struct{}{})
		PublishJSON(context.Background(), nil, logger, "x", struct{}{})
		PublishJSON(context.Background(), rec, logger, "x", make(chan int))
	})
	assert.NoError(t, NoopPublisher{}.Publish(context.Background(), "x", nil))
}
