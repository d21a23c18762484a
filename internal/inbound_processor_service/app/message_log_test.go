package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/dispatch_services/internal/inbound_processor_service/adapters/classifier"
	"github.com/fieldops/dispatch_services/internal/inbound_processor_service/domain"
)

func TestMessageLog_Recent(t *testing.T) {
	env := setupProcessorTest(t, classifier.Static("greeting"))
	ctx := context.Background()
	env.professional(t, "Dana", "+111", "Plumber")

	env.processor.Process(ctx, []domain.RawInboundMessage{
		{From: "+111", Body: "hello"},
		{From: "+999", FromName: "Stranger", Body: "hi"},
	})

	log := NewMessageLog(env.store.Messages(), env.directory, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	entries, err := log.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "+999", entries[0].FromNumber)
	assert.Equal(t, "Stranger", entries[0].FromName)
	assert.Nil(t, entries[0].Professional)

	assert.Equal(t, "+111", entries[1].FromNumber)
	assert.Equal(t, "Dana", entries[1].FromName)
	require.NotNil(t, entries[1].Professional)
	assert.Equal(t, "Dana", *entries[1].Professional)
	require.NotNil(t, entries[1].Intent)
	assert.Equal(t, "greeting", *entries[1].Intent)
}
