package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/dispatch_services/internal/inbound_processor_service/domain"
)

func TestPgMessageRepository_Create(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgMessageRepository(mockPool, slog.New(slog.NewTextHandler(io.Discard, nil)))
	intent := "accepting a job"
	msg := domain.NewMessage("+111", "", "ACCEPT", &intent)

	mockPool.ExpectExec(`INSERT INTO messages`).
		WithArgs(msg.ID, "+111", domain.UnknownSenderName, "ACCEPT", &intent, msg.ReceivedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), msg))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgMessageRepository_CreateError(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgMessageRepository(mockPool, slog.New(slog.NewTextHandler(io.Discard, nil)))
	msg := domain.NewMessage("+111", "Dana", "", nil)
	dbErr := errors.New("connection reset")

	mockPool.ExpectExec(`INSERT INTO messages`).WillReturnError(dbErr)

	err = repo.Create(context.Background(), msg)
	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgMessageRepository_ListRecent(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgMessageRepository(mockPool, slog.New(slog.NewTextHandler(io.Discard, nil)))
	now := time.Now().UTC()
	intent := "job completed"
	id1, id2 := uuid.New(), uuid.New()

	rows := pgxmock.NewRows([]string{"id", "from_number", "from_name", "body", "intent", "received_at"}).
		AddRow(id1, "+111", "Dana", "COMPLETE", &intent, now).
		AddRow(id2, "+222", "Unknown", "hi", (*string)(nil), now.Add(-time.Minute))
	mockPool.ExpectQuery(`SELECT id, from_number, from_name, body, intent, received_at\s+FROM messages`).
		WithArgs(50).
		WillReturnRows(rows)

	msgs, err := repo.ListRecent(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, id1, msgs[0].ID)
	require.NotNil(t, msgs[0].Intent)
	assert.Equal(t, "job completed", *msgs[0].Intent)
	assert.Nil(t, msgs[1].Intent)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
