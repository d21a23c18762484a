package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fieldops/dispatch_services/internal/inbound_processor_service/domain"
	"github.com/fieldops/dispatch_services/internal/platform/database"
)

type PgMessageRepository struct {
	db     database.DB
	logger *slog.Logger
}

// NewPgMessageRepository creates a new PostgreSQL implementation of MessageRepository.
func NewPgMessageRepository(db database.DB, logger *slog.Logger) *PgMessageRepository {
	return &PgMessageRepository{
		db:     db,
		logger: logger.With("component", "message_repository"),
	}
}

// Create appends one message to the inbound log.
func (r *PgMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, from_number, from_name, body, intent, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, msg.ID, msg.FromNumber, msg.FromName, msg.Body, msg.Intent, msg.ReceivedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error inserting inbound message", "error", err, "message_id", msg.ID)
		return fmt.Errorf("insert message: %w", err)
	}
	r.logger.DebugContext(ctx, "Inbound message stored", "message_id", msg.ID, "from", msg.FromNumber)
	return nil
}

// ListRecent returns up to limit messages, newest first.
func (r *PgMessageRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Message, error) {
	query := `
		SELECT id, from_number, from_name, body, intent, received_at
		FROM messages
		ORDER BY received_at DESC, id DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.FromNumber, &m.FromName, &m.Body, &m.Intent, &m.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}
