package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	directory "github.com/fieldops/dispatch_services/internal/directory_service/domain"
	"github.com/fieldops/dispatch_services/internal/inbound_processor_service/domain"
)

const defaultLogLimit = 100

// LoggedMessage is a message log entry annotated with the registered professional, if any.
type LoggedMessage struct {
	ID           uuid.UUID `json:"id"`
	FromNumber   string    `json:"fromNumber"`
	FromName     string    `json:"fromName"`
	Body         string    `json:"body"`
	Timestamp    time.Time `json:"timestamp"`
	Intent       *string   `json:"intent"`
	Professional *string   `json:"professional"`
}

// MessageLog reads the inbound log for operators.
type MessageLog struct {
	messages      domain.MessageRepository
	professionals ProfessionalResolver
	limit         int
	logger        *slog.Logger
}

func NewMessageLog(messages domain.MessageRepository, professionals ProfessionalResolver, limit int, logger *slog.Logger) *MessageLog {
	if limit <= 0 {
		limit = defaultLogLimit
	}
	return &MessageLog{
		messages:      messages,
		professionals: professionals,
		limit:         limit,
		logger:        logger.With("component", "message_log"),
	}
}

// Recent returns the newest messages first. Sender lookups are cached per phone for the call.
func (l *MessageLog) Recent(ctx context.Context) ([]LoggedMessage, error) {
	msgs, err := l.messages.ListRecent(ctx, l.limit)
	if err != nil {
		return nil, err
	}

	names := make(map[string]*string)
	out := make([]LoggedMessage, 0, len(msgs))
	for _, m := range msgs {
		professional, seen := names[m.FromNumber]
		if !seen {
			professional = l.lookup(ctx, m.FromNumber)
			names[m.FromNumber] = professional
		}

		fromName := m.FromName
		if fromName == "" || fromName == domain.UnknownSenderName {
			fromName = domain.UnknownSenderName
			if professional != nil {
				fromName = *professional
			}
		}

		out = append(out, LoggedMessage{
			ID:           m.ID,
			FromNumber:   m.FromNumber,
			FromName:     fromName,
			Body:         m.Body,
			Timestamp:    m.ReceivedAt,
			Intent:       m.Intent,
			Professional: professional,
		})
	}
	return out, nil
}

func (l *MessageLog) lookup(ctx context.Context, phone string) *string {
	if l.professionals == nil {
		return nil
	}
	p, err := l.professionals.FindByPhone(ctx, phone)
	if err != nil {
		if !errors.Is(err, directory.ErrNotFound) {
			l.logger.WarnContext(ctx, "Sender lookup failed for message log", "error", err, "from", phone)
		}
		return nil
	}
	name := p.Name
	return &name
}
