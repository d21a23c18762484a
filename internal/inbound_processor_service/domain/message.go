package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// UnknownSenderName is stored when an inbound message carries no display name.
const UnknownSenderName = "Unknown"

// FallbackIntent is stored when the classifier fails. The intent column is therefore never null for
// processed messages.
const FallbackIntent = "An unexpected error occurred. Please try again later."

// ErrClassifierUnavailable is returned by classifiers that are not configured.
var ErrClassifierUnavailable = errors.New("intent classifier unavailable")

// Message is one entry of the append-only inbound log.
type Message struct {
	ID         uuid.UUID `json:"id"`
	FromNumber string    `json:"fromNumber"`
	FromName   string    `json:"fromName"`
	Body       string    `json:"body"`
	Intent     *string   `json:"intent"`
	ReceivedAt time.Time `json:"timestamp"`
}

// NewMessage creates a Message with a fresh id, received now.
func NewMessage(from, fromName, body string, intent *string) *Message {
	if fromName == "" {
		fromName = UnknownSenderName
	}
	return &Message{
		ID:         uuid.New(),
		FromNumber: from,
		FromName:   fromName,
		Body:       body,
		Intent:     intent,
		ReceivedAt: time.Now().UTC(),
	}
}

// MessageRepository persists the inbound log. It never updates or deletes.
type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error
	// ListRecent returns up to limit messages, newest first.
	ListRecent(ctx context.Context, limit int) ([]*Message, error)
}

// Classifier turns free text into a short, human-readable intent label. Advisory only.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}
