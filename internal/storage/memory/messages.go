package memory

import (
	"context"

	"github.com/fieldops/dispatch_services/internal/inbound_processor_service/domain"
)

type MessageRepository struct{ s *Store }

func (r *MessageRepository) Create(_ context.Context, msg *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *msg
	if msg.Intent != nil {
		intent := *msg.Intent
		c.Intent = &intent
	}
	r.s.messages = append(r.s.messages, &c)
	return nil
}

// ListRecent returns up to limit messages, newest first.
func (r *MessageRepository) ListRecent(_ context.Context, limit int) ([]*domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.Message{}
	for i := len(r.s.messages) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		c := *r.s.messages[i]
		out = append(out, &c)
	}
	return out, nil
}
