package provider

import (
	"context"
	"log/slog"
	"sync"
)

// SentMessage is one message recorded by MockProvider.
type SentMessage struct {
	To   string
	Body string
}

// MockProvider records sends instead of delivering them. It backs local runs without a messaging API
// and the tests. FailFor makes sends to the listed recipients fail.
type MockProvider struct {
	logger  *slog.Logger
	mu      sync.Mutex
	sent    []SentMessage
	failFor map[string]bool
}

func NewMockProvider(logger *slog.Logger, failFor ...string) *MockProvider {
	fail := make(map[string]bool, len(failFor))
	for _, to := range failFor {
		fail[to] = true
	}
	return &MockProvider{logger: logger.With("provider", "mock"), failFor: fail}
}

func (p *MockProvider) Send(ctx context.Context, to, body string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failFor[to] {
		GatewayRequestsTotal.WithLabelValues(p.GetName(), "failed").Inc()
		p.logger.WarnContext(ctx, "Mock provider simulated send failure", "to", to)
		return false
	}
	p.sent = append(p.sent, SentMessage{To: to, Body: body})
	GatewayRequestsTotal.WithLabelValues(p.GetName(), "sent").Inc()
	p.logger.InfoContext(ctx, "Mock provider recorded message", "to", to, "body_length", len(body))
	return true
}

// Sent returns a copy of the recorded messages.
func (p *MockProvider) Sent() []SentMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SentMessage, len(p.sent))
	copy(out, p.sent)
	return out
}

// SentTo returns the bodies recorded for one recipient.
func (p *MockProvider) SentTo(to string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var bodies []string
	for _, m := range p.sent {
		if m.To == to {
			bodies = append(bodies, m.Body)
		}
	}
	return bodies
}

func (p *MockProvider) GetName() string {
	return "mock"
}
