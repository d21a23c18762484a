package provider

import "context"

// Sender is the Messaging Gateway boundary: one attempt, success or failure. It never retries.
type Sender interface {
	Send(ctx context.Context, to, body string) bool
	GetName() string
}
