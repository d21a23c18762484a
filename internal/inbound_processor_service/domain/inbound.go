package domain

// RawInboundMessage is one message of a webhook batch.
type RawInboundMessage struct {
	From     string
	FromName string // defaults to UnknownSenderName
	Body     string // may be empty
}

// OutcomeStatus is the business result of processing one inbound message.
type OutcomeStatus string

const (
	OutcomeAccepted            OutcomeStatus = "accepted"
	OutcomeNoOpenCalls         OutcomeStatus = "no_open_calls"
	OutcomeCompleted           OutcomeStatus = "completed"
	OutcomeNoActiveAssignments OutcomeStatus = "no_active_assignments"
	OutcomeOtherMessage        OutcomeStatus = "other_message"
	OutcomeUnknownProfessional OutcomeStatus = "unknown_professional"
	// OutcomeError marks a message whose processing failed on a store or lookup error.
	// Only that message is affected; the rest of the batch is still processed.
	OutcomeError OutcomeStatus = "error"
)

// Outcome is reported per input message, in input order.
type Outcome struct {
	From          string        `json:"from"`
	Name          string        `json:"name"`
	Message       string        `json:"message"`
	Intent        string        `json:"intent"`
	Status        OutcomeStatus `json:"status"`
	ServiceCallID *int64        `json:"service_call_id,omitempty"`
}
