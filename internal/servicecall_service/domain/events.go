package domain

import "time"

// NATS subjects for service call lifecycle events.
const (
	SubjectServiceCallCreated   = "servicecall.created"
	SubjectServiceCallAssigned  = "servicecall.assigned"
	SubjectServiceCallCompleted = "servicecall.completed"
)

// LifecycleEvent is the payload published on the subjects above.
type LifecycleEvent struct {
	ServiceCallID  int64             `json:"service_call_id"`
	ProfessionalID int64             `json:"professional_id,omitempty"`
	AssignmentID   int64             `json:"assignment_id,omitempty"`
	Profession     string            `json:"profession"`
	Status         ServiceCallStatus `json:"status"`
	OccurredAt     time.Time         `json:"occurred_at"`
}
