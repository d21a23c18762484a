package domain

import (
	"fmt"
	"time"
)

// Urgency of a service call.
type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyNormal Urgency = "NORMAL"
	UrgencyHigh   Urgency = "HIGH"
	UrgencyUrgent Urgency = "URGENT"
)

// ParseUrgency accepts only the exact upper-case values of the fixed set.
func ParseUrgency(s string) (Urgency, error) {
	switch u := Urgency(s); u {
	case UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyUrgent:
		return u, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidUrgency, s)
}

// ServiceCallStatus is the lifecycle state of a call. It only moves forward:
// OPEN -> ASSIGNED -> CONFIRMED -> COMPLETED. CONFIRMED is operator-set and may be skipped.
type ServiceCallStatus string

const (
	StatusOpen      ServiceCallStatus = "OPEN"
	StatusAssigned  ServiceCallStatus = "ASSIGNED"
	StatusConfirmed ServiceCallStatus = "CONFIRMED"
	StatusCompleted ServiceCallStatus = "COMPLETED"
)

var statusRank = map[ServiceCallStatus]int{
	StatusOpen:      0,
	StatusAssigned:  1,
	StatusConfirmed: 2,
	StatusCompleted: 3,
}

// ParseStatus accepts only the exact upper-case values of the fixed set.
func ParseStatus(s string) (ServiceCallStatus, error) {
	st := ServiceCallStatus(s)
	if _, ok := statusRank[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// CanTransitionTo reports whether moving from s to next keeps the lifecycle monotonic.
// Staying in the same state is allowed.
func (s ServiceCallStatus) CanTransitionTo(next ServiceCallStatus) bool {
	from, ok1 := statusRank[s]
	to, ok2 := statusRank[next]
	return ok1 && ok2 && to >= from
}

// AssignmentStatus of a professional's binding to a call.
type AssignmentStatus string

const (
	AssignmentAccepted  AssignmentStatus = "ACCEPTED"
	AssignmentCompleted AssignmentStatus = "COMPLETED"
)

// ParseAssignmentStatus accepts only the exact upper-case values of the fixed set.
func ParseAssignmentStatus(s string) (AssignmentStatus, error) {
	switch st := AssignmentStatus(s); st {
	case AssignmentAccepted, AssignmentCompleted:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// ServiceCall is a unit of requested work. Title is internal; Description is what professionals receive.
type ServiceCall struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	ScheduledAt time.Time         `json:"date"`
	Locations   []string          `json:"locations"`
	Profession  string            `json:"profession"`
	Urgency     Urgency           `json:"urgency"`
	Status      ServiceCallStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Assignment binds one professional to one service call.
type Assignment struct {
	ID             int64            `json:"id"`
	ServiceCallID  int64            `json:"service_call_id"`
	ProfessionalID int64            `json:"professional_id"`
	Status         AssignmentStatus `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	ServiceCall    *ServiceCall     `json:"service_call,omitempty"`
}

// ServiceCallCreate carries a new call. Empty Urgency/Status default to NORMAL/OPEN.
type ServiceCallCreate struct {
	Title       string
	Description string
	ScheduledAt time.Time
	Locations   []string
	Profession  string
	Urgency     string
	Status      string
}

// ServiceCallUpdate holds optional fields; nil means unchanged.
type ServiceCallUpdate struct {
	Title       *string
	Description *string
	ScheduledAt *time.Time
	Locations   []string // nil means unchanged
	Profession  *string
	Urgency     *string
	Status      *string
}

// ServiceCallFilter narrows a listing. Empty Status means all.
type ServiceCallFilter struct {
	Status ServiceCallStatus
}

// AssignmentFilter narrows an assignment listing. Zero values mean "no constraint".
type AssignmentFilter struct {
	ProfessionalID int64
	Status         AssignmentStatus
}
