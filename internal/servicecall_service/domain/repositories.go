package domain

import "context"

// ServiceCallRepository manages ServiceCall data and its lifecycle transitions.
type ServiceCallRepository interface {
	Create(ctx context.Context, sc *ServiceCall) error
	GetByID(ctx context.Context, id int64) (*ServiceCall, error)
	List(ctx context.Context, filter ServiceCallFilter) ([]*ServiceCall, error)
	// CountByStatus returns the number of calls per status. Statuses without calls are absent.
	CountByStatus(ctx context.Context) (map[ServiceCallStatus]int, error)
	// Update writes every mutable field. expected guards the status column: the row is only
	// updated while its status still equals expected, otherwise ErrConflict is returned.
	Update(ctx context.Context, sc *ServiceCall, expected ServiceCallStatus) error
	Delete(ctx context.Context, id int64) error
}

// LifecycleRepository performs the transitions driven by professionals' replies.
// Each call is atomic: either every row it touches changes or none does.
type LifecycleRepository interface {
	// AcceptOldestOpen binds professionalID to the oldest OPEN call of profession and moves it to ASSIGNED.
	// Returns ErrNoOpenCall when nothing is open.
	AcceptOldestOpen(ctx context.Context, profession string, professionalID int64) (*Assignment, error)
	// CompleteLatestAccepted completes the professional's most recent ACCEPTED assignment and its call.
	// Returns ErrNoActiveAssignment when the professional holds none.
	CompleteLatestAccepted(ctx context.Context, professionalID int64) (*Assignment, error)
	// ListAssignments returns assignments newest first, each with its service call.
	ListAssignments(ctx context.Context, filter AssignmentFilter) ([]*Assignment, error)
}
