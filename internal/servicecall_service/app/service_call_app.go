package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fieldops/dispatch_services/internal/platform/messagebroker"
	"github.com/fieldops/dispatch_services/internal/servicecall_service/domain"
)

// Application is the Service Call Store.
type Application struct {
	callRepo      domain.ServiceCallRepository
	lifecycleRepo domain.LifecycleRepository
	events        messagebroker.Publisher
	logger        *slog.Logger
}

// NewApplication creates a new Application instance. A nil publisher disables lifecycle events.
func NewApplication(
	callRepo domain.ServiceCallRepository,
	lifecycleRepo domain.LifecycleRepository,
	events messagebroker.Publisher,
	logger *slog.Logger,
) *Application {
	if events == nil {
		events = messagebroker.NoopPublisher{}
	}
	return &Application{
		callRepo:      callRepo,
		lifecycleRepo: lifecycleRepo,
		events:        events,
		logger:        logger.With("component", "service_call_app"),
	}
}

// Create validates and stores a new call. Urgency defaults to NORMAL and status to OPEN.
func (a *Application) Create(ctx context.Context, in domain.ServiceCallCreate) (*domain.ServiceCall, error) {
	urgency := domain.UrgencyNormal
	if in.Urgency != "" {
		u, err := domain.ParseUrgency(in.Urgency)
		if err != nil {
			return nil, err
		}
		urgency = u
	}
	status := domain.StatusOpen
	if in.Status != "" {
		s, err := domain.ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		status = s
	}

	locations := cleanLocations(in.Locations)
	if len(locations) == 0 {
		return nil, fmt.Errorf("%w: at least one location is required", domain.ErrInvalidInput)
	}
	profession := strings.TrimSpace(in.Profession)
	if profession == "" {
		return nil, fmt.Errorf("%w: profession is required", domain.ErrInvalidInput)
	}

	sc := &domain.ServiceCall{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		ScheduledAt: in.ScheduledAt.UTC(),
		Locations:   locations,
		Profession:  profession,
		Urgency:     urgency,
		Status:      status,
	}
	if err := a.callRepo.Create(ctx, sc); err != nil {
		return nil, err
	}
	a.publish(ctx, domain.SubjectServiceCallCreated, domain.LifecycleEvent{
		ServiceCallID: sc.ID, Profession: sc.Profession, Status: sc.Status,
	})
	return sc, nil
}

func (a *Application) Get(ctx context.Context, id int64) (*domain.ServiceCall, error) {
	return a.callRepo.GetByID(ctx, id)
}

func (a *Application) List(ctx context.Context, filter domain.ServiceCallFilter) ([]*domain.ServiceCall, error) {
	return a.callRepo.List(ctx, filter)
}

// CountByStatus reports how many calls are in each status; statuses without calls are absent.
func (a *Application) CountByStatus(ctx context.Context) (map[domain.ServiceCallStatus]int, error) {
	return a.callRepo.CountByStatus(ctx)
}

// Update applies the set fields of upd. Status must be a known value and may not move backwards.
func (a *Application) Update(ctx context.Context, id int64, upd domain.ServiceCallUpdate) (*domain.ServiceCall, error) {
	sc, err := a.callRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expected := sc.Status

	if upd.Title != nil {
		sc.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Description != nil {
		sc.Description = *upd.Description
	}
	if upd.ScheduledAt != nil {
		sc.ScheduledAt = upd.ScheduledAt.UTC()
	}
	if upd.Locations != nil {
		locations := cleanLocations(upd.Locations)
		if len(locations) == 0 {
			return nil, fmt.Errorf("%w: at least one location is required", domain.ErrInvalidInput)
		}
		sc.Locations = locations
	}
	if upd.Profession != nil {
		if p := strings.TrimSpace(*upd.Profession); p != "" {
			sc.Profession = p
		}
	}
	if upd.Urgency != nil {
		u, err := domain.ParseUrgency(*upd.Urgency)
		if err != nil {
			return nil, err
		}
		sc.Urgency = u
	}
	if upd.Status != nil {
		s, err := domain.ParseStatus(*upd.Status)
		if err != nil {
			return nil, err
		}
		if !expected.CanTransitionTo(s) {
			return nil, fmt.Errorf("%w: %s -> %s", domain.ErrStatusRegression, expected, s)
		}
		sc.Status = s
	}

	if err := a.callRepo.Update(ctx, sc, expected); err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "Service call updated", "service_call_id", id, "status", sc.Status)
	return sc, nil
}

func (a *Application) Delete(ctx context.Context, id int64) error {
	return a.callRepo.Delete(ctx, id)
}

// Accept binds the professional to the oldest OPEN call of their profession.
func (a *Application) Accept(ctx context.Context, profession string, professionalID int64) (*domain.Assignment, error) {
	assignment, err := a.lifecycleRepo.AcceptOldestOpen(ctx, profession, professionalID)
	if err != nil {
		return nil, err
	}
	a.publish(ctx, domain.SubjectServiceCallAssigned, domain.LifecycleEvent{
		ServiceCallID:  assignment.ServiceCallID,
		ProfessionalID: professionalID,
		AssignmentID:   assignment.ID,
		Profession:     profession,
		Status:         domain.StatusAssigned,
	})
	return assignment, nil
}

// Complete closes the professional's most recent ACCEPTED assignment and its call.
func (a *Application) Complete(ctx context.Context, professionalID int64) (*domain.Assignment, error) {
	assignment, err := a.lifecycleRepo.CompleteLatestAccepted(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	ev := domain.LifecycleEvent{
		ServiceCallID:  assignment.ServiceCallID,
		ProfessionalID: professionalID,
		AssignmentID:   assignment.ID,
		Status:         domain.StatusCompleted,
	}
	if assignment.ServiceCall != nil {
		ev.Profession = assignment.ServiceCall.Profession
	}
	a.publish(ctx, domain.SubjectServiceCallCompleted, ev)
	return assignment, nil
}

func (a *Application) ListAssignments(ctx context.Context, filter domain.AssignmentFilter) ([]*domain.Assignment, error) {
	return a.lifecycleRepo.ListAssignments(ctx, filter)
}

func (a *Application) publish(ctx context.Context, subject string, ev domain.LifecycleEvent) {
	ev.OccurredAt = time.Now().UTC()
	messagebroker.PublishJSON(ctx, a.events, a.logger, subject, ev)
}

func cleanLocations(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, l := range in {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
