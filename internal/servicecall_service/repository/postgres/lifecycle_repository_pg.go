package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/fieldops/dispatch_services/internal/platform/database"
	"github.com/fieldops/dispatch_services/internal/servicecall_service/domain"
)

// PgLifecycleRepository runs the accept/complete transitions as short transactions. Row locks plus
// status-guarded updates keep at most one ACCEPTED assignment per call under concurrent webhooks;
// the partial unique index on service_call_assignments backs this up.
type PgLifecycleRepository struct {
	db     database.DB
	logger *slog.Logger
}

func NewPgLifecycleRepository(db database.DB, logger *slog.Logger) *PgLifecycleRepository {
	return &PgLifecycleRepository{db: db, logger: logger.With("component", "lifecycle_repository")}
}

func (r *PgLifecycleRepository) AcceptOldestOpen(ctx context.Context, profession string, professionalID int64) (*domain.Assignment, error) {
	var assignment *domain.Assignment
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		// SKIP LOCKED lets a concurrent accepter move on to the next open call instead of queueing.
		selectQuery := `
			SELECT ` + serviceCallColumns + `
			FROM service_calls
			WHERE profession = $1 AND status = $2
			ORDER BY created_at ASC, id ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED`
		call, err := scanServiceCall(tx.QueryRow(ctx, selectQuery, profession, string(domain.StatusOpen)))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNoOpenCall
			}
			return fmt.Errorf("select open call: %w", err)
		}

		tag, err := tx.Exec(ctx,
			`UPDATE service_calls SET status = $1 WHERE id = $2 AND status = $3`,
			string(domain.StatusAssigned), call.ID, string(domain.StatusOpen))
		if err != nil {
			return fmt.Errorf("assign call: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNoOpenCall
		}
		call.Status = domain.StatusAssigned

		a := &domain.Assignment{
			ServiceCallID:  call.ID,
			ProfessionalID: professionalID,
			Status:         domain.AssignmentAccepted,
			ServiceCall:    call,
		}
		err = tx.QueryRow(ctx,
			`INSERT INTO service_call_assignments (service_call_id, professional_id, status) VALUES ($1, $2, $3) RETURNING id, created_at`,
			call.ID, professionalID, string(domain.AssignmentAccepted),
		).Scan(&a.ID, &a.CreatedAt)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return domain.ErrNoOpenCall
			}
			return fmt.Errorf("insert assignment: %w", err)
		}
		assignment = a
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNoOpenCall) {
			r.logger.ErrorContext(ctx, "Accept transition failed", "error", err, "professional_id", professionalID, "profession", profession)
		}
		return nil, err
	}
	r.logger.InfoContext(ctx, "Service call assigned", "service_call_id", assignment.ServiceCallID, "professional_id", professionalID, "assignment_id", assignment.ID)
	return assignment, nil
}

func (r *PgLifecycleRepository) CompleteLatestAccepted(ctx context.Context, professionalID int64) (*domain.Assignment, error) {
	var assignment *domain.Assignment
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		selectQuery := `
			SELECT id, service_call_id, professional_id, status, created_at
			FROM service_call_assignments
			WHERE professional_id = $1 AND status = $2
			ORDER BY created_at DESC, id DESC
			LIMIT 1
			FOR UPDATE`
		a, err := scanAssignment(tx.QueryRow(ctx, selectQuery, professionalID, string(domain.AssignmentAccepted)))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNoActiveAssignment
			}
			return fmt.Errorf("select active assignment: %w", err)
		}

		tag, err := tx.Exec(ctx,
			`UPDATE service_call_assignments SET status = $1 WHERE id = $2 AND status = $3`,
			string(domain.AssignmentCompleted), a.ID, string(domain.AssignmentAccepted))
		if err != nil {
			return fmt.Errorf("complete assignment: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNoActiveAssignment
		}
		a.Status = domain.AssignmentCompleted

		updateCall := `
			UPDATE service_calls SET status = $1
			WHERE id = $2 AND status = ANY($3)
			RETURNING ` + serviceCallColumns
		call, err := scanServiceCall(tx.QueryRow(ctx, updateCall,
			string(domain.StatusCompleted), a.ServiceCallID,
			[]string{string(domain.StatusAssigned), string(domain.StatusConfirmed)}))
		if errors.Is(err, pgx.ErrNoRows) {
			// Operator already closed the call; the assignment still completes.
			call, err = getServiceCall(ctx, tx, a.ServiceCallID)
		}
		if err != nil {
			return fmt.Errorf("complete service call: %w", err)
		}
		a.ServiceCall = call
		assignment = a
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNoActiveAssignment) {
			r.logger.ErrorContext(ctx, "Complete transition failed", "error", err, "professional_id", professionalID)
		}
		return nil, err
	}
	r.logger.InfoContext(ctx, "Service call completed", "service_call_id", assignment.ServiceCallID, "professional_id", professionalID, "assignment_id", assignment.ID)
	return assignment, nil
}

func (r *PgLifecycleRepository) ListAssignments(ctx context.Context, filter domain.AssignmentFilter) ([]*domain.Assignment, error) {
	var (
		conds []string
		args  []any
	)
	if filter.ProfessionalID != 0 {
		args = append(args, filter.ProfessionalID)
		conds = append(conds, fmt.Sprintf("a.professional_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("a.status = $%d", len(args)))
	}
	query := `
		SELECT a.id, a.service_call_id, a.professional_id, a.status, a.created_at,
			s.id, s.title, s.description, s.scheduled_at, s.locations, s.profession, s.urgency, s.status, s.created_at
		FROM service_call_assignments a
		JOIN service_calls s ON s.id = a.service_call_id`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY a.created_at DESC, a.id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing assignments", "error", err)
		return nil, err
	}
	defer rows.Close()

	assignments := []*domain.Assignment{}
	for rows.Next() {
		a := &domain.Assignment{ServiceCall: &domain.ServiceCall{}}
		sc := a.ServiceCall
		var aStatus, urgency, scStatus string
		if err := rows.Scan(
			&a.ID, &a.ServiceCallID, &a.ProfessionalID, &aStatus, &a.CreatedAt,
			&sc.ID, &sc.Title, &sc.Description, &sc.ScheduledAt, &sc.Locations, &sc.Profession, &urgency, &scStatus, &sc.CreatedAt,
		); err != nil {
			r.logger.ErrorContext(ctx, "Error scanning assignment row", "error", err)
			return nil, err
		}
		a.Status = domain.AssignmentStatus(aStatus)
		sc.Urgency = domain.Urgency(urgency)
		sc.Status = domain.ServiceCallStatus(scStatus)
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating assignment rows", "error", err)
		return nil, err
	}
	return assignments, nil
}

func scanAssignment(row pgx.Row) (*domain.Assignment, error) {
	a := &domain.Assignment{}
	var status string
	if err := row.Scan(&a.ID, &a.ServiceCallID, &a.ProfessionalID, &status, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Status = domain.AssignmentStatus(status)
	return a, nil
}
