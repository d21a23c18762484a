package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/fieldops/dispatch_services/internal/platform/database"
	"github.com/fieldops/dispatch_services/internal/servicecall_service/domain"
)

const serviceCallColumns = `id, title, description, scheduled_at, locations, profession, urgency, status, created_at`

type PgServiceCallRepository struct {
	db     database.DB
	logger *slog.Logger
}

func NewPgServiceCallRepository(db database.DB, logger *slog.Logger) *PgServiceCallRepository {
	return &PgServiceCallRepository{db: db, logger: logger.With("component", "service_call_repository")}
}

func (r *PgServiceCallRepository) Create(ctx context.Context, sc *domain.ServiceCall) error {
	query := `
		INSERT INTO service_calls (title, description, scheduled_at, locations, profession, urgency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		sc.Title, sc.Description, sc.ScheduledAt, sc.Locations, sc.Profession, string(sc.Urgency), string(sc.Status),
	).Scan(&sc.ID, &sc.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error creating service call", "error", err, "profession", sc.Profession)
		return err
	}
	r.logger.InfoContext(ctx, "Service call created", "service_call_id", sc.ID, "profession", sc.Profession)
	return nil
}

func (r *PgServiceCallRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceCall, error) {
	sc, err := getServiceCall(ctx, r.db, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.ErrorContext(ctx, "Error getting service call", "error", err, "service_call_id", id)
		}
		return nil, err
	}
	return sc, nil
}

func (r *PgServiceCallRepository) List(ctx context.Context, filter domain.ServiceCallFilter) ([]*domain.ServiceCall, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if filter.Status != "" {
		rows, err = r.db.Query(ctx, `SELECT `+serviceCallColumns+` FROM service_calls WHERE status = $1 ORDER BY created_at DESC, id DESC`, string(filter.Status))
	} else {
		rows, err = r.db.Query(ctx, `SELECT `+serviceCallColumns+` FROM service_calls ORDER BY created_at DESC, id DESC`)
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing service calls", "error", err, "status", filter.Status)
		return nil, err
	}
	defer rows.Close()

	calls := []*domain.ServiceCall{}
	for rows.Next() {
		sc, err := scanServiceCall(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Error scanning service call row", "error", err)
			return nil, err
		}
		calls = append(calls, sc)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating service call rows", "error", err)
		return nil, err
	}
	return calls, nil
}

func (r *PgServiceCallRepository) CountByStatus(ctx context.Context) (map[domain.ServiceCallStatus]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, count(*) FROM service_calls GROUP BY status`)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error counting service calls by status", "error", err)
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ServiceCallStatus]int)
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			r.logger.ErrorContext(ctx, "Error scanning status count row", "error", err)
			return nil, err
		}
		counts[domain.ServiceCallStatus(status)] = int(n)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating status count rows", "error", err)
		return nil, err
	}
	return counts, nil
}

func (r *PgServiceCallRepository) Update(ctx context.Context, sc *domain.ServiceCall, expected domain.ServiceCallStatus) error {
	query := `
		UPDATE service_calls
		SET title = $1, description = $2, scheduled_at = $3, locations = $4, profession = $5, urgency = $6, status = $7
		WHERE id = $8 AND status = $9`
	tag, err := r.db.Exec(ctx, query,
		sc.Title, sc.Description, sc.ScheduledAt, sc.Locations, sc.Profession, string(sc.Urgency), string(sc.Status),
		sc.ID, string(expected),
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating service call", "error", err, "service_call_id", sc.ID)
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := getServiceCall(ctx, r.db, sc.ID); err != nil {
			return err
		}
		r.logger.WarnContext(ctx, "Service call status changed concurrently", "service_call_id", sc.ID, "expected", expected)
		return domain.ErrConflict
	}
	return nil
}

func (r *PgServiceCallRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM service_calls WHERE id = $1`, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error deleting service call", "error", err, "service_call_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Service call deleted", "service_call_id", id)
	return nil
}

func getServiceCall(ctx context.Context, q database.Querier, id int64) (*domain.ServiceCall, error) {
	sc, err := scanServiceCall(q.QueryRow(ctx, `SELECT `+serviceCallColumns+` FROM service_calls WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return sc, nil
}

func scanServiceCall(row pgx.Row) (*domain.ServiceCall, error) {
	sc := &domain.ServiceCall{}
	var urgency, status string
	if err := row.Scan(&sc.ID, &sc.Title, &sc.Description, &sc.ScheduledAt, &sc.Locations, &sc.Profession, &urgency, &status, &sc.CreatedAt); err != nil {
		return nil, err
	}
	sc.Urgency = domain.Urgency(urgency)
	sc.Status = domain.ServiceCallStatus(status)
	if sc.Locations == nil {
		sc.Locations = []string{}
	}
	return sc, nil
}
