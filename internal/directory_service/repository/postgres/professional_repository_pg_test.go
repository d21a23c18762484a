package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/dispatch_services/internal/directory_service/domain"
)

var professionalCols = []string{"id", "name", "phone", "profession_id", "profession", "available", "location", "created_at"}

func TestPgProfessionalRepository_FindByPhone(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Now().UTC()
	haifa := "Haifa"

	t.Run("LowestIDWins", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := NewPgProfessionalRepository(mockPool, logger)

		rows := mockPool.NewRows(professionalCols).
			AddRow(int64(3), "Dana", "+111", int64(1), "Plumber", true, &haifa, now)
		mockPool.ExpectQuery(`WHERE p.phone = \$1 ORDER BY p.id ASC LIMIT 1`).
			WithArgs("+111").
			WillReturnRows(rows)

		p, err := repo.FindByPhone(context.Background(), "+111")
		require.NoError(t, err)
		assert.Equal(t, int64(3), p.ID)
		assert.Equal(t, "Plumber", p.Profession)
		assert.Equal(t, "Haifa", p.LocationOrEmpty())
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := NewPgProfessionalRepository(mockPool, logger)

		mockPool.ExpectQuery(`WHERE p.phone = \$1`).
			WithArgs("+999").
			WillReturnError(pgx.ErrNoRows)

		p, err := repo.FindByPhone(context.Background(), "+999")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Nil(t, p)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPgProfessionalRepository_List(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Now().UTC()
	haifa := "Haifa"
	available := true

	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()
	repo := NewPgProfessionalRepository(mockPool, logger)

	rows := mockPool.NewRows(professionalCols).
		AddRow(int64(1), "Avi", "+972500000001", int64(2), "Electrician", true, &haifa, now).
		AddRow(int64(2), "Ben", "+972500000002", int64(2), "Electrician", true, &haifa, now)
	mockPool.ExpectQuery(`WHERE pr.name = \$1 AND p.available = \$2 AND p.location = ANY\(\$3\) ORDER BY p.id ASC`).
		WithArgs("Electrician", true, []string{"Haifa"}).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), domain.ProfessionalFilter{
		Profession: "Electrician",
		Available:  &available,
		Locations:  []string{"Haifa"},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Avi", got[0].Name)
	assert.Equal(t, "Ben", got[1].Name)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgProfessionalRepository_List_NoFilter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()
	repo := NewPgProfessionalRepository(mockPool, logger)

	mockPool.ExpectQuery(`JOIN professions pr ON pr.id = p.profession_id ORDER BY p.id ASC`).
		WillReturnRows(mockPool.NewRows(professionalCols))

	got, err := repo.List(context.Background(), domain.ProfessionalFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgProfessionalRepository_UpdateAndDelete(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("UpdateMissingRow", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := NewPgProfessionalRepository(mockPool, logger)

		p := &domain.Professional{ID: 42, Name: "Avi", Phone: "+1", ProfessionID: 1, Available: false}
		mockPool.ExpectExec(`UPDATE professionals`).
			WithArgs(p.Name, p.Phone, p.ProfessionID, p.Available, p.Location, p.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, repo.Update(context.Background(), p), domain.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Delete", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := NewPgProfessionalRepository(mockPool, logger)

		mockPool.ExpectExec(`DELETE FROM professionals WHERE id = \$1`).
			WithArgs(int64(5)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, repo.Delete(context.Background(), 5))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
