package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	directory "github.com/fieldops/dispatch_services/internal/directory_service/domain"
	servicecall "github.com/fieldops/dispatch_services/internal/servicecall_service/domain"
)

func seedProfessional(t *testing.T, s *Store, name, phone, profession string) *directory.Professional {
	t.Helper()
	ctx := context.Background()
	prof, err := s.Professions().Upsert(ctx, profession)
	require.NoError(t, err)
	p := &directory.Professional{Name: name, Phone: phone, ProfessionID: prof.ID, Available: true}
	require.NoError(t, s.Professionals().Create(ctx, p))
	return p
}

func seedCall(t *testing.T, s *Store, title, profession string, status servicecall.ServiceCallStatus) *servicecall.ServiceCall {
	t.Helper()
	sc := &servicecall.ServiceCall{
		Title:       title,
		Description: title,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Locations:   []string{"Tel Aviv"},
		Profession:  profession,
		Urgency:     servicecall.UrgencyNormal,
		Status:      status,
	}
	require.NoError(t, s.ServiceCalls().Create(context.Background(), sc))
	return sc
}

func TestProfessionRepository_CreateAndUpsert(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	created, err := s.Professions().Create(ctx, "Plumber")
	require.NoError(t, err)

	_, err = s.Professions().Create(ctx, "Plumber")
	assert.ErrorIs(t, err, directory.ErrDuplicateEntry)

	upserted, err := s.Professions().Upsert(ctx, "Plumber")
	require.NoError(t, err)
	assert.Equal(t, created.ID, upserted.ID)

	list, err := s.Professions().List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestProfessionalRepository_FindByPhoneLowestID(t *testing.T) {
	s := NewStore()
	first := seedProfessional(t, s, "Dana", "+111", "Plumber")
	seedProfessional(t, s, "Avi", "+111", "Electrician")

	got, err := s.Professionals().FindByPhone(context.Background(), "+111")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "Plumber", got.Profession)

	_, err = s.Professionals().FindByPhone(context.Background(), "+999")
	assert.ErrorIs(t, err, directory.ErrNotFound)
}

func TestProfessionalRepository_ListFilters(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	haifa, telAviv := "Haifa", "Tel Aviv"

	a := seedProfessional(t, s, "A", "+1", "Electrician")
	a.Location = &haifa
	require.NoError(t, s.Professionals().Update(ctx, a))
	b := seedProfessional(t, s, "B", "+2", "Electrician")
	b.Location = &telAviv
	require.NoError(t, s.Professionals().Update(ctx, b))
	c := seedProfessional(t, s, "C", "+3", "Electrician")
	c.Available = false
	c.Location = &haifa
	require.NoError(t, s.Professionals().Update(ctx, c))

	available := true
	got, err := s.Professionals().List(ctx, directory.ProfessionalFilter{
		Profession: "Electrician",
		Available:  &available,
		Locations:  []string{"Haifa"},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	all, err := s.Professionals().List(ctx, directory.ProfessionalFilter{Profession: "Electrician"})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLifecycleRepository_AcceptPicksOldestOpen(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p := seedProfessional(t, s, "Dana", "+111", "Plumber")
	older := seedCall(t, s, "older", "Plumber", servicecall.StatusOpen)
	seedCall(t, s, "newer", "Plumber", servicecall.StatusOpen)
	seedCall(t, s, "other trade", "Electrician", servicecall.StatusOpen)

	a, err := s.Lifecycle().AcceptOldestOpen(ctx, "Plumber", p.ID)
	require.NoError(t, err)
	assert.Equal(t, older.ID, a.ServiceCallID)
	assert.Equal(t, servicecall.AssignmentAccepted, a.Status)
	require.NotNil(t, a.ServiceCall)
	assert.Equal(t, servicecall.StatusAssigned, a.ServiceCall.Status)

	stored, err := s.ServiceCalls().GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, servicecall.StatusAssigned, stored.Status)
}

func TestLifecycleRepository_AcceptNoOpen(t *testing.T) {
	s := NewStore()
	p := seedProfessional(t, s, "Dana", "+111", "Plumber")
	seedCall(t, s, "assigned", "Plumber", servicecall.StatusAssigned)

	_, err := s.Lifecycle().AcceptOldestOpen(context.Background(), "Plumber", p.ID)
	assert.ErrorIs(t, err, servicecall.ErrNoOpenCall)
}

func TestLifecycleRepository_ConcurrentAcceptsAssignOnce(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	call := seedCall(t, s, "single", "Plumber", servicecall.StatusOpen)

	const workers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < workers; i++ {
		p := seedProfessional(t, s, "P", "+1", "Plumber")
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := s.Lifecycle().AcceptOldestOpen(ctx, "Plumber", id)
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, servicecall.ErrNoOpenCall))
		}(p.ID)
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	list, err := s.Lifecycle().ListAssignments(ctx, servicecall.AssignmentFilter{Status: servicecall.AssignmentAccepted})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, call.ID, list[0].ServiceCallID)
}

func TestLifecycleRepository_CompleteLatestAccepted(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p := seedProfessional(t, s, "Dana", "+111", "Plumber")
	first := seedCall(t, s, "first", "Plumber", servicecall.StatusOpen)
	second := seedCall(t, s, "second", "Plumber", servicecall.StatusOpen)

	_, err := s.Lifecycle().AcceptOldestOpen(ctx, "Plumber", p.ID)
	require.NoError(t, err)
	_, err = s.Lifecycle().AcceptOldestOpen(ctx, "Plumber", p.ID)
	require.NoError(t, err)

	done, err := s.Lifecycle().CompleteLatestAccepted(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, done.ServiceCallID)
	assert.Equal(t, servicecall.AssignmentCompleted, done.Status)
	assert.Equal(t, servicecall.StatusCompleted, done.ServiceCall.Status)

	stillAssigned, err := s.ServiceCalls().GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, servicecall.StatusAssigned, stillAssigned.Status)
}

func TestLifecycleRepository_CompleteWithoutAssignment(t *testing.T) {
	s := NewStore()
	p := seedProfessional(t, s, "Dana", "+111", "Plumber")
	open := seedCall(t, s, "open", "Plumber", servicecall.StatusOpen)

	_, err := s.Lifecycle().CompleteLatestAccepted(context.Background(), p.ID)
	assert.ErrorIs(t, err, servicecall.ErrNoActiveAssignment)

	unchanged, err := s.ServiceCalls().GetByID(context.Background(), open.ID)
	require.NoError(t, err)
	assert.Equal(t, servicecall.StatusOpen, unchanged.Status)
}

func TestServiceCallRepository_UpdateGuardsStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	sc := seedCall(t, s, "call", "Plumber", servicecall.StatusOpen)

	sc.Status = servicecall.StatusConfirmed
	assert.ErrorIs(t, s.ServiceCalls().Update(ctx, sc, servicecall.StatusAssigned), servicecall.ErrConflict)
	assert.NoError(t, s.ServiceCalls().Update(ctx, sc, servicecall.StatusOpen))

	missing := &servicecall.ServiceCall{ID: 404}
	assert.ErrorIs(t, s.ServiceCalls().Update(ctx, missing, servicecall.StatusOpen), servicecall.ErrNotFound)
}

func TestServiceCallRepository_DeleteCascadesAssignments(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p := seedProfessional(t, s, "Dana", "+111", "Plumber")
	sc := seedCall(t, s, "call", "Plumber", servicecall.StatusOpen)
	_, err := s.Lifecycle().AcceptOldestOpen(ctx, "Plumber", p.ID)
	require.NoError(t, err)

	require.NoError(t, s.ServiceCalls().Delete(ctx, sc.ID))
	list, err := s.Lifecycle().ListAssignments(ctx, servicecall.AssignmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.ErrorIs(t, s.ServiceCalls().Delete(ctx, sc.ID), servicecall.ErrNotFound)
}

func TestServiceCallRepository_CountByStatus(t *testing.T) {
	s := NewStore()
	seedCall(t, s, "a", "Plumber", servicecall.StatusOpen)
	seedCall(t, s, "b", "Plumber", servicecall.StatusOpen)
	seedCall(t, s, "c", "Electrician", servicecall.StatusCompleted)

	counts, err := s.ServiceCalls().CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[servicecall.ServiceCallStatus]int{
		servicecall.StatusOpen:      2,
		servicecall.StatusCompleted: 1,
	}, counts)
}
