package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/dispatch_services/internal/directory_service/domain"
)

// --- Mocks ---

type MockProfessionRepository struct {
	mock.Mock
}

func (m *MockProfessionRepository) Create(ctx context.Context, name string) (*domain.Profession, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profession), args.Error(1)
}

func (m *MockProfessionRepository) Upsert(ctx context.Context, name string) (*domain.Profession, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profession), args.Error(1)
}

func (m *MockProfessionRepository) GetByID(ctx context.Context, id int64) (*domain.Profession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profession), args.Error(1)
}

func (m *MockProfessionRepository) GetByName(ctx context.Context, name string) (*domain.Profession, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profession), args.Error(1)
}

func (m *MockProfessionRepository) List(ctx context.Context) ([]*domain.Profession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Profession), args.Error(1)
}

type MockProfessionalRepository struct {
	mock.Mock
}

func (m *MockProfessionalRepository) Create(ctx context.Context, p *domain.Professional) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProfessionalRepository) GetByID(ctx context.Context, id int64) (*domain.Professional, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Professional), args.Error(1)
}

func (m *MockProfessionalRepository) FindByPhone(ctx context.Context, phone string) (*domain.Professional, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Professional), args.Error(1)
}

func (m *MockProfessionalRepository) List(ctx context.Context, filter domain.ProfessionalFilter) ([]*domain.Professional, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Professional), args.Error(1)
}

func (m *MockProfessionalRepository) Update(ctx context.Context, p *domain.Professional) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProfessionalRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type testComponents struct {
	professionRepo   *MockProfessionRepository
	professionalRepo *MockProfessionalRepository
	app              *Application
}

func setupTest() testComponents {
	professionRepo := new(MockProfessionRepository)
	professionalRepo := new(MockProfessionalRepository)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return testComponents{
		professionRepo:   professionRepo,
		professionalRepo: professionalRepo,
		app:              NewApplication(professionRepo, professionalRepo, nil, logger),
	}
}

func TestApplication_CreateProfessional(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		c := setupTest()
		plumber := &domain.Profession{ID: 1, Name: "Plumber"}
		c.professionRepo.On("GetByName", ctx, "Plumber").Return(plumber, nil).Once()
		c.professionalRepo.On("Create", ctx, mock.MatchedBy(func(p *domain.Professional) bool {
			return p.Phone == "+111" && p.ProfessionID == 1 && p.Location == nil
		})).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Professional).ID = 10
		}).Once()

		blank := "  "
		p, err := c.app.CreateProfessional(ctx, domain.ProfessionalCreate{
			Name: "Dana", Phone: " +111 ", Profession: "Plumber", Available: true, Location: &blank,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(10), p.ID)
		assert.Equal(t, "Plumber", p.Profession)
		c.professionRepo.AssertExpectations(t)
		c.professionalRepo.AssertExpectations(t)
	})

	t.Run("UnknownProfession", func(t *testing.T) {
		c := setupTest()
		c.professionRepo.On("GetByName", ctx, "Welder").Return(nil, domain.ErrNotFound).Once()

		_, err := c.app.CreateProfessional(ctx, domain.ProfessionalCreate{Name: "X", Phone: "1", Profession: "Welder"})
		assert.ErrorIs(t, err, domain.ErrProfessionNotFound)
		c.professionalRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestApplication_UpdateProfessional(t *testing.T) {
	ctx := context.Background()
	c := setupTest()

	existing := &domain.Professional{ID: 4, Name: "Avi", Phone: "+1", ProfessionID: 1, Profession: "Plumber", Available: true}
	c.professionalRepo.On("GetByID", ctx, int64(4)).Return(existing, nil).Once()
	c.professionRepo.On("GetByName", ctx, "Electrician").Return(&domain.Profession{ID: 2, Name: "Electrician"}, nil).Once()
	c.professionalRepo.On("Update", ctx, mock.AnythingOfType("*domain.Professional")).Return(nil).Once()

	unavailable := false
	electrician := "Electrician"
	p, err := c.app.UpdateProfessional(ctx, 4, domain.ProfessionalUpdate{Available: &unavailable, Profession: &electrician})
	require.NoError(t, err)
	assert.False(t, p.Available)
	assert.Equal(t, int64(2), p.ProfessionID)
	assert.Equal(t, "Avi", p.Name)
	c.professionalRepo.AssertExpectations(t)
}

func TestApplication_FindAvailable(t *testing.T) {
	ctx := context.Background()
	c := setupTest()

	available := true
	c.professionalRepo.On("List", ctx, domain.ProfessionalFilter{
		Profession: "Electrician", Available: &available, Locations: []string{"Haifa"},
	}).Return([]*domain.Professional{{ID: 1}, {ID: 2}}, nil).Once()

	got, err := c.app.FindAvailable(ctx, "Electrician", []string{"Haifa", " "})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	c.professionalRepo.AssertExpectations(t)
}

func TestApplication_ImportCSV(t *testing.T) {
	ctx := context.Background()
	c := setupTest()

	input := strings.Join([]string{
		"name,phone,profession,available,location,area",
		"Avi,+100,Plumber,TRUE,Haifa,North",
		"Ben,+200,Plumber,no,Haifa,North",
		"Short,+300,Plumber",
		"Dup,+400,Electrician,true,Eilat,South",
	}, "\n")

	plumber := &domain.Profession{ID: 1, Name: "Plumber"}
	electrician := &domain.Profession{ID: 2, Name: "Electrician"}
	c.professionRepo.On("Upsert", ctx, "Plumber").Return(plumber, nil).Twice()
	c.professionRepo.On("Upsert", ctx, "Electrician").Return(electrician, nil).Once()
	c.professionalRepo.On("FindByPhone", ctx, "+100").Return(nil, domain.ErrNotFound).Once()
	c.professionalRepo.On("FindByPhone", ctx, "+200").Return(nil, domain.ErrNotFound).Once()
	c.professionalRepo.On("FindByPhone", ctx, "+400").Return(&domain.Professional{ID: 99}, nil).Once()

	var created []*domain.Professional
	c.professionalRepo.On("Create", ctx, mock.AnythingOfType("*domain.Professional")).Return(nil).Run(func(args mock.Arguments) {
		p := args.Get(1).(*domain.Professional)
		p.ID = int64(len(created) + 1)
		created = append(created, p)
	}).Twice()

	res, err := c.app.ImportCSV(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Details, 2)
	assert.Equal(t, "Avi", res.Details[0].Name)

	require.Len(t, created, 2)
	assert.True(t, created[0].Available)
	assert.False(t, created[1].Available)
	assert.Equal(t, "Haifa", created[0].LocationOrEmpty())
	c.professionRepo.AssertExpectations(t)
	c.professionalRepo.AssertExpectations(t)
}

func TestApplication_ImportCSV_SkipsRowsWithBlankRequiredCells(t *testing.T) {
	ctx := context.Background()
	c := setupTest()

	input := strings.Join([]string{
		"name,phone,profession,available,location,area",
		"Dana,+111,Plumber,true,Tel Aviv,Center",
		"Eli,+222,,true,Haifa,North",
		"Empty,,Plumber,true,Haifa,North",
		"Empty2,  ,Plumber,true,Haifa,North",
		" ,+333,Plumber,true,Haifa,North",
		"Noa,+444,Electrician,true,Eilat,South",
	}, "\n")

	plumber := &domain.Profession{ID: 1, Name: "Plumber"}
	electrician := &domain.Profession{ID: 2, Name: "Electrician"}
	c.professionRepo.On("Upsert", ctx, "Plumber").Return(plumber, nil).Once()
	c.professionRepo.On("Upsert", ctx, "Electrician").Return(electrician, nil).Once()
	c.professionalRepo.On("FindByPhone", ctx, "+111").Return(nil, domain.ErrNotFound).Once()
	c.professionalRepo.On("FindByPhone", ctx, "+444").Return(nil, domain.ErrNotFound).Once()

	var created []*domain.Professional
	c.professionalRepo.On("Create", ctx, mock.AnythingOfType("*domain.Professional")).Return(nil).Run(func(args mock.Arguments) {
		p := args.Get(1).(*domain.Professional)
		p.ID = int64(len(created) + 1)
		created = append(created, p)
	}).Twice()

	res, err := c.app.ImportCSV(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 4, res.Skipped)
	require.Len(t, res.Details, 2)
	assert.Equal(t, "Dana", res.Details[0].Name)
	assert.Equal(t, "Noa", res.Details[1].Name)
	for _, p := range created {
		assert.NotEmpty(t, p.Phone)
	}
	c.professionRepo.AssertNotCalled(t, "Upsert", ctx, "")
	c.professionRepo.AssertExpectations(t)
	c.professionalRepo.AssertExpectations(t)
}

func TestApplication_ImportCSV_StoreFailureAborts(t *testing.T) {
	ctx := context.Background()
	c := setupTest()
	c.professionRepo.On("Upsert", ctx, "Plumber").Return(nil, errors.New("db down")).Once()

	_, err := c.app.ImportCSV(ctx, strings.NewReader("h1,h2,h3,h4,h5,h6\nAvi,+1,Plumber,true,Haifa,x\n"))
	assert.Error(t, err)
}

func TestApplication_ImportCSV_Empty(t *testing.T) {
	c := setupTest()
	res, err := c.app.ImportCSV(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Added)
}
