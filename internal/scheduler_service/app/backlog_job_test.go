package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	servicecall "github.com/fieldops/dispatch_services/internal/servicecall_service/domain"
)

type MockServiceCallCounter struct {
	mock.Mock
}

func (m *MockServiceCallCounter) CountByStatus(ctx context.Context) (map[servicecall.ServiceCallStatus]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[servicecall.ServiceCallStatus]int), args.Error(1)
}

func TestBacklogJob_Refresh(t *testing.T) {
	lister := new(MockServiceCallCounter)
	lister.On("CountByStatus", mock.Anything).Return(map[servicecall.ServiceCallStatus]int{
		servicecall.StatusOpen:     2,
		servicecall.StatusAssigned: 1,
	}, nil).Once()

	job := NewBacklogJob(lister, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	counts, err := job.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, counts[servicecall.StatusOpen])
	assert.Equal(t, 1, counts[servicecall.StatusAssigned])
	assert.Equal(t, 0, counts[servicecall.StatusCompleted])
	assert.Len(t, counts, 4)
	lister.AssertExpectations(t)
}

func TestBacklogJob_RefreshError(t *testing.T) {
	lister := new(MockServiceCallCounter)
	lister.On("CountByStatus", mock.Anything).Return(nil, errors.New("db down")).Once()

	job := NewBacklogJob(lister, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := job.Refresh(context.Background())
	assert.Error(t, err)
	lister.AssertExpectations(t)
}

func TestBacklogJob_StartRunsImmediately(t *testing.T) {
	lister := new(MockServiceCallCounter)
	ran := make(chan struct{}, 1)
	lister.On("CountByStatus", mock.Anything).Return(map[servicecall.ServiceCallStatus]int{}, nil).
		Run(func(mock.Arguments) {
			select {
			case ran <- struct{}{}:
			default:
			}
		})

	job := NewBacklogJob(lister, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s, err := job.Start(context.Background(), time.Hour)
	require.NoError(t, err)
	defer func() { _ = s.Shutdown() }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("backlog job did not run on start")
	}
}
