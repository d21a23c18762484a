// Package memory keeps every repository in process behind a single mutex.
// It backs the memory store driver and the lifecycle tests; each repository
// operation is atomic with respect to every other one.
package memory

import (
	"sync"
	"time"

	directory "github.com/fieldops/dispatch_services/internal/directory_service/domain"
	inbound "github.com/fieldops/dispatch_services/internal/inbound_processor_service/domain"
	servicecall "github.com/fieldops/dispatch_services/internal/servicecall_service/domain"
)

type Store struct {
	mu sync.Mutex

	professions   map[int64]*directory.Profession
	professionals map[int64]*directory.Professional
	calls         map[int64]*servicecall.ServiceCall
	assignments   map[int64]*servicecall.Assignment
	messages      []*inbound.Message

	nextProfessionID   int64
	nextProfessionalID int64
	nextCallID         int64
	nextAssignmentID   int64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		professions:   make(map[int64]*directory.Profession),
		professionals: make(map[int64]*directory.Professional),
		calls:         make(map[int64]*servicecall.ServiceCall),
		assignments:   make(map[int64]*servicecall.Assignment),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Repository views. They share the store's lock and data.

func (s *Store) Professions() *ProfessionRepository     { return &ProfessionRepository{s: s} }
func (s *Store) Professionals() *ProfessionalRepository { return &ProfessionalRepository{s: s} }
func (s *Store) ServiceCalls() *ServiceCallRepository   { return &ServiceCallRepository{s: s} }
func (s *Store) Lifecycle() *LifecycleRepository        { return &LifecycleRepository{s: s} }
func (s *Store) Messages() *MessageRepository           { return &MessageRepository{s: s} }

// tick returns a strictly increasing timestamp so creation order is total.
func (s *Store) tick(last time.Time) time.Time {
	t := s.now()
	if !t.After(last) {
		t = last.Add(time.Microsecond)
	}
	return t
}

var (
	_ directory.ProfessionRepository    = (*ProfessionRepository)(nil)
	_ directory.ProfessionalRepository  = (*ProfessionalRepository)(nil)
	_ servicecall.ServiceCallRepository = (*ServiceCallRepository)(nil)
	_ servicecall.LifecycleRepository   = (*LifecycleRepository)(nil)
	_ inbound.MessageRepository         = (*MessageRepository)(nil)
)
