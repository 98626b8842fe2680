package reschedule_appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	"github.com/avenirbook/scheduling-engine/internal/infra/events"
	apptStorage "github.com/avenirbook/scheduling-engine/internal/infra/storage/appointment"
	"github.com/avenirbook/scheduling-engine/internal/integrations/directory"
	"github.com/avenirbook/scheduling-engine/internal/service/conflicts"
	"github.com/avenirbook/scheduling-engine/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTimeProvider struct{ now time.Time }

func (p *fixedTimeProvider) Now() time.Time { return p.now }

type fakeStore struct {
	mu            sync.Mutex
	appointments  map[int64]*domain.Appointment
	modifications []*domain.ModificationRecord
	lockedDates   []string
}

func newFakeStore(appointments ...*domain.Appointment) *fakeStore {
	s := &fakeStore{appointments: make(map[int64]*domain.Appointment)}
	for _, a := range appointments {
		s.appointments[a.ID] = a
	}
	return s
}

func (s *fakeStore) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, apptStorage.ErrAppointmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *fakeStore) UpdateSchedule(_ context.Context, id int64, newDate time.Time, newStart types.TimeString) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.appointments[id]
	a.Date = newDate
	a.StartTime = newStart
	return nil
}

func (s *fakeStore) LockResourceDay(_ context.Context, _, _ int64, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockedDates = append(s.lockedDates, date.Format(domain.DateFormat))
	return nil
}

func (s *fakeStore) Create(_ context.Context, record *domain.ModificationRecord) (*domain.ModificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *record
	stored.ID = int64(len(s.modifications) + 1)
	s.modifications = append(s.modifications, &stored)
	return &stored, nil
}

func (s *fakeStore) GetOccupyingByResourceDay(
	_ context.Context,
	businessID int64,
	resourceType domain.ResourceType,
	resourceID *int64,
	date time.Time,
	excludeID *int64,
) ([]*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Appointment, 0)
	for _, a := range s.appointments {
		if a.BusinessID != businessID || a.ResourceType != resourceType {
			continue
		}
		if (a.ResourceID == nil) != (resourceID == nil) {
			continue
		}
		if a.ResourceID != nil && *a.ResourceID != *resourceID {
			continue
		}
		if !a.Date.Equal(date) {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if !a.OccupiesCapacity() {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

type fakeConfigRepo struct{}

func (fakeConfigRepo) GetConfigWithHierarchy(_ context.Context, _ int64, _ *int64) (*domain.ScheduleConfig, error) {
	return &domain.ScheduleConfig{
		SlotGranularityMinutes:  30,
		AdvanceBookingDays:      30,
		MinBookingNoticeMinutes: 60,
	}, nil
}

type fakeDirectory struct {
	business *directory.Business
	staff    map[int64]*directory.StaffMember
}

func (f *fakeDirectory) GetBusiness(_ context.Context, _ int64) (*directory.Business, error) {
	return f.business, nil
}

func (f *fakeDirectory) GetStaffMember(_ context.Context, _, staffID int64) (*directory.StaffMember, error) {
	s, ok := f.staff[staffID]
	if !ok {
		return nil, directory.ErrResourceNotFound
	}
	return s, nil
}

func (f *fakeDirectory) GetServicePoint(_ context.Context, _, _ int64) (*directory.ServicePoint, error) {
	return nil, directory.ErrResourceNotFound
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeCache struct {
	invalidated []string
}

func (f *fakeCache) InvalidateDay(_ context.Context, _ int64, date time.Time) error {
	f.invalidated = append(f.invalidated, date.Format(domain.DateFormat))
	return nil
}

type fakePublisher struct {
	events []events.AppointmentEvent
}

func (f *fakePublisher) PublishAsync(event events.AppointmentEvent) {
	f.events = append(f.events, event)
}

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }

func openAllWeek(open, close string) directory.WeekSchedule {
	day := directory.DaySchedule{IsOpen: true, OpenTime: strPtr(open), CloseTime: strPtr(close)}
	return directory.WeekSchedule{
		Monday: day, Tuesday: day, Wednesday: day, Thursday: day,
		Friday: day, Saturday: day, Sunday: day,
	}
}

func testAppointment() *domain.Appointment {
	return &domain.Appointment{
		ID:              7,
		BusinessID:      1,
		ServiceID:       2,
		ResourceType:    domain.ResourceStaff,
		ResourceID:      int64Ptr(10),
		Date:            time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		DurationMinutes: 60,
		Status:          domain.StatusConfirmed,
		CustomerRef:     "500",
		ServiceName:     "Стрижка",
	}
}

type testEnv struct {
	store     *fakeStore
	cache     *fakeCache
	publisher *fakePublisher
	uc        *UseCase
}

func newTestEnv(t *testing.T, now time.Time, appointments ...*domain.Appointment) *testEnv {
	t.Helper()

	store := newFakeStore(appointments...)
	dir := &fakeDirectory{
		business: &directory.Business{
			ID:         1,
			Timezone:   "UTC",
			IsActive:   true,
			OwnerID:    100,
			ManagerIDs: []int64{101},
			Hours:      openAllWeek("09:00", "17:00"),
		},
		staff: map[int64]*directory.StaffMember{10: {ID: 10, Name: "Anna", IsActive: true}},
	}
	cache := &fakeCache{}
	publisher := &fakePublisher{}

	uc := NewUseCase(
		store,
		store,
		fakeConfigRepo{},
		conflicts.NewDetector(store, nopLogger{}),
		dir,
		fakeTxManager{},
		cache,
		publisher,
		nopLogger{},
	)
	uc.timeProvider = &fixedTimeProvider{now: now}

	return &testEnv{store: store, cache: cache, publisher: publisher, uc: uc}
}

func TestUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	newDate := time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)

	t.Run("move to another day", func(t *testing.T) {
		env := newTestEnv(t, now, testAppointment())

		resp, err := env.uc.Execute(ctx, &Request{
			ActorID:       500,
			AppointmentID: 7,
			NewDate:       newDate,
			NewStartTime:  "11:00",
			Reason:        "клиент попросил перенести",
		})
		require.NoError(t, err)

		assert.Equal(t, newDate, resp.Appointment.Date)
		assert.Equal(t, "11:00", resp.Appointment.StartTime.String())
		assert.Equal(t, 60, resp.Appointment.DurationMinutes, "duration never changes on reschedule")

		// Оба дня залочены в детерминированном порядке: раньший первым
		assert.Equal(t, []string{"2026-09-10", "2026-09-11"}, env.store.lockedDates)

		require.Len(t, env.store.modifications, 1)
		record := env.store.modifications[0]
		assert.Equal(t, domain.ModificationReschedule, record.Type)
		assert.Equal(t, "10:00", record.OldStartTime.String())
		require.NotNil(t, record.NewStartTime)
		assert.Equal(t, "11:00", record.NewStartTime.String())
		assert.Equal(t, int64(500), record.ActorID)
		assert.Equal(t, "клиент попросил перенести", record.Reason)

		assert.Equal(t, []string{"2026-09-10", "2026-09-11"}, env.cache.invalidated)
		require.Len(t, env.publisher.events, 1)
		assert.Equal(t, events.KindRescheduled, env.publisher.events[0].Kind)
	})

	t.Run("move within own old slot does not self-conflict", func(t *testing.T) {
		env := newTestEnv(t, now, testAppointment())

		resp, err := env.uc.Execute(ctx, &Request{
			ActorID:       500,
			AppointmentID: 7,
			NewDate:       testAppointment().Date,
			NewStartTime:  "10:30",
		})
		require.NoError(t, err)
		assert.Equal(t, "10:30", resp.Appointment.StartTime.String())

		// Один день — один лок
		assert.Equal(t, []string{"2026-09-10"}, env.store.lockedDates)
		assert.Equal(t, []string{"2026-09-10"}, env.cache.invalidated)
	})

	t.Run("new slot taken by another appointment", func(t *testing.T) {
		other := testAppointment()
		other.ID = 8
		other.CustomerRef = "600"
		other.Date = newDate
		other.StartTime = "11:00"

		env := newTestEnv(t, now, testAppointment(), other)

		_, err := env.uc.Execute(ctx, &Request{
			ActorID:       500,
			AppointmentID: 7,
			NewDate:       newDate,
			NewStartTime:  "11:30",
		})
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
		assert.Empty(t, env.store.modifications, "failed reschedule leaves no ledger record")
	})

	t.Run("terminal appointment cannot move", func(t *testing.T) {
		appt := testAppointment()
		appt.Status = domain.StatusCancelled

		env := newTestEnv(t, now, appt)

		_, err := env.uc.Execute(ctx, &Request{
			ActorID:       500,
			AppointmentID: 7,
			NewDate:       newDate,
			NewStartTime:  "11:00",
		})
		assert.ErrorIs(t, err, ErrCannotReschedule)
	})

	t.Run("foreign actor is forbidden", func(t *testing.T) {
		env := newTestEnv(t, now, testAppointment())

		_, err := env.uc.Execute(ctx, &Request{
			ActorID:       999,
			AppointmentID: 7,
			NewDate:       newDate,
			NewStartTime:  "11:00",
		})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("business manager may move any appointment", func(t *testing.T) {
		env := newTestEnv(t, now, testAppointment())

		_, err := env.uc.Execute(ctx, &Request{
			ActorID:       101,
			AppointmentID: 7,
			NewDate:       newDate,
			NewStartTime:  "11:00",
		})
		require.NoError(t, err)
	})

	t.Run("appointment not found", func(t *testing.T) {
		env := newTestEnv(t, now)

		_, err := env.uc.Execute(ctx, &Request{
			ActorID:       500,
			AppointmentID: 404,
			NewDate:       newDate,
			NewStartTime:  "11:00",
		})
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})

	t.Run("misaligned new start", func(t *testing.T) {
		env := newTestEnv(t, now, testAppointment())

		_, err := env.uc.Execute(ctx, &Request{
			ActorID:       500,
			AppointmentID: 7,
			NewDate:       newDate,
			NewStartTime:  "11:10",
		})
		assert.ErrorIs(t, err, ErrSlotNotAligned)
	})

	t.Run("same day move violates notice", func(t *testing.T) {
		sameDayNow := time.Date(2026, 9, 10, 10, 30, 0, 0, time.UTC)
		env := newTestEnv(t, sameDayNow, testAppointment())

		_, err := env.uc.Execute(ctx, &Request{
			ActorID:       500,
			AppointmentID: 7,
			NewDate:       testAppointment().Date,
			NewStartTime:  "11:00",
		})
		assert.ErrorIs(t, err, ErrBookingNoticeTooShort)
	})
}
