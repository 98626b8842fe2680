package create_appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	"github.com/avenirbook/scheduling-engine/internal/infra/events"
	"github.com/avenirbook/scheduling-engine/internal/integrations/directory"
	"github.com/avenirbook/scheduling-engine/internal/service/conflicts"
	"github.com/avenirbook/scheduling-engine/pkg/txmanager"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTimeProvider struct{ now time.Time }

func (p *fixedTimeProvider) Now() time.Time { return p.now }

// fakeStore хранит записи в памяти и обслуживает и usecase, и детектор
type fakeStore struct {
	mu           sync.Mutex
	appointments []*domain.Appointment
	nextID       int64

	lockCalls []int64 // resource key ids, переданные в LockResourceDay
}

func (s *fakeStore) Create(_ context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	stored := *appt
	stored.ID = s.nextID
	s.appointments = append(s.appointments, &stored)
	return &stored, nil
}

func (s *fakeStore) LockResourceDay(_ context.Context, _, resourceID int64, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockCalls = append(s.lockCalls, resourceID)
	return nil
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
		out = append(out, a)
	}
	return out, nil
}

type fakeConfigRepo struct {
	config *domain.ScheduleConfig
}

func (f *fakeConfigRepo) GetConfigWithHierarchy(_ context.Context, _ int64, _ *int64) (*domain.ScheduleConfig, error) {
	if f.config == nil {
		return domain.DefaultScheduleConfig(), nil
	}
	return f.config, nil
}

type fakeDirectory struct {
	business *directory.Business
	service  *directory.Service
	staff    map[int64]*directory.StaffMember
	points   map[int64]*directory.ServicePoint
}

func (f *fakeDirectory) GetBusiness(_ context.Context, _ int64) (*directory.Business, error) {
	if f.business == nil {
		return nil, directory.ErrBusinessNotFound
	}
	return f.business, nil
}

func (f *fakeDirectory) GetService(_ context.Context, _, _ int64) (*directory.Service, error) {
	if f.service == nil {
		return nil, directory.ErrServiceNotFound
	}
	return f.service, nil
}

func (f *fakeDirectory) GetStaffMember(_ context.Context, _, staffID int64) (*directory.StaffMember, error) {
	s, ok := f.staff[staffID]
	if !ok {
		return nil, directory.ErrResourceNotFound
	}
	return s, nil
}

func (f *fakeDirectory) GetServicePoint(_ context.Context, _, pointID int64) (*directory.ServicePoint, error) {
	p, ok := f.points[pointID]
	if !ok {
		return nil, directory.ErrResourceNotFound
	}
	return p, nil
}

// fakeTxManager сериализует "транзакции" мьютексом — аналог advisory lock
type fakeTxManager struct {
	mu  sync.Mutex
	err error
}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(ctx)
}

type fakeCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (f *fakeCache) InvalidateDay(_ context.Context, businessID int64, date time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, date.Format(domain.DateFormat))
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.AppointmentEvent
}

func (f *fakePublisher) PublishAsync(event events.AppointmentEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
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

type testEnv struct {
	store     *fakeStore
	dir       *fakeDirectory
	cache     *fakeCache
	publisher *fakePublisher
	uc        *UseCase
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()

	store := &fakeStore{}
	dir := &fakeDirectory{
		business: &directory.Business{
			ID:       1,
			Name:     "Автомойка",
			Timezone: "UTC",
			IsActive: true,
			OwnerID:  100,
			Hours:    openAllWeek("09:00", "17:00"),
		},
		service: &directory.Service{ID: 2, BusinessID: 1, Name: "Мойка кузова", DurationMinutes: 60, IsActive: true},
		staff:   map[int64]*directory.StaffMember{10: {ID: 10, Name: "Anna", IsActive: true}},
		points:  map[int64]*directory.ServicePoint{5: {ID: 5, Name: "Бокс 1", MaxConcurrentSlots: 2, IsActive: true}},
	}
	cache := &fakeCache{}
	publisher := &fakePublisher{}

	detector := conflicts.NewDetector(store, nopLogger{})

	uc := NewUseCase(
		store,
		&fakeConfigRepo{config: &domain.ScheduleConfig{
			SlotGranularityMinutes:  30,
			AdvanceBookingDays:      30,
			MinBookingNoticeMinutes: 60,
		}},
		detector,
		dir,
		&fakeTxManager{},
		cache,
		publisher,
		nopLogger{},
	)
	uc.timeProvider = &fixedTimeProvider{now: now}

	return &testEnv{store: store, dir: dir, cache: cache, publisher: publisher, uc: uc}
}

func TestUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	baseRequest := func() *Request {
		return &Request{
			ActorID:     500,
			BusinessID:  1,
			ServiceID:   2,
			StaffID:     int64Ptr(10),
			Date:        date,
			StartTime:   "10:00",
			CustomerRef: "500",
		}
	}

	t.Run("happy path", func(t *testing.T) {
		env := newTestEnv(t, now)

		resp, err := env.uc.Execute(ctx, baseRequest())
		require.NoError(t, err)
		require.NotNil(t, resp.Appointment)

		appt := resp.Appointment
		assert.Equal(t, domain.StatusPending, appt.Status)
		assert.Equal(t, domain.ResourceStaff, appt.ResourceType)
		require.NotNil(t, appt.ResourceID)
		assert.Equal(t, int64(10), *appt.ResourceID)
		assert.Equal(t, 60, appt.DurationMinutes, "duration snapshotted from service")
		assert.Equal(t, "500", appt.CustomerRef)
		assert.Equal(t, "Мойка кузова", appt.ServiceName)

		require.Len(t, env.store.lockCalls, 1)
		assert.Equal(t, int64(10), env.store.lockCalls[0])

		assert.Equal(t, []string{"2026-09-10"}, env.cache.invalidated)
		require.Len(t, env.publisher.events, 1)
		assert.Equal(t, events.KindCreated, env.publisher.events[0].Kind)
	})

	t.Run("whole business fallback when no resource given", func(t *testing.T) {
		env := newTestEnv(t, now)

		req := baseRequest()
		req.StaffID = nil

		resp, err := env.uc.Execute(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, domain.ResourceBusiness, resp.Appointment.ResourceType)
		assert.Nil(t, resp.Appointment.ResourceID)
		require.Len(t, env.store.lockCalls, 1)
		assert.Equal(t, int64(0), env.store.lockCalls[0], "fallback locks resource key 0")
	})

	t.Run("second booking of the same staff slot conflicts", func(t *testing.T) {
		env := newTestEnv(t, now)

		_, err := env.uc.Execute(ctx, baseRequest())
		require.NoError(t, err)

		_, err = env.uc.Execute(ctx, baseRequest())
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
		assert.Len(t, env.store.appointments, 1)
	})

	t.Run("service point accepts bookings up to capacity", func(t *testing.T) {
		env := newTestEnv(t, now)

		req := baseRequest()
		req.StaffID = nil
		req.ServicePointID = int64Ptr(5)

		_, err := env.uc.Execute(ctx, req)
		require.NoError(t, err)

		_, err = env.uc.Execute(ctx, req)
		require.NoError(t, err, "capacity 2 allows a second concurrent booking")

		_, err = env.uc.Execute(ctx, req)
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
	})

	t.Run("cancelled booking frees the slot", func(t *testing.T) {
		env := newTestEnv(t, now)

		_, err := env.uc.Execute(ctx, baseRequest())
		require.NoError(t, err)

		env.store.appointments[0].Status = domain.StatusCancelled

		_, err = env.uc.Execute(ctx, baseRequest())
		require.NoError(t, err)
	})

	t.Run("misaligned start time", func(t *testing.T) {
		env := newTestEnv(t, now)

		req := baseRequest()
		req.StartTime = "10:10"

		_, err := env.uc.Execute(ctx, req)
		assert.ErrorIs(t, err, ErrSlotNotAligned)
	})

	t.Run("slot outside working hours", func(t *testing.T) {
		env := newTestEnv(t, now)

		req := baseRequest()
		req.StartTime = "08:00"

		_, err := env.uc.Execute(ctx, req)
		assert.ErrorIs(t, err, ErrSlotOutsideWorkingHours)
	})

	t.Run("slot overruns closing time", func(t *testing.T) {
		env := newTestEnv(t, now)

		req := baseRequest()
		req.StartTime = "16:30" // услуга 60 минут, закрытие в 17:00

		_, err := env.uc.Execute(ctx, req)
		assert.ErrorIs(t, err, ErrSlotOutsideWorkingHours)
	})

	t.Run("same day booking violates notice", func(t *testing.T) {
		sameDayNow := time.Date(2026, 9, 10, 9, 30, 0, 0, time.UTC)
		env := newTestEnv(t, sameDayNow)

		// 10:00 ближе, чем minBookingNoticeMinutes=60 от 09:30
		_, err := env.uc.Execute(ctx, baseRequest())
		assert.ErrorIs(t, err, ErrBookingNoticeTooShort)
	})

	t.Run("inactive business", func(t *testing.T) {
		env := newTestEnv(t, now)
		env.dir.business.IsActive = false

		_, err := env.uc.Execute(ctx, baseRequest())
		assert.ErrorIs(t, err, ErrBusinessNotFound)
	})

	t.Run("inactive staff member", func(t *testing.T) {
		env := newTestEnv(t, now)
		env.dir.staff[10].IsActive = false

		_, err := env.uc.Execute(ctx, baseRequest())
		assert.ErrorIs(t, err, ErrResourceNotFound)
	})

	t.Run("missing customer ref", func(t *testing.T) {
		env := newTestEnv(t, now)

		req := baseRequest()
		req.CustomerRef = "   "

		_, err := env.uc.Execute(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("serialization retries exhausted read as slot taken", func(t *testing.T) {
		env := newTestEnv(t, now)
		env.uc.txManager = &fakeTxManager{err: txmanager.ErrRetriesExhausted}

		_, err := env.uc.Execute(ctx, baseRequest())
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
	})
}

// TestUseCase_Execute_Concurrent моделирует гонку за последнее место:
// транзакционный мьютекс играет роль advisory lock, и из N конкурентных
// запросов закоммититься должен ровно один.
func TestUseCase_Execute_Concurrent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	env := newTestEnv(t, now)

	const workers = 10

	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.uc.Execute(ctx, &Request{
				ActorID:     int64(500 + i),
				BusinessID:  1,
				ServiceID:   2,
				StaffID:     int64Ptr(10),
				Date:        date,
				StartTime:   "10:00",
				CustomerRef: "client",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrSlotNotAvailable)
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one booking wins the race")
	assert.Len(t, env.store.appointments, 1)
}
