package get_available_slots

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	"github.com/avenirbook/scheduling-engine/internal/infra/cache/availability"
	configStorage "github.com/avenirbook/scheduling-engine/internal/infra/storage/scheduleconfig"
	"github.com/avenirbook/scheduling-engine/internal/integrations/directory"
	"github.com/avenirbook/scheduling-engine/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTimeProvider struct{ now time.Time }

func (p *fixedTimeProvider) Now() time.Time { return p.now }

type fakeApptRepo struct {
	appointments map[int64][]*domain.Appointment // keyed by resource id (0 = business)
	calls        int
}

func (f *fakeApptRepo) GetOccupyingByResourceDay(
	_ context.Context,
	_ int64,
	_ domain.ResourceType,
	resourceID *int64,
	_ time.Time,
	_ *int64,
) ([]*domain.Appointment, error) {
	f.calls++
	key := int64(0)
	if resourceID != nil {
		key = *resourceID
	}
	return f.appointments[key], nil
}

type fakeConfigRepo struct {
	config *domain.ScheduleConfig
}

func (f *fakeConfigRepo) GetConfigWithHierarchy(_ context.Context, businessID int64, _ *int64) (*domain.ScheduleConfig, error) {
	if f.config == nil {
		return nil, configStorage.ErrConfigNotFound
	}
	cfg := *f.config
	cfg.BusinessID = businessID
	return &cfg, nil
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

func (f *fakeDirectory) ListStaff(_ context.Context, _ int64) ([]directory.StaffMember, error) {
	out := make([]directory.StaffMember, 0, len(f.staff))
	for _, s := range f.staff {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeDirectory) ListServicePoints(_ context.Context, _ int64) ([]directory.ServicePoint, error) {
	out := make([]directory.ServicePoint, 0, len(f.points))
	for _, p := range f.points {
		out = append(out, *p)
	}
	return out, nil
}

type fakeSlotsCache struct {
	store map[string][]domain.TimeSlot
}

func cacheMapKey(key availability.Key) string {
	return fmt.Sprintf("%d|%s|%s|%d|%d",
		key.BusinessID, key.Date.Format(domain.DateFormat), key.Selector, key.ServiceID, key.DurationMinutes)
}

func (f *fakeSlotsCache) Get(_ context.Context, key availability.Key) ([]domain.TimeSlot, error) {
	slots, ok := f.store[cacheMapKey(key)]
	if !ok {
		return nil, availability.ErrCacheMiss
	}
	return slots, nil
}

func (f *fakeSlotsCache) Set(_ context.Context, key availability.Key, slots []domain.TimeSlot) error {
	if f.store == nil {
		f.store = make(map[string][]domain.TimeSlot)
	}
	f.store[cacheMapKey(key)] = slots
	return nil
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

func testBusiness() *directory.Business {
	return &directory.Business{
		ID:       1,
		Name:     "Барбершоп",
		Timezone: "UTC",
		IsActive: true,
		OwnerID:  100,
		Hours:    openAllWeek("09:00", "17:00"),
	}
}

func testService() *directory.Service {
	return &directory.Service{ID: 2, BusinessID: 1, Name: "Стрижка", DurationMinutes: 60, IsActive: true}
}

func newTestUseCase(repo *fakeApptRepo, dir *fakeDirectory, cfg *fakeConfigRepo, cache SlotsCache, now time.Time) *UseCase {
	uc := NewUseCase(repo, cfg, dir, cache, nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: now}
	return uc
}

func TestGenerateStartTimes(t *testing.T) {
	hours := directory.DaySchedule{IsOpen: true, OpenTime: strPtr("09:00"), CloseTime: strPtr("17:00")}
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	futureDate := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	t.Run("full day grid", func(t *testing.T) {
		starts, err := generateStartTimes(hours, 30, 60, futureDate, now, 0)
		require.NoError(t, err)
		// 09:00 .. 16:00 с шагом 30: последний слот кончается ровно в 17:00
		require.Len(t, starts, 15)
		assert.Equal(t, "09:00", starts[0].String())
		assert.Equal(t, "16:00", starts[14].String())
	})

	t.Run("same day notice cutoff", func(t *testing.T) {
		sameDayNow := time.Date(2026, 9, 10, 10, 5, 0, 0, time.UTC)
		starts, err := generateStartTimes(hours, 30, 60, futureDate, sameDayNow, 60)
		require.NoError(t, err)
		// now + notice = 11:05, первый годный кандидат 11:30
		require.NotEmpty(t, starts)
		assert.Equal(t, "11:30", starts[0].String())
	})

	t.Run("closed day", func(t *testing.T) {
		closed := directory.DaySchedule{IsOpen: false}
		starts, err := generateStartTimes(closed, 30, 60, futureDate, now, 0)
		require.NoError(t, err)
		assert.Empty(t, starts)
	})

	t.Run("service longer than working day", func(t *testing.T) {
		short := directory.DaySchedule{IsOpen: true, OpenTime: strPtr("09:00"), CloseTime: strPtr("10:00")}
		starts, err := generateStartTimes(short, 30, 90, futureDate, now, 0)
		require.NoError(t, err)
		assert.Empty(t, starts)
	})

	t.Run("past date", func(t *testing.T) {
		starts, err := generateStartTimes(hours, 30, 60, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), now, 0)
		require.NoError(t, err)
		assert.Empty(t, starts)
	})
}

func TestBuildGrid(t *testing.T) {
	t.Run("single staff with one booking", func(t *testing.T) {
		staff := domain.StaffResource(10, "Anna")
		occupied := map[int64][]domain.Interval{
			10: {{Start: "10:00", End: "11:00"}},
		}

		grid := buildGrid(mustStarts(t, "09:00", "09:30", "10:00", "10:30", "11:00"), 60, []domain.Resource{staff}, occupied)

		require.Len(t, grid, 5)
		assert.Equal(t, 1, grid[0].AvailableSpots, "09:00 ends when booking starts")
		assert.Equal(t, 0, grid[1].AvailableSpots, "09:30 overlaps booking")
		assert.Equal(t, 0, grid[2].AvailableSpots)
		assert.Equal(t, 0, grid[3].AvailableSpots)
		assert.Equal(t, 1, grid[4].AvailableSpots, "11:00 starts when booking ends")
	})

	t.Run("union over two staff members", func(t *testing.T) {
		anna := domain.StaffResource(10, "Anna")
		boris := domain.StaffResource(11, "Boris")
		occupied := map[int64][]domain.Interval{
			10: {{Start: "10:00", End: "11:00"}},
		}

		grid := buildGrid(mustStarts(t, "10:00"), 60, []domain.Resource{anna, boris}, occupied)

		require.Len(t, grid, 1)
		assert.Equal(t, 1, grid[0].AvailableSpots, "Boris is still free")
		assert.Equal(t, 2, grid[0].TotalSpots)
		assert.True(t, grid[0].IsPartiallyAvailable())
	})

	t.Run("service point capacity", func(t *testing.T) {
		point := domain.ServicePointResource(5, "Box 1", 3)
		occupied := map[int64][]domain.Interval{
			5: {
				{Start: "10:00", End: "11:00"},
				{Start: "10:30", End: "11:30"},
			},
		}

		grid := buildGrid(mustStarts(t, "10:30"), 60, []domain.Resource{point}, occupied)

		require.Len(t, grid, 1)
		assert.Equal(t, 1, grid[0].AvailableSpots)
		assert.Equal(t, 3, grid[0].TotalSpots)
	})
}

func mustStarts(t *testing.T, values ...string) []types.TimeString {
	t.Helper()
	out := make([]types.TimeString, 0, len(values))
	for _, v := range values {
		ts, err := types.NewTimeStringFromString(v)
		require.NoError(t, err)
		out = append(out, ts)
	}
	return out
}

func TestUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	baseRequest := func() *Request {
		return &Request{ActorID: 500, BusinessID: 1, ServiceID: 2, Date: date}
	}

	t.Run("whole business grid without bookings", func(t *testing.T) {
		repo := &fakeApptRepo{}
		dir := &fakeDirectory{business: testBusiness(), service: testService()}
		cfg := &fakeConfigRepo{config: &domain.ScheduleConfig{
			SlotGranularityMinutes:  30,
			AdvanceBookingDays:      30,
			MinBookingNoticeMinutes: 0,
		}}

		uc := newTestUseCase(repo, dir, cfg, nil, now)

		resp, err := uc.Execute(ctx, baseRequest())
		require.NoError(t, err)

		assert.Equal(t, "business", resp.Selector)
		require.Len(t, resp.Slots, 15)
		for _, slot := range resp.Slots {
			assert.Equal(t, 1, slot.AvailableSpots)
			assert.Equal(t, 1, slot.TotalSpots)
		}
	})

	t.Run("staff selector with existing booking", func(t *testing.T) {
		repo := &fakeApptRepo{appointments: map[int64][]*domain.Appointment{
			10: {{ID: 1, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusConfirmed}},
		}}
		dir := &fakeDirectory{
			business: testBusiness(),
			service:  testService(),
			staff:    map[int64]*directory.StaffMember{10: {ID: 10, Name: "Anna", IsActive: true}},
		}
		cfg := &fakeConfigRepo{config: &domain.ScheduleConfig{
			SlotGranularityMinutes: 30,
			AdvanceBookingDays:     30,
		}}

		uc := newTestUseCase(repo, dir, cfg, nil, now)

		req := baseRequest()
		req.StaffID = int64Ptr(10)

		resp, err := uc.Execute(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "staff:10", resp.Selector)

		byStart := make(map[string]domain.TimeSlot, len(resp.Slots))
		for _, s := range resp.Slots {
			byStart[s.StartTime.String()] = s
		}

		assert.Equal(t, 1, byStart["09:00"].AvailableSpots)
		assert.Equal(t, 0, byStart["09:30"].AvailableSpots)
		assert.Equal(t, 0, byStart["10:30"].AvailableSpots)
		assert.Equal(t, 1, byStart["11:00"].AvailableSpots)
	})

	t.Run("default config when none stored", func(t *testing.T) {
		repo := &fakeApptRepo{}
		dir := &fakeDirectory{business: testBusiness(), service: testService()}

		uc := newTestUseCase(repo, dir, &fakeConfigRepo{}, nil, now)

		resp, err := uc.Execute(ctx, baseRequest())
		require.NoError(t, err)
		// Дефолтная гранулярность 15 минут: (17-9)*60/15 - 3 хвостовых = 29 слотов
		assert.NotEmpty(t, resp.Slots)
	})

	t.Run("inactive business", func(t *testing.T) {
		business := testBusiness()
		business.IsActive = false
		dir := &fakeDirectory{business: business, service: testService()}

		uc := newTestUseCase(&fakeApptRepo{}, dir, &fakeConfigRepo{}, nil, now)

		_, err := uc.Execute(ctx, baseRequest())
		assert.ErrorIs(t, err, ErrBusinessNotFound)
	})

	t.Run("inactive service", func(t *testing.T) {
		service := testService()
		service.IsActive = false
		dir := &fakeDirectory{business: testBusiness(), service: service}

		uc := newTestUseCase(&fakeApptRepo{}, dir, &fakeConfigRepo{}, nil, now)

		_, err := uc.Execute(ctx, baseRequest())
		assert.ErrorIs(t, err, ErrServiceNotFound)
	})

	t.Run("unknown staff member", func(t *testing.T) {
		dir := &fakeDirectory{business: testBusiness(), service: testService()}

		uc := newTestUseCase(&fakeApptRepo{}, dir, &fakeConfigRepo{}, nil, now)

		req := baseRequest()
		req.StaffID = int64Ptr(999)

		_, err := uc.Execute(ctx, req)
		assert.ErrorIs(t, err, ErrResourceNotFound)
	})

	t.Run("date in past", func(t *testing.T) {
		dir := &fakeDirectory{business: testBusiness(), service: testService()}
		uc := newTestUseCase(&fakeApptRepo{}, dir, &fakeConfigRepo{}, nil, now)

		req := baseRequest()
		req.Date = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

		_, err := uc.Execute(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("date beyond advance booking limit", func(t *testing.T) {
		dir := &fakeDirectory{business: testBusiness(), service: testService()}
		cfg := &fakeConfigRepo{config: &domain.ScheduleConfig{
			SlotGranularityMinutes: 30,
			AdvanceBookingDays:     7,
		}}
		uc := newTestUseCase(&fakeApptRepo{}, dir, cfg, nil, now)

		_, err := uc.Execute(ctx, baseRequest())
		assert.ErrorIs(t, err, ErrDateTooFarInFuture)
	})

	t.Run("closed day yields empty grid", func(t *testing.T) {
		business := testBusiness()
		business.Hours = directory.WeekSchedule{}
		dir := &fakeDirectory{business: business, service: testService()}

		uc := newTestUseCase(&fakeApptRepo{}, dir, &fakeConfigRepo{}, nil, now)

		resp, err := uc.Execute(ctx, baseRequest())
		require.NoError(t, err)
		assert.Empty(t, resp.Slots)
	})

	t.Run("two selectors rejected", func(t *testing.T) {
		dir := &fakeDirectory{business: testBusiness(), service: testService()}
		uc := newTestUseCase(&fakeApptRepo{}, dir, &fakeConfigRepo{}, nil, now)

		req := baseRequest()
		req.StaffID = int64Ptr(10)
		req.ServicePointID = int64Ptr(5)

		_, err := uc.Execute(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("second call is served from cache", func(t *testing.T) {
		repo := &fakeApptRepo{}
		dir := &fakeDirectory{business: testBusiness(), service: testService()}
		cfg := &fakeConfigRepo{config: &domain.ScheduleConfig{
			SlotGranularityMinutes: 30,
			AdvanceBookingDays:     30,
		}}
		cache := &fakeSlotsCache{}

		uc := newTestUseCase(repo, dir, cfg, cache, now)

		_, err := uc.Execute(ctx, baseRequest())
		require.NoError(t, err)
		callsAfterFirst := repo.calls

		resp, err := uc.Execute(ctx, baseRequest())
		require.NoError(t, err)

		assert.Equal(t, callsAfterFirst, repo.calls, "grid must come from cache, not storage")
		assert.Len(t, resp.Slots, 15)
	})
}
