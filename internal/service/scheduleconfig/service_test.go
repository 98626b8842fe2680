package scheduleconfig

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	configStorage "github.com/avenirbook/scheduling-engine/internal/infra/storage/scheduleconfig"
	"github.com/avenirbook/scheduling-engine/internal/integrations/directory"
	"github.com/avenirbook/scheduling-engine/internal/service/scheduleconfig/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeConfigRepo struct {
	resolved *domain.ScheduleConfig
	all      []*domain.ScheduleConfig

	upserted *domain.ScheduleConfig
}

func (f *fakeConfigRepo) GetByBusinessAndResource(_ context.Context, _ int64, _ *int64) (*domain.ScheduleConfig, error) {
	if f.resolved == nil {
		return nil, configStorage.ErrConfigNotFound
	}
	return f.resolved, nil
}

func (f *fakeConfigRepo) GetConfigWithHierarchy(_ context.Context, _ int64, _ *int64) (*domain.ScheduleConfig, error) {
	if f.resolved == nil {
		return nil, configStorage.ErrConfigNotFound
	}
	return f.resolved, nil
}

func (f *fakeConfigRepo) GetAllByBusiness(_ context.Context, _ int64) ([]*domain.ScheduleConfig, error) {
	return f.all, nil
}

func (f *fakeConfigRepo) Upsert(_ context.Context, config *domain.ScheduleConfig) (*domain.ScheduleConfig, error) {
	stored := *config
	stored.ID = 42
	f.upserted = &stored
	return &stored, nil
}

type fakeDirectory struct {
	business *directory.Business
	staff    map[int64]*directory.StaffMember
	points   map[int64]*directory.ServicePoint
}

func (f *fakeDirectory) GetBusiness(_ context.Context, _ int64) (*directory.Business, error) {
	if f.business == nil {
		return nil, directory.ErrBusinessNotFound
	}
	return f.business, nil
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

func int64Ptr(v int64) *int64 { return &v }

func newTestService(repo *fakeConfigRepo, dir *fakeDirectory) *Service {
	return NewService(repo, dir, nopLogger{})
}

func testDirectory() *fakeDirectory {
	return &fakeDirectory{
		business: &directory.Business{
			ID:         1,
			IsActive:   true,
			OwnerID:    100,
			ManagerIDs: []int64{101},
		},
		staff:  map[int64]*directory.StaffMember{10: {ID: 10, Name: "Anna", IsActive: true}},
		points: map[int64]*directory.ServicePoint{5: {ID: 5, Name: "Бокс 1", MaxConcurrentSlots: 2, IsActive: true}},
	}
}

func TestService_GetResolved(t *testing.T) {
	ctx := context.Background()

	t.Run("stored config", func(t *testing.T) {
		repo := &fakeConfigRepo{resolved: &domain.ScheduleConfig{
			ID:                      3,
			BusinessID:              1,
			SlotGranularityMinutes:  30,
			AdvanceBookingDays:      14,
			MinBookingNoticeMinutes: 120,
		}}
		svc := newTestService(repo, testDirectory())

		resp, err := svc.GetResolved(ctx, &models.GetConfigRequest{BusinessID: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.ID)
		assert.Equal(t, 30, resp.SlotGranularityMinutes)
	})

	t.Run("defaults when nothing stored", func(t *testing.T) {
		svc := newTestService(&fakeConfigRepo{}, testDirectory())

		resp, err := svc.GetResolved(ctx, &models.GetConfigRequest{BusinessID: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(0), resp.ID)
		assert.Equal(t, int64(1), resp.BusinessID)
		assert.Equal(t, domain.DefaultSlotGranularityMinutes, resp.SlotGranularityMinutes)
		assert.Equal(t, domain.DefaultMinBookingNoticeMinutes, resp.MinBookingNoticeMinutes)
	})

	t.Run("invalid business id", func(t *testing.T) {
		svc := newTestService(&fakeConfigRepo{}, testDirectory())

		_, err := svc.GetResolved(ctx, &models.GetConfigRequest{BusinessID: 0})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestService_GetAllByBusiness(t *testing.T) {
	ctx := context.Background()

	repo := &fakeConfigRepo{all: []*domain.ScheduleConfig{
		{ID: 1, BusinessID: 1},
		{ID: 2, BusinessID: 1, ResourceID: int64Ptr(10)},
	}}
	svc := newTestService(repo, testDirectory())

	t.Run("manager sees all configs", func(t *testing.T) {
		resp, err := svc.GetAllByBusiness(ctx, 1, 101)
		require.NoError(t, err)
		assert.Len(t, resp.Configs, 2)
	})

	t.Run("non-manager is denied", func(t *testing.T) {
		_, err := svc.GetAllByBusiness(ctx, 1, 999)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	validRequest := func() *models.UpdateConfigRequest {
		return &models.UpdateConfigRequest{
			ActorID:                 100,
			BusinessID:              1,
			SlotGranularityMinutes:  30,
			AdvanceBookingDays:      14,
			MinBookingNoticeMinutes: 120,
		}
	}

	t.Run("owner updates business-wide config", func(t *testing.T) {
		repo := &fakeConfigRepo{}
		svc := newTestService(repo, testDirectory())

		resp, err := svc.Update(ctx, validRequest())
		require.NoError(t, err)
		assert.Equal(t, int64(42), resp.ID)
		require.NotNil(t, repo.upserted)
		assert.Nil(t, repo.upserted.ResourceID)
	})

	t.Run("resource-specific config checks the resource", func(t *testing.T) {
		repo := &fakeConfigRepo{}
		svc := newTestService(repo, testDirectory())

		req := validRequest()
		req.ResourceID = int64Ptr(10)

		_, err := svc.Update(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, repo.upserted.ResourceID)
		assert.Equal(t, int64(10), *repo.upserted.ResourceID)
	})

	t.Run("service point id also passes the resource check", func(t *testing.T) {
		repo := &fakeConfigRepo{}
		svc := newTestService(repo, testDirectory())

		req := validRequest()
		req.ResourceID = int64Ptr(5)

		_, err := svc.Update(ctx, req)
		require.NoError(t, err)
	})

	t.Run("unknown resource", func(t *testing.T) {
		svc := newTestService(&fakeConfigRepo{}, testDirectory())

		req := validRequest()
		req.ResourceID = int64Ptr(404)

		_, err := svc.Update(ctx, req)
		assert.ErrorIs(t, err, ErrResourceNotFound)
	})

	t.Run("manager is not enough, owner only", func(t *testing.T) {
		svc := newTestService(&fakeConfigRepo{}, testDirectory())

		req := validRequest()
		req.ActorID = 101

		_, err := svc.Update(ctx, req)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("granularity out of bounds", func(t *testing.T) {
		svc := newTestService(&fakeConfigRepo{}, testDirectory())

		req := validRequest()
		req.SlotGranularityMinutes = 3

		_, err := svc.Update(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("advance days out of bounds", func(t *testing.T) {
		svc := newTestService(&fakeConfigRepo{}, testDirectory())

		req := validRequest()
		req.AdvanceBookingDays = 1000

		_, err := svc.Update(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown business", func(t *testing.T) {
		svc := newTestService(&fakeConfigRepo{}, &fakeDirectory{})

		_, err := svc.Update(ctx, validRequest())
		assert.ErrorIs(t, err, ErrBusinessNotFound)
	})
}
