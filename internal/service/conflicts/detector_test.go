package conflicts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avenirbook/scheduling-engine/internal/domain"
)

type fakeAppointmentRepo struct {
	appointments []*domain.Appointment
	err          error

	lastExcludeID *int64
}

func (f *fakeAppointmentRepo) GetOccupyingByResourceDay(
	_ context.Context,
	_ int64,
	_ domain.ResourceType,
	_ *int64,
	_ time.Time,
	excludeID *int64,
) ([]*domain.Appointment, error) {
	f.lastExcludeID = excludeID
	if f.err != nil {
		return nil, f.err
	}
	if excludeID == nil {
		return f.appointments, nil
	}
	filtered := make([]*domain.Appointment, 0, len(f.appointments))
	for _, a := range f.appointments {
		if a.ID == *excludeID {
			continue
		}
		filtered = append(filtered, a)
	}
	return filtered, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testDate() time.Time {
	return time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
}

func TestDetector_HasConflict(t *testing.T) {
	ctx := context.Background()

	t.Run("free day has no conflict", func(t *testing.T) {
		d := NewDetector(&fakeAppointmentRepo{}, nopLogger{})

		conflict, err := d.HasConflict(ctx, CheckRequest{
			BusinessID:      1,
			Resource:        domain.StaffResource(10, "Anna"),
			Date:            testDate(),
			StartTime:       "10:00",
			DurationMinutes: 60,
		})

		require.NoError(t, err)
		assert.False(t, conflict)
	})

	t.Run("overlap on capacity-1 resource conflicts", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointments: []*domain.Appointment{
			{ID: 1, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
		}}
		d := NewDetector(repo, nopLogger{})

		conflict, err := d.HasConflict(ctx, CheckRequest{
			BusinessID:      1,
			Resource:        domain.StaffResource(10, "Anna"),
			Date:            testDate(),
			StartTime:       "10:30",
			DurationMinutes: 60,
		})

		require.NoError(t, err)
		assert.True(t, conflict)
	})

	t.Run("back to back slot does not conflict", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointments: []*domain.Appointment{
			{ID: 1, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
		}}
		d := NewDetector(repo, nopLogger{})

		conflict, err := d.HasConflict(ctx, CheckRequest{
			BusinessID:      1,
			Resource:        domain.StaffResource(10, "Anna"),
			Date:            testDate(),
			StartTime:       "11:00",
			DurationMinutes: 60,
		})

		require.NoError(t, err)
		assert.False(t, conflict)
	})

	t.Run("service point allows concurrent slots up to capacity", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointments: []*domain.Appointment{
			{ID: 1, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
		}}
		d := NewDetector(repo, nopLogger{})

		point := domain.ServicePointResource(5, "Box 1", 2)

		conflict, err := d.HasConflict(ctx, CheckRequest{
			BusinessID:      1,
			Resource:        point,
			Date:            testDate(),
			StartTime:       "10:30",
			DurationMinutes: 60,
		})
		require.NoError(t, err)
		assert.False(t, conflict, "second concurrent slot fits into capacity 2")

		repo.appointments = append(repo.appointments,
			&domain.Appointment{ID: 2, StartTime: "10:15", DurationMinutes: 60, Status: domain.StatusPending})

		conflict, err = d.HasConflict(ctx, CheckRequest{
			BusinessID:      1,
			Resource:        point,
			Date:            testDate(),
			StartTime:       "10:30",
			DurationMinutes: 60,
		})
		require.NoError(t, err)
		assert.True(t, conflict, "third concurrent slot exceeds capacity 2")
	})

	t.Run("inactive resource always conflicts", func(t *testing.T) {
		repo := &fakeAppointmentRepo{}
		d := NewDetector(repo, nopLogger{})

		resource := domain.StaffResource(10, "Anna")
		resource.IsActive = false

		conflict, err := d.HasConflict(ctx, CheckRequest{
			BusinessID:      1,
			Resource:        resource,
			Date:            testDate(),
			StartTime:       "10:00",
			DurationMinutes: 60,
		})

		require.NoError(t, err)
		assert.True(t, conflict)
		assert.Nil(t, repo.lastExcludeID)
	})

	t.Run("exclude own appointment on reschedule", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointments: []*domain.Appointment{
			{ID: 7, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
		}}
		d := NewDetector(repo, nopLogger{})

		excludeID := int64(7)
		conflict, err := d.HasConflict(ctx, CheckRequest{
			BusinessID:           1,
			Resource:             domain.StaffResource(10, "Anna"),
			Date:                 testDate(),
			StartTime:            "10:30",
			DurationMinutes:      60,
			ExcludeAppointmentID: &excludeID,
		})

		require.NoError(t, err)
		assert.False(t, conflict, "moving within own old slot must not self-conflict")
	})

	t.Run("invalid slot", func(t *testing.T) {
		d := NewDetector(&fakeAppointmentRepo{}, nopLogger{})

		_, err := d.HasConflict(ctx, CheckRequest{
			BusinessID:      1,
			Resource:        domain.StaffResource(10, "Anna"),
			Date:            testDate(),
			StartTime:       "23:30",
			DurationMinutes: 60,
		})

		assert.ErrorIs(t, err, ErrInvalidSlot)
		assert.True(t, IsInvalidSlot(err))
	})

	t.Run("repository error is wrapped", func(t *testing.T) {
		repo := &fakeAppointmentRepo{err: errors.New("connection refused")}
		d := NewDetector(repo, nopLogger{})

		_, err := d.HasConflict(ctx, CheckRequest{
			BusinessID:      1,
			Resource:        domain.StaffResource(10, "Anna"),
			Date:            testDate(),
			StartTime:       "10:00",
			DurationMinutes: 60,
		})

		assert.ErrorIs(t, err, ErrInternal)
	})
}

func TestDetector_SpotsLeft(t *testing.T) {
	ctx := context.Background()

	repo := &fakeAppointmentRepo{appointments: []*domain.Appointment{
		{ID: 1, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
		{ID: 2, StartTime: "10:30", DurationMinutes: 60, Status: domain.StatusPending},
	}}
	d := NewDetector(repo, nopLogger{})

	point := domain.ServicePointResource(5, "Box 1", 3)

	t.Run("counts peak occupancy within window", func(t *testing.T) {
		spots, err := d.SpotsLeft(ctx, CheckRequest{
			BusinessID:      1,
			Resource:        point,
			Date:            testDate(),
			StartTime:       "10:30",
			DurationMinutes: 30,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, spots)
	})

	t.Run("free window has full capacity", func(t *testing.T) {
		spots, err := d.SpotsLeft(ctx, CheckRequest{
			BusinessID:      1,
			Resource:        point,
			Date:            testDate(),
			StartTime:       "14:00",
			DurationMinutes: 60,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, spots)
	})

	t.Run("inactive resource has zero spots", func(t *testing.T) {
		resource := point
		resource.IsActive = false

		spots, err := d.SpotsLeft(ctx, CheckRequest{
			BusinessID:      1,
			Resource:        resource,
			Date:            testDate(),
			StartTime:       "14:00",
			DurationMinutes: 60,
		})
		require.NoError(t, err)
		assert.Equal(t, 0, spots)
	})
}
