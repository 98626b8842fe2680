package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResource_Capacity(t *testing.T) {
	assert.Equal(t, 1, StaffResource(10, "Anna").Capacity())
	assert.Equal(t, 1, BusinessResource().Capacity())
	assert.Equal(t, 3, ServicePointResource(5, "Box 1", 3).Capacity())

	t.Run("service point with broken capacity clamps to minimum", func(t *testing.T) {
		assert.Equal(t, MinConcurrentSlots, ServicePointResource(5, "Box 1", 0).Capacity())
	})
}

func TestResource_IsBookable(t *testing.T) {
	assert.True(t, StaffResource(10, "Anna").IsBookable())
	assert.True(t, BusinessResource().IsBookable())

	inactive := StaffResource(10, "Anna")
	inactive.IsActive = false
	assert.False(t, inactive.IsBookable())
}

func TestResource_StorageAndLockKeys(t *testing.T) {
	t.Run("staff", func(t *testing.T) {
		r := StaffResource(42, "Anna")
		assert.Equal(t, int64(42), r.KeyID())
		require.NotNil(t, r.StorageID())
		assert.Equal(t, int64(42), *r.StorageID())
	})

	t.Run("business fallback", func(t *testing.T) {
		r := BusinessResource()
		assert.Equal(t, int64(0), r.KeyID())
		assert.Nil(t, r.StorageID())
	})
}

func TestAppointment_StatusGuards(t *testing.T) {
	tests := []struct {
		status        AppointmentStatus
		occupies      bool
		terminal      bool
		canCancel     bool
		canReschedule bool
	}{
		{StatusPending, true, false, true, true},
		{StatusConfirmed, true, false, true, true},
		{StatusCompleted, false, true, false, false},
		{StatusCancelled, false, true, false, false},
		{StatusNoShow, false, true, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			a := &Appointment{Status: tt.status}
			assert.Equal(t, tt.occupies, a.OccupiesCapacity())
			assert.Equal(t, tt.terminal, a.IsTerminal())
			assert.Equal(t, tt.canCancel, a.CanBeCancelled())
			assert.Equal(t, tt.canReschedule, a.CanBeRescheduled())
		})
	}
}
