package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeString
		wantErr error
	}{
		{name: "valid morning", input: "09:30", want: "09:30"},
		{name: "midnight", input: "00:00", want: "00:00"},
		{name: "end of day marker", input: "24:00", want: "24:00"},
		{name: "last minute", input: "23:59", want: "23:59"},
		{name: "hours out of range", input: "25:00", wantErr: ErrInvalidTimeString},
		{name: "minutes out of range", input: "10:61", wantErr: ErrInvalidTimeString},
		{name: "garbage", input: "abc", wantErr: ErrInvalidTimeString},
		{name: "empty", input: "", wantErr: ErrInvalidTimeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_Minutes(t *testing.T) {
	assert.Equal(t, 0, TimeString("00:00").Minutes())
	assert.Equal(t, 570, TimeString("09:30").Minutes())
	assert.Equal(t, 1439, TimeString("23:59").Minutes())
	assert.Equal(t, 1440, TimeString("24:00").Minutes())
}

func TestTimeString_AddMinutes(t *testing.T) {
	t.Run("within day", func(t *testing.T) {
		got, err := TimeString("09:30").AddMinutes(45)
		require.NoError(t, err)
		assert.Equal(t, TimeString("10:15"), got)
	})

	t.Run("lands exactly on midnight", func(t *testing.T) {
		got, err := TimeString("23:00").AddMinutes(60)
		require.NoError(t, err)
		assert.Equal(t, TimeString("24:00"), got)
	})

	t.Run("crosses midnight", func(t *testing.T) {
		_, err := TimeString("23:30").AddMinutes(45)
		assert.ErrorIs(t, err, ErrCrossesMidnight)
	})

	t.Run("negative shift rejected", func(t *testing.T) {
		_, err := TimeString("10:00").AddMinutes(-15)
		assert.ErrorIs(t, err, ErrCrossesMidnight)
	})
}

func TestTimeString_Comparisons(t *testing.T) {
	a := TimeString("09:00")
	b := TimeString("10:00")

	assert.True(t, a.IsBefore(b))
	assert.False(t, b.IsBefore(a))
	assert.True(t, b.IsAfter(a))
	assert.True(t, a.Equal(TimeString("09:00")))
	assert.False(t, a.Equal(b))
}

func TestTimeString_Scan(t *testing.T) {
	t.Run("postgres time with seconds", func(t *testing.T) {
		var ts TimeString
		require.NoError(t, ts.Scan("14:30:00"))
		assert.Equal(t, TimeString("14:30"), ts)
	})

	t.Run("bytes", func(t *testing.T) {
		var ts TimeString
		require.NoError(t, ts.Scan([]byte("08:15:00")))
		assert.Equal(t, TimeString("08:15"), ts)
	})

	t.Run("time.Time", func(t *testing.T) {
		var ts TimeString
		require.NoError(t, ts.Scan(time.Date(2026, 3, 1, 11, 45, 0, 0, time.UTC)))
		assert.Equal(t, TimeString("11:45"), ts)
	})

	t.Run("unsupported type", func(t *testing.T) {
		var ts TimeString
		assert.Error(t, ts.Scan(42))
	})
}

func TestTimeString_Value(t *testing.T) {
	v, err := TimeString("10:30").Value()
	require.NoError(t, err)
	assert.Equal(t, "10:30", v)
}
