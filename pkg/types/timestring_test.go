package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString("10:30")
	require.NoError(t, err)
	assert.Equal(t, "10:30", ts.String())

	_, err = NewTimeStringFromString("25:00")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = NewTimeStringFromString("10:30:00")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = NewTimeStringFromString("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestTimeString_Minutes(t *testing.T) {
	ts := TimeString("10:30")
	minutes, err := ts.Minutes()
	require.NoError(t, err)
	assert.Equal(t, 630, minutes)

	midnight := TimeString("00:00")
	minutes, err = midnight.Minutes()
	require.NoError(t, err)
	assert.Equal(t, 0, minutes)
}

func TestTimeString_AddMinutes(t *testing.T) {
	ts := TimeString("10:30")

	result, err := ts.AddMinutes(45)
	require.NoError(t, err)
	assert.Equal(t, TimeString("11:15"), result)

	result, err = ts.AddMinutes(0)
	require.NoError(t, err)
	assert.Equal(t, TimeString("10:30"), result)

	// Выход за пределы суток
	_, err = TimeString("23:30").AddMinutes(60)
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = ts.AddMinutes(-700)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestTimeString_Comparisons(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore(TimeString("10:00")))
	assert.False(t, TimeString("10:00").IsBefore(TimeString("10:00")))
	assert.True(t, TimeString("10:01").IsAfter(TimeString("10:00")))
	assert.False(t, TimeString("10:00").IsAfter(TimeString("10:00")))
}

func TestTimeString_At(t *testing.T) {
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	at, err := TimeString("10:30").At(date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 15, 10, 30, 0, 0, time.UTC), at)
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	// Драйвер может вернуть TIME как строку с секундами
	require.NoError(t, ts.Scan("10:00:00"))
	assert.Equal(t, TimeString("10:00"), ts)

	require.NoError(t, ts.Scan([]byte("14:45:00")))
	assert.Equal(t, TimeString("14:45"), ts)

	require.NoError(t, ts.Scan(time.Date(2026, 9, 15, 9, 15, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("09:15"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	err := ts.Scan(42)
	assert.ErrorIs(t, err, ErrInvalidScanValue)
}

func TestTimeString_Value(t *testing.T) {
	v, err := TimeString("10:30").Value()
	require.NoError(t, err)
	assert.Equal(t, "10:30", v)

	_, err = TimeString("garbage").Value()
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
