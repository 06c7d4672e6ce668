package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/timetable-api/internal/models"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		raw     string
		minutes int
		ok      bool
	}{
		{"00:00", 0, true},
		{"08:05", 485, true},
		{"23:59", 1439, true},
		{" 09:30 ", 570, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"9am", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		minutes, err := parseClock(tc.raw)
		if tc.ok {
			require.NoError(t, err, tc.raw)
			assert.Equal(t, tc.minutes, minutes, tc.raw)
		} else {
			assert.Error(t, err, tc.raw)
		}
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "08:00", formatClock(480))
	assert.Equal(t, "13:05", formatClock(785))
	assert.Equal(t, "00:00", formatClock(0))
}

func TestClassifyOverlap(t *testing.T) {
	a := interval{start: 540, end: 630} // 09:00-10:30

	assert.Equal(t, overlapDirect, classifyOverlap(a, interval{start: 600, end: 690}))
	assert.Equal(t, overlapDirect, classifyOverlap(a, interval{start: 500, end: 541}))
	// touching intervals leave a zero-minute gap
	assert.Equal(t, overlapBackToBack, classifyOverlap(a, interval{start: 630, end: 690}))
	// fifteen minutes is still back-to-back, sixteen is not
	assert.Equal(t, overlapBackToBack, classifyOverlap(a, interval{start: 645, end: 700}))
	assert.Equal(t, overlapNone, classifyOverlap(a, interval{start: 646, end: 700}))
	assert.Equal(t, overlapBackToBack, classifyOverlap(interval{start: 645, end: 700}, a))
}

func TestParseTimeWindow(t *testing.T) {
	window, err := parseTimeWindow("09:00-12:00")
	require.NoError(t, err)
	assert.True(t, window.contains(540))
	assert.True(t, window.contains(719))
	assert.False(t, window.contains(720))
	assert.False(t, window.contains(539))

	_, err = parseTimeWindow("12:00-09:00")
	assert.Error(t, err)
	_, err = parseTimeWindow("morning")
	assert.Error(t, err)
}

func TestSlotGridExactMatchOnly(t *testing.T) {
	grid := make(slotGrid)
	grid.commit(models.Monday, interval{start: 540, end: 630})

	assert.True(t, grid.hasExact(models.Monday, interval{start: 540, end: 630}))
	// partial overlap is not an exact repeat
	assert.False(t, grid.hasExact(models.Monday, interval{start: 540, end: 600}))
	assert.False(t, grid.hasExact(models.Tuesday, interval{start: 540, end: 630}))
}
