package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/campusworks/timetable-api/internal/models"
)

const (
	freeDayStart = 8 * 60  // 08:00
	freeDayEnd   = 18 * 60 // 18:00

	backToBackGapMinutes = 15
	minFreeGapMinutes    = 30

	morningWindowStart   = 9 * 60
	morningWindowEnd     = 12 * 60
	afternoonWindowStart = 13 * 60
	afternoonWindowEnd   = 17 * 60
)

type overlapKind int

const (
	overlapNone overlapKind = iota
	overlapBackToBack
	overlapDirect
)

// interval is a same-day time range in minutes from midnight, start < end.
type interval struct {
	start int
	end   int
}

// parseClock converts a wall-clock "HH:MM" string into minutes from midnight.
func parseClock(raw string) (int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("time %q is not in HH:MM format", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("time %q has an invalid hour", raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("time %q has invalid minutes", raw)
	}
	return hours*60 + minutes, nil
}

// formatClock renders minutes from midnight back into "HH:MM".
func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// classifyOverlap grades two same-day intervals: direct when the ranges
// intersect, back-to-back when they leave at most fifteen minutes between
// them, none otherwise.
func classifyOverlap(a, b interval) overlapKind {
	if a.start < b.end && a.end > b.start {
		return overlapDirect
	}
	if absInt(a.end-b.start) <= backToBackGapMinutes || absInt(b.end-a.start) <= backToBackGapMinutes {
		return overlapBackToBack
	}
	return overlapNone
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// timeWindow is a preferred daily window such as "09:00-12:00".
type timeWindow struct {
	start int
	end   int
}

func parseTimeWindow(raw string) (timeWindow, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), "-", 2)
	if len(parts) != 2 {
		return timeWindow{}, fmt.Errorf("time window %q is not in HH:MM-HH:MM format", raw)
	}
	start, err := parseClock(parts[0])
	if err != nil {
		return timeWindow{}, err
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return timeWindow{}, err
	}
	if end <= start {
		return timeWindow{}, fmt.Errorf("time window %q must end after it starts", raw)
	}
	return timeWindow{start: start, end: end}, nil
}

func (w timeWindow) contains(minute int) bool {
	return minute >= w.start && minute < w.end
}

// slotGrid accumulates committed meeting intervals per weekday. It is local
// to a single optimization run and is never shared.
type slotGrid map[models.Weekday][]interval

// hasExact reports whether the exact (day, start, end) tuple is committed.
// This is deliberately an exact match, not an overlap test: partially
// overlapping sections survive selection and surface later as conflicts.
func (g slotGrid) hasExact(day models.Weekday, iv interval) bool {
	for _, existing := range g[day] {
		if existing == iv {
			return true
		}
	}
	return false
}

func (g slotGrid) commit(day models.Weekday, iv interval) {
	g[day] = append(g[day], iv)
}
