package models

import "strings"

// Weekday names a day of the academic week.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// SchoolDays lists Monday through Friday in order.
var SchoolDays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

var weekdayIndex = map[Weekday]int{
	Monday:    1,
	Tuesday:   2,
	Wednesday: 3,
	Thursday:  4,
	Friday:    5,
	Saturday:  6,
	Sunday:    7,
}

// ParseWeekday normalises a day name into its canonical form.
func ParseWeekday(raw string) (Weekday, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	candidate := Weekday(strings.ToUpper(trimmed[:1]) + strings.ToLower(trimmed[1:]))
	if _, ok := weekdayIndex[candidate]; !ok {
		return "", false
	}
	return candidate, true
}

// Index returns the ISO weekday number (Monday=1) or 0 for unknown days.
func (d Weekday) Index() int {
	return weekdayIndex[d]
}

// IsWeekend reports whether the day falls on Saturday or Sunday.
func (d Weekday) IsWeekend() bool {
	return d == Saturday || d == Sunday
}

// Difficulty tiers order course demand from beginner to expert.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

var difficultyLevels = map[Difficulty]int{
	DifficultyBeginner:     1,
	DifficultyIntermediate: 2,
	DifficultyAdvanced:     3,
	DifficultyExpert:       4,
}

var difficultyMultipliers = map[Difficulty]float64{
	DifficultyBeginner:     0.8,
	DifficultyIntermediate: 1.0,
	DifficultyAdvanced:     1.3,
	DifficultyExpert:       1.5,
}

// Level maps the tier onto 1-4 for variance computations.
func (d Difficulty) Level() int {
	if level, ok := difficultyLevels[d]; ok {
		return level
	}
	return 2
}

// WorkloadMultiplier scales estimated study hours by tier.
func (d Difficulty) WorkloadMultiplier() float64 {
	if m, ok := difficultyMultipliers[d]; ok {
		return m
	}
	return 1.0
}

// DeliveryFormat describes how a section is taught.
type DeliveryFormat string

const (
	FormatInPerson DeliveryFormat = "in-person"
	FormatHybrid   DeliveryFormat = "hybrid"
	FormatOnline   DeliveryFormat = "online"
)

// TimeSlot is one weekly occurrence of a section.
type TimeSlot struct {
	Day       Weekday `json:"day" validate:"required"`
	StartTime string  `json:"startTime" validate:"required"`
	EndTime   string  `json:"endTime" validate:"required"`
}

// Section is one offered instance of a course.
type Section struct {
	ID             string         `json:"id" validate:"required"`
	Professor      string         `json:"professor"`
	Format         DeliveryFormat `json:"format" validate:"omitempty,oneof=in-person hybrid online"`
	SeatsAvailable int            `json:"seatsAvailable" validate:"min=0"`
	TimeSlots      []TimeSlot     `json:"timeSlots" validate:"required,min=1,dive"`
}

// Course is a candidate course together with its offered sections.
type Course struct {
	ID         string     `json:"id" validate:"required"`
	Title      string     `json:"title" validate:"required"`
	Credits    int        `json:"credits" validate:"required,min=1"`
	Difficulty Difficulty `json:"difficulty" validate:"required,oneof=beginner intermediate advanced expert"`
	Sections   []Section  `json:"sections" validate:"required,min=1,dive"`
}

// CourseFilter narrows catalog listings.
type CourseFilter struct {
	Search     string
	Difficulty Difficulty
	Page       int
	PageSize   int
}
