package dto

import (
	"time"

	"github.com/campusworks/timetable-api/internal/models"
)

// Constraints holds caller-supplied soft preferences for the optimizer.
type Constraints struct {
	PreferredDays      []models.Weekday `json:"preferredDays" validate:"omitempty,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	AvoidProfessors    []string         `json:"avoidProfessors"`
	PreferredTimeSlots []string         `json:"preferredTimeSlots"`
	Budget             float64          `json:"budget" validate:"omitempty,min=0"`
	AvailableTime      float64          `json:"availableTime" validate:"omitempty,min=0"`
}

// OptimizeScheduleRequest asks for a conflict-minimised weekly timetable.
// Courses may be supplied inline, referenced by catalog id, or both.
type OptimizeScheduleRequest struct {
	StudentID       string          `json:"studentId" validate:"required"`
	Courses         []models.Course `json:"courses" validate:"omitempty,dive"`
	CourseIDs       []string        `json:"courseIds" validate:"omitempty,dive,required"`
	Constraints     *Constraints    `json:"constraints" validate:"omitempty"`
	MaxAlternatives *int            `json:"maxAlternatives" validate:"omitempty,min=0,max=2"`
}

// ConflictKind distinguishes overlap severity classes.
type ConflictKind string

const (
	ConflictDirect     ConflictKind = "direct"
	ConflictBackToBack ConflictKind = "back-to-back"
)

// Conflict reports two scheduled courses whose meetings collide.
type Conflict struct {
	CourseA  string       `json:"courseA"`
	CourseB  string       `json:"courseB"`
	Kind     ConflictKind `json:"kind"`
	Severity string       `json:"severity"`
}

// ScheduledCourse is a course with its chosen section and workload estimate.
type ScheduledCourse struct {
	CourseID    string            `json:"courseId"`
	Title       string            `json:"title"`
	Credits     int               `json:"credits"`
	Difficulty  models.Difficulty `json:"difficulty"`
	Section     models.Section    `json:"section"`
	WeeklyHours float64           `json:"estimatedWeeklyHours"`
}

// FreeTimeBlock is an idle weekday interval of at least thirty minutes.
type FreeTimeBlock struct {
	Day             models.Weekday `json:"day"`
	StartTime       string         `json:"startTime"`
	EndTime         string         `json:"endTime"`
	DurationMinutes int            `json:"durationMinutes"`
}

// WorkloadDistribution apportions weekly study hours across days.
type WorkloadDistribution struct {
	Days        map[models.Weekday]float64 `json:"days"`
	Weekend     float64                    `json:"weekend"`
	WeeklyTotal float64                    `json:"weeklyTotal"`
	Balanced    bool                       `json:"balanced"`
}

// OptimizedSchedule aggregates one complete timetable and its diagnostics.
type OptimizedSchedule struct {
	ID                string               `json:"id"`
	Courses           []ScheduledCourse    `json:"courses"`
	TotalCredits      int                  `json:"totalCredits"`
	BalanceScore      int                  `json:"balanceScore"`
	DifficultyBalance float64              `json:"difficultyBalance"`
	Conflicts         []Conflict           `json:"conflicts"`
	FreeTime          []FreeTimeBlock      `json:"freeTime"`
	Workload          WorkloadDistribution `json:"workload"`
}

// ScheduleOptimization is the top-level optimizer result.
type ScheduleOptimization struct {
	StudentID       string              `json:"studentId"`
	Schedule        OptimizedSchedule   `json:"schedule"`
	Alternatives    []OptimizedSchedule `json:"alternatives"`
	OverallScore    int                 `json:"overallScore"`
	Recommendations []string            `json:"recommendations"`
	GeneratedAt     time.Time           `json:"generatedAt"`
}

// CourseListQuery filters catalog listings.
type CourseListQuery struct {
	Search     string `form:"search"`
	Difficulty string `form:"difficulty"`
	Page       int    `form:"page"`
	PageSize   int    `form:"limit"`
}
