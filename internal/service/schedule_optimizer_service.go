package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusworks/timetable-api/internal/dto"
	"github.com/campusworks/timetable-api/internal/models"
	appErrors "github.com/campusworks/timetable-api/pkg/errors"
)

type courseCatalog interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Course, error)
}

// CourseComparator orders candidate courses before greedy section assignment.
type CourseComparator func(a, b models.Course) bool

// DifficultyAscending is the default priority rule: easier courses commit
// their sections first. Equal tiers keep the caller's order.
func DifficultyAscending(a, b models.Course) bool {
	return a.Difficulty.Level() < b.Difficulty.Level()
}

// ScheduleOptimizerConfig governs optimizer behaviour.
type ScheduleOptimizerConfig struct {
	MaxCourses      int
	MaxAlternatives int
	CacheTTL        time.Duration
}

// ScheduleOptimizerService runs the greedy timetable optimization pipeline.
type ScheduleOptimizerService struct {
	catalog   courseCatalog
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ScheduleOptimizerConfig

	compare CourseComparator
	newID   func() string
	now     func() time.Time
}

// OptimizerOption customises optimizer construction.
type OptimizerOption func(*ScheduleOptimizerService)

// WithCourseOrder swaps the greedy assignment priority rule.
func WithCourseOrder(cmp CourseComparator) OptimizerOption {
	return func(s *ScheduleOptimizerService) {
		if cmp != nil {
			s.compare = cmp
		}
	}
}

// WithIDGenerator overrides schedule id generation, mainly for deterministic tests.
func WithIDGenerator(gen func() string) OptimizerOption {
	return func(s *ScheduleOptimizerService) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) OptimizerOption {
	return func(s *ScheduleOptimizerService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScheduleOptimizerService wires optimizer dependencies. The catalog,
// cache and metrics collaborators are optional.
func NewScheduleOptimizerService(
	catalog courseCatalog,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScheduleOptimizerConfig,
	opts ...OptimizerOption,
) *ScheduleOptimizerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxCourses <= 0 {
		cfg.MaxCourses = 20
	}
	if cfg.MaxAlternatives <= 0 || cfg.MaxAlternatives > 2 {
		cfg.MaxAlternatives = 2
	}
	s := &ScheduleOptimizerService{
		catalog:   catalog,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		compare:   DifficultyAscending,
		newID:     uuid.NewString,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Optimize builds the primary schedule plus ranked alternatives for the
// student's candidate courses. The boolean reports whether the result was
// served from cache.
func (s *ScheduleOptimizerService) Optimize(ctx context.Context, req dto.OptimizeScheduleRequest) (*dto.ScheduleOptimization, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid optimization payload")
	}

	courses, err := s.resolveCourses(ctx, req)
	if err != nil {
		return nil, false, err
	}
	if len(courses) == 0 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "at least one candidate course is required")
	}
	if len(courses) > s.cfg.MaxCourses {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("candidate list exceeds the supported maximum of %d courses", s.cfg.MaxCourses))
	}

	cacheKey := optimizationCacheKey(req)
	if s.cache.Enabled() {
		var cached dto.ScheduleOptimization
		if hit, cacheErr := s.cache.Get(ctx, cacheKey, &cached); cacheErr == nil && hit {
			return &cached, true, nil
		}
	}

	compiled, err := compileCourses(courses)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	prefWindows, err := compileConstraints(req.Constraints)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	start := s.now()
	result := s.optimize(req.StudentID, compiled, req.Constraints, prefWindows, s.alternativeCount(req))
	if s.metrics != nil {
		s.metrics.ObserveOptimization(time.Since(start))
	}

	s.logger.Info("schedule optimized",
		zap.String("student_id", req.StudentID),
		zap.Int("candidates", len(courses)),
		zap.Int("scheduled", len(result.Schedule.Courses)),
		zap.Int("conflicts", len(result.Schedule.Conflicts)),
		zap.Int("score", result.OverallScore),
	)

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, result, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("failed to cache optimization", zap.Error(err))
		}
	}
	return result, false, nil
}

func (s *ScheduleOptimizerService) alternativeCount(req dto.OptimizeScheduleRequest) int {
	count := s.cfg.MaxAlternatives
	if req.MaxAlternatives != nil {
		count = *req.MaxAlternatives
	}
	if count < 0 {
		count = 0
	}
	if count > 2 {
		count = 2
	}
	return count
}

func (s *ScheduleOptimizerService) resolveCourses(ctx context.Context, req dto.OptimizeScheduleRequest) ([]models.Course, error) {
	courses := make([]models.Course, 0, len(req.Courses)+len(req.CourseIDs))
	seen := make(map[string]bool, len(req.Courses))
	for _, course := range req.Courses {
		if seen[course.ID] {
			continue
		}
		seen[course.ID] = true
		courses = append(courses, course)
	}

	var missing []string
	for _, id := range req.CourseIDs {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return courses, nil
	}
	if s.catalog == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "courseIds require a catalog backend; supply courses inline")
	}

	fetched, err := s.catalog.ListByIDs(ctx, missing)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses from catalog")
	}
	found := make(map[string]bool, len(fetched))
	for _, course := range fetched {
		found[course.ID] = true
		if !seen[course.ID] {
			seen[course.ID] = true
			courses = append(courses, course)
		}
	}
	for _, id := range missing {
		if !found[id] {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %s not found in catalog", id))
		}
	}
	return courses, nil
}

// --- Pipeline ---

type compiledSlot struct {
	day models.Weekday
	iv  interval
	src models.TimeSlot
}

type compiledSection struct {
	section models.Section
	slots   []compiledSlot
}

type compiledCourse struct {
	course   models.Course
	sections []compiledSection
}

func compileCourses(courses []models.Course) ([]compiledCourse, error) {
	compiled := make([]compiledCourse, 0, len(courses))
	for _, course := range courses {
		cc := compiledCourse{course: course, sections: make([]compiledSection, 0, len(course.Sections))}
		for _, section := range course.Sections {
			cs := compiledSection{section: section, slots: make([]compiledSlot, 0, len(section.TimeSlots))}
			for _, slot := range section.TimeSlots {
				day, ok := models.ParseWeekday(string(slot.Day))
				if !ok {
					return nil, fmt.Errorf("course %s section %s: unknown weekday %q", course.ID, section.ID, slot.Day)
				}
				start, err := parseClock(slot.StartTime)
				if err != nil {
					return nil, fmt.Errorf("course %s section %s: %v", course.ID, section.ID, err)
				}
				end, err := parseClock(slot.EndTime)
				if err != nil {
					return nil, fmt.Errorf("course %s section %s: %v", course.ID, section.ID, err)
				}
				if end <= start {
					return nil, fmt.Errorf("course %s section %s: slot must end after it starts (%s-%s)", course.ID, section.ID, slot.StartTime, slot.EndTime)
				}
				cs.slots = append(cs.slots, compiledSlot{day: day, iv: interval{start: start, end: end}, src: slot})
			}
			cc.sections = append(cc.sections, cs)
		}
		compiled = append(compiled, cc)
	}
	return compiled, nil
}

func compileConstraints(cons *dto.Constraints) ([]timeWindow, error) {
	if cons == nil {
		return nil, nil
	}
	windows := make([]timeWindow, 0, len(cons.PreferredTimeSlots))
	for _, raw := range cons.PreferredTimeSlots {
		window, err := parseTimeWindow(raw)
		if err != nil {
			return nil, err
		}
		windows = append(windows, window)
	}
	return windows, nil
}

func (s *ScheduleOptimizerService) optimize(
	studentID string,
	compiled []compiledCourse,
	cons *dto.Constraints,
	prefWindows []timeWindow,
	alternatives int,
) *dto.ScheduleOptimization {
	ordered := make([]compiledCourse, len(compiled))
	copy(ordered, compiled)
	sort.SliceStable(ordered, func(i, j int) bool {
		return s.compare(ordered[i].course, ordered[j].course)
	})

	primary, dropped := s.buildSchedule(ordered, cons, prefWindows)

	alts := make([]dto.OptimizedSchedule, 0, alternatives)
	if alternatives >= 1 {
		morning := append(append([]timeWindow{}, prefWindows...), timeWindow{start: morningWindowStart, end: morningWindowEnd})
		alt, _ := s.buildSchedule(ordered, cons, morning)
		alts = append(alts, alt)
	}
	if alternatives >= 2 {
		afternoon := append(append([]timeWindow{}, prefWindows...), timeWindow{start: afternoonWindowStart, end: afternoonWindowEnd})
		alt, _ := s.buildSchedule(ordered, cons, afternoon)
		alts = append(alts, alt)
	}
	sort.SliceStable(alts, func(i, j int) bool {
		return alts[i].BalanceScore > alts[j].BalanceScore
	})

	return &dto.ScheduleOptimization{
		StudentID:       studentID,
		Schedule:        primary,
		Alternatives:    alts,
		OverallScore:    primary.BalanceScore,
		Recommendations: writeRecommendations(primary, dropped, cons),
		GeneratedAt:     s.now().UTC(),
	}
}

type scheduledEntry struct {
	course  models.Course
	section compiledSection
	hours   float64
}

// buildSchedule runs one full pass of the pipeline: greedy section
// assignment, then conflict, free-time, workload and scoring analysis.
// Dropped course titles are returned separately for the recommendation pass.
func (s *ScheduleOptimizerService) buildSchedule(ordered []compiledCourse, cons *dto.Constraints, prefWindows []timeWindow) (dto.OptimizedSchedule, []string) {
	used := make(slotGrid)
	scheduled := make([]scheduledEntry, 0, len(ordered))
	var dropped []string

	for _, course := range ordered {
		section, ok := selectSection(course, used, cons, prefWindows)
		if !ok {
			dropped = append(dropped, course.course.Title)
			continue
		}
		for _, slot := range section.slots {
			used.commit(slot.day, slot.iv)
		}
		scheduled = append(scheduled, scheduledEntry{
			course:  course.course,
			section: section,
			hours:   estimateWeeklyHours(course.course),
		})
	}

	conflicts := detectConflicts(scheduled)
	workload := distributeWorkload(scheduled)
	difficultyBalance := difficultyBalanceScore(scheduled)

	totalCredits := 0
	courses := make([]dto.ScheduledCourse, 0, len(scheduled))
	for _, entry := range scheduled {
		totalCredits += entry.course.Credits
		courses = append(courses, dto.ScheduledCourse{
			CourseID:    entry.course.ID,
			Title:       entry.course.Title,
			Credits:     entry.course.Credits,
			Difficulty:  entry.course.Difficulty,
			Section:     entry.section.section,
			WeeklyHours: round2(entry.hours),
		})
	}

	return dto.OptimizedSchedule{
		ID:                s.newID(),
		Courses:           courses,
		TotalCredits:      totalCredits,
		BalanceScore:      balanceScore(len(conflicts), workload.Balanced, difficultyBalance, totalCredits),
		DifficultyBalance: round2(difficultyBalance),
		Conflicts:         conflicts,
		FreeTime:          calculateFreeTime(scheduled),
		Workload:          workload,
	}, dropped
}

// selectSection picks the highest-scoring section that passes the hard
// filters. The collision pre-filter only rejects exact (day, start, end)
// repeats; partial overlaps are left for the authoritative conflict scan.
func selectSection(course compiledCourse, used slotGrid, cons *dto.Constraints, prefWindows []timeWindow) (compiledSection, bool) {
	var best compiledSection
	bestScore := -1.0

	for _, candidate := range course.sections {
		if sectionCollides(candidate, used) {
			continue
		}
		if cons != nil && len(cons.PreferredDays) > 0 && !meetsPreferredDay(candidate, cons.PreferredDays) {
			continue
		}
		if cons != nil && professorAvoided(candidate.section.Professor, cons.AvoidProfessors) {
			continue
		}

		score := scoreSection(candidate, prefWindows)
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}

	if bestScore < 0 {
		return compiledSection{}, false
	}
	return best, true
}

func sectionCollides(section compiledSection, used slotGrid) bool {
	for _, slot := range section.slots {
		if used.hasExact(slot.day, slot.iv) {
			return true
		}
	}
	return false
}

func meetsPreferredDay(section compiledSection, preferred []models.Weekday) bool {
	for _, slot := range section.slots {
		for _, day := range preferred {
			if slot.day == day {
				return true
			}
		}
	}
	return false
}

func professorAvoided(professor string, avoid []string) bool {
	for _, name := range avoid {
		if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(professor)) {
			return true
		}
	}
	return false
}

func scoreSection(section compiledSection, prefWindows []timeWindow) float64 {
	score := 50.0

	score += math.Min(float64(section.section.SeatsAvailable)/5, 20)

	switch section.section.Format {
	case models.FormatHybrid:
		score += 15
	case models.FormatOnline:
		score += 10
	}

	for _, slot := range section.slots {
		if slot.iv.start >= morningWindowStart && slot.iv.start < morningWindowEnd {
			score += 10
			break
		}
	}

	for _, window := range prefWindows {
		matched := false
		for _, slot := range section.slots {
			if window.contains(slot.iv.start) {
				score += 10
				matched = true
				break
			}
		}
		if matched {
			break
		}
	}

	return score
}

// detectConflicts is the authoritative pairwise scan over every scheduled
// slot combination, independent of the selector's coarse pre-filter.
func detectConflicts(scheduled []scheduledEntry) []dto.Conflict {
	conflicts := make([]dto.Conflict, 0)
	for i := 0; i < len(scheduled); i++ {
		for j := i + 1; j < len(scheduled); j++ {
			for _, a := range scheduled[i].section.slots {
				for _, b := range scheduled[j].section.slots {
					if a.day != b.day {
						continue
					}
					switch classifyOverlap(a.iv, b.iv) {
					case overlapDirect:
						conflicts = append(conflicts, dto.Conflict{
							CourseA:  scheduled[i].course.Title,
							CourseB:  scheduled[j].course.Title,
							Kind:     dto.ConflictDirect,
							Severity: "high",
						})
					case overlapBackToBack:
						conflicts = append(conflicts, dto.Conflict{
							CourseA:  scheduled[i].course.Title,
							CourseB:  scheduled[j].course.Title,
							Kind:     dto.ConflictBackToBack,
							Severity: "medium",
						})
					}
				}
			}
		}
	}
	return conflicts
}

// calculateFreeTime reports inter-class gaps of at least thirty minutes for
// each school day, or the whole 08:00-18:00 window when no class meets.
func calculateFreeTime(scheduled []scheduledEntry) []dto.FreeTimeBlock {
	blocks := make([]dto.FreeTimeBlock, 0)
	for _, day := range models.SchoolDays {
		var intervals []interval
		for _, entry := range scheduled {
			for _, slot := range entry.section.slots {
				if slot.day == day {
					intervals = append(intervals, slot.iv)
				}
			}
		}

		if len(intervals) == 0 {
			blocks = append(blocks, dto.FreeTimeBlock{
				Day:             day,
				StartTime:       formatClock(freeDayStart),
				EndTime:         formatClock(freeDayEnd),
				DurationMinutes: freeDayEnd - freeDayStart,
			})
			continue
		}

		sort.Slice(intervals, func(i, j int) bool {
			return intervals[i].start < intervals[j].start
		})
		for i := 0; i < len(intervals)-1; i++ {
			gap := intervals[i+1].start - intervals[i].end
			if gap >= minFreeGapMinutes {
				blocks = append(blocks, dto.FreeTimeBlock{
					Day:             day,
					StartTime:       formatClock(intervals[i].end),
					EndTime:         formatClock(intervals[i+1].start),
					DurationMinutes: gap,
				})
			}
		}
	}
	return blocks
}

// estimateWeeklyHours derives study hours from credits and difficulty tier.
func estimateWeeklyHours(course models.Course) float64 {
	return float64(course.Credits) * 3 * course.Difficulty.WorkloadMultiplier()
}

// distributeWorkload spreads each course's weekly hours over the days it
// meets. The per-day share always divides by seven, matching the legacy
// amortization convention the balance scoring assumes.
func distributeWorkload(scheduled []scheduledEntry) dto.WorkloadDistribution {
	days := make(map[models.Weekday]float64, len(models.SchoolDays))
	for _, day := range models.SchoolDays {
		days[day] = 0
	}
	weekend := 0.0
	total := 0.0

	for _, entry := range scheduled {
		perDay := entry.hours / 7
		total += entry.hours

		meets := make(map[models.Weekday]bool)
		for _, slot := range entry.section.slots {
			meets[slot.day] = true
		}
		for day := range meets {
			if day.IsWeekend() {
				weekend += perDay
				continue
			}
			days[day] += perDay
		}
	}

	average := 0.0
	for _, day := range models.SchoolDays {
		average += days[day]
	}
	average /= float64(len(models.SchoolDays))

	balanced := true
	if average > 0 {
		for _, day := range models.SchoolDays {
			if days[day] > 1.5*average {
				balanced = false
				break
			}
		}
	}

	for day, hours := range days {
		days[day] = round2(hours)
	}

	return dto.WorkloadDistribution{
		Days:        days,
		Weekend:     round2(weekend),
		WeeklyTotal: round2(total),
		Balanced:    balanced,
	}
}

// difficultyBalanceScore maps difficulty spread onto 0-100 via population
// variance of the tier levels.
func difficultyBalanceScore(scheduled []scheduledEntry) float64 {
	if len(scheduled) == 0 {
		return 100
	}
	mean := 0.0
	for _, entry := range scheduled {
		mean += float64(entry.course.Difficulty.Level())
	}
	mean /= float64(len(scheduled))

	variance := 0.0
	for _, entry := range scheduled {
		diff := float64(entry.course.Difficulty.Level()) - mean
		variance += diff * diff
	}
	variance /= float64(len(scheduled))

	return math.Max(100-variance*30, 0)
}

// balanceScore folds conflicts, workload evenness, difficulty spread and
// credit load into a single 0-100 quality figure.
func balanceScore(conflictCount int, workloadBalanced bool, difficultyBalance float64, totalCredits int) int {
	score := 100.0
	score -= 20 * float64(conflictCount)
	if workloadBalanced {
		score += 10
	}
	score += difficultyBalance * 0.2
	if totalCredits > 18 {
		score -= 5 * float64(totalCredits-18)
	}

	score = math.Round(score)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(score)
}

// writeRecommendations evaluates the deterministic guidance rules in order.
func writeRecommendations(schedule dto.OptimizedSchedule, dropped []string, cons *dto.Constraints) []string {
	recs := make([]string, 0, 4)

	if n := len(schedule.Conflicts); n > 0 {
		recs = append(recs, fmt.Sprintf("Resolve %d scheduling conflict(s) by choosing alternative sections or courses.", n))
	}
	if len(dropped) > 0 {
		recs = append(recs, fmt.Sprintf("No compatible section was found for %s; consider other courses or relaxed constraints.", strings.Join(dropped, ", ")))
	}
	if !schedule.Workload.Balanced {
		recs = append(recs, "Redistribute course load to avoid overloaded days.")
	}
	if schedule.TotalCredits > 18 {
		recs = append(recs, fmt.Sprintf("Consider reducing your %d-credit load for a more manageable semester.", schedule.TotalCredits))
	}
	if schedule.DifficultyBalance < 60 {
		recs = append(recs, "Mix in easier electives to balance course difficulty.")
	}
	var heavy []string
	for _, day := range models.SchoolDays {
		if schedule.Workload.Days[day] > 8 {
			heavy = append(heavy, string(day))
		}
	}
	if len(heavy) > 0 {
		recs = append(recs, fmt.Sprintf("Heavy workload on %s; consider spreading classes more evenly.", strings.Join(heavy, ", ")))
	}
	if cons != nil && cons.AvailableTime > 0 && schedule.Workload.WeeklyTotal > cons.AvailableTime {
		recs = append(recs, fmt.Sprintf("Estimated workload of %.1f hours exceeds your available %.1f hours per week.", schedule.Workload.WeeklyTotal, cons.AvailableTime))
	}

	if len(recs) == 0 {
		recs = append(recs, "Your schedule looks well balanced. Good luck this semester!")
	}
	return recs
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// optimizationCacheKey hashes the canonical request payload so identical
// requests share one cached result.
func optimizationCacheKey(req dto.OptimizeScheduleRequest) string {
	payload, err := json.Marshal(req)
	if err != nil {
		return "timetable:optimize:unkeyed"
	}
	sum := sha256.Sum256(payload)
	return "timetable:optimize:" + hex.EncodeToString(sum[:])
}
