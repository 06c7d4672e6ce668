package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/campusworks/timetable-api/internal/models"
)

// CourseCatalogRepository reads the course catalog that feeds the optimizer.
type CourseCatalogRepository struct {
	db *sqlx.DB
}

// NewCourseCatalogRepository creates a new repository instance.
func NewCourseCatalogRepository(db *sqlx.DB) *CourseCatalogRepository {
	return &CourseCatalogRepository{db: db}
}

type courseRow struct {
	ID         string `db:"id"`
	Title      string `db:"title"`
	Credits    int    `db:"credits"`
	Difficulty string `db:"difficulty"`
}

type sectionRow struct {
	ID             string `db:"id"`
	CourseID       string `db:"course_id"`
	Professor      string `db:"professor"`
	Format         string `db:"format"`
	SeatsAvailable int    `db:"seats_available"`
}

type timeSlotRow struct {
	SectionID string `db:"section_id"`
	Day       string `db:"day"`
	StartTime string `db:"start_time"`
	EndTime   string `db:"end_time"`
}

// List returns catalog courses matching filters with pagination metadata.
func (r *CourseCatalogRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	base := "FROM courses WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(id) LIKE $%d OR LOWER(title) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Difficulty != "" {
		conditions = append(conditions, fmt.Sprintf("difficulty = $%d", len(args)+1))
		args = append(args, string(filter.Difficulty))
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, title, credits, difficulty %s ORDER BY title ASC LIMIT %d OFFSET %d", base, size, offset)
	var rows []courseRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	courses, err := r.attachSections(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// ListByIDs loads full courses, sections and weekly slots for the given ids.
// Unknown ids are simply absent from the result.
func (r *CourseCatalogRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In("SELECT id, title, credits, difficulty FROM courses WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("build course query: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []courseRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select courses: %w", err)
	}

	return r.attachSections(ctx, rows)
}

func (r *CourseCatalogRepository) attachSections(ctx context.Context, rows []courseRow) ([]models.Course, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	courseIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		courseIDs = append(courseIDs, row.ID)
	}

	query, args, err := sqlx.In("SELECT id, course_id, professor, format, seats_available FROM course_sections WHERE course_id IN (?) ORDER BY id ASC", courseIDs)
	if err != nil {
		return nil, fmt.Errorf("build section query: %w", err)
	}
	query = r.db.Rebind(query)

	var sections []sectionRow
	if err := r.db.SelectContext(ctx, &sections, query, args...); err != nil {
		return nil, fmt.Errorf("select course sections: %w", err)
	}

	slotsBySection := make(map[string][]models.TimeSlot)
	if len(sections) > 0 {
		sectionIDs := make([]string, 0, len(sections))
		for _, section := range sections {
			sectionIDs = append(sectionIDs, section.ID)
		}

		query, args, err = sqlx.In("SELECT section_id, day, start_time, end_time FROM section_time_slots WHERE section_id IN (?) ORDER BY section_id, day, start_time", sectionIDs)
		if err != nil {
			return nil, fmt.Errorf("build slot query: %w", err)
		}
		query = r.db.Rebind(query)

		var slots []timeSlotRow
		if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
			return nil, fmt.Errorf("select section time slots: %w", err)
		}
		for _, slot := range slots {
			day, ok := models.ParseWeekday(slot.Day)
			if !ok {
				return nil, fmt.Errorf("section %s has unknown weekday %q", slot.SectionID, slot.Day)
			}
			slotsBySection[slot.SectionID] = append(slotsBySection[slot.SectionID], models.TimeSlot{
				Day:       day,
				StartTime: slot.StartTime,
				EndTime:   slot.EndTime,
			})
		}
	}

	sectionsByCourse := make(map[string][]models.Section)
	for _, section := range sections {
		sectionsByCourse[section.CourseID] = append(sectionsByCourse[section.CourseID], models.Section{
			ID:             section.ID,
			Professor:      section.Professor,
			Format:         models.DeliveryFormat(section.Format),
			SeatsAvailable: section.SeatsAvailable,
			TimeSlots:      slotsBySection[section.ID],
		})
	}

	courses := make([]models.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, models.Course{
			ID:         row.ID,
			Title:      row.Title,
			Credits:    row.Credits,
			Difficulty: models.Difficulty(row.Difficulty),
			Sections:   sectionsByCourse[row.ID],
		})
	}
	return courses, nil
}
