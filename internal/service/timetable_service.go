package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/logger"
)

type scheduleStore interface {
	AddProfessor(p models.Professor)
	Professors() []models.Professor
	AddClassroom(c models.Classroom)
	Classrooms() []models.Classroom
	AddCourse(c models.Course)
	Courses() []models.Course
	FindCourse(id int) (models.Course, bool)
	CreateLesson(lesson *models.Lesson)
	Lessons() []models.Lesson
	LessonCount() int
	ListLessons(filter models.LessonFilter) ([]models.Lesson, int)
	IndexByCourse(courseID int) int
	IndexByID(id string) int
	LessonAt(i int) models.Lesson
	SetClassroom(i int, number string) models.Lesson
	DeleteByCourse(courseID int) int
	DeleteAt(i int) models.Lesson
}

// ChangeListener is notified after every successful registry mutation.
type ChangeListener func(ctx context.Context)

// CreateProfessorRequest describes payload for adding a professor.
type CreateProfessorRequest struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// CreateClassroomRequest describes payload for adding a classroom.
type CreateClassroomRequest struct {
	Number       string `json:"number" validate:"required"`
	Capacity     int    `json:"capacity" validate:"gte=0"`
	HasProjector bool   `json:"hasProjector"`
}

// CreateCourseRequest describes payload for adding a course.
type CreateCourseRequest struct {
	ID   int    `json:"id"`
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required,coursetype"`
}

// LessonRequest describes a lesson placement. Day and slot accept any parseable spelling.
type LessonRequest struct {
	CourseID        int    `json:"courseId"`
	ProfessorID     int    `json:"professorId"`
	ClassroomNumber string `json:"classroomNumber"`
	DayOfWeek       string `json:"dayOfWeek" validate:"required,dayofweek"`
	TimeSlot        string `json:"timeSlot" validate:"required,timeslot"`
}

// BulkCreateLessonsRequest holds multiple lessons for insertion.
type BulkCreateLessonsRequest struct {
	Items          []LessonRequest `json:"items" validate:"required,min=1,dive"`
	PartialOnError bool            `json:"partialOnError"`
}

// BulkCreateLessonsResult summarises bulk insertion results.
type BulkCreateLessonsResult struct {
	Created   []models.Lesson           `json:"created"`
	Conflicts []models.ScheduleConflict `json:"conflicts,omitempty"`
}

// TimetableService is the timetable registry: professors, classrooms, courses and the
// lesson schedule, with conflict-checked placement. A single RWMutex guards all four
// collections so every check-then-act sequence is atomic.
type TimetableService struct {
	mu        sync.RWMutex
	repo      scheduleStore
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	listeners []ChangeListener
	version   atomic.Uint64
}

// NewTimetableService instantiates TimetableService.
func NewTimetableService(repo scheduleStore, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{repo: repo, validator: newValidator(validate), metrics: metrics, logger: logger}
}

// OnChange registers a listener called after each successful mutation.
func (s *TimetableService) OnChange(fn ChangeListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Version is bumped under the write lock by every mutation. Readers that capture it
// before computing can tell whether their result predates a later change.
func (s *TimetableService) Version() uint64 {
	return s.version.Load()
}

// AddProfessor appends a professor. Duplicate ids are the caller's concern.
func (s *TimetableService) AddProfessor(ctx context.Context, req CreateProfessorRequest) (*models.Professor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid professor payload")
	}
	professor := models.Professor{ID: req.ID, Name: req.Name, Department: req.Department}

	s.mu.Lock()
	s.repo.AddProfessor(professor)
	s.version.Add(1)
	s.mu.Unlock()

	s.logger.Debug("professor added", zap.Int("professor_id", professor.ID))
	s.notify(ctx)
	return &professor, nil
}

// AddClassroom appends a classroom.
func (s *TimetableService) AddClassroom(ctx context.Context, req CreateClassroomRequest) (*models.Classroom, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid classroom payload")
	}
	classroom := models.Classroom{Number: req.Number, Capacity: req.Capacity, HasProjector: req.HasProjector}

	s.mu.Lock()
	s.repo.AddClassroom(classroom)
	s.version.Add(1)
	s.mu.Unlock()

	s.logger.Debug("classroom added", zap.String("classroom", classroom.Number))
	s.notify(ctx)
	return &classroom, nil
}

// AddCourse appends a course.
func (s *TimetableService) AddCourse(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid course payload")
	}
	courseType, _ := models.ParseCourseType(req.Type)
	course := models.Course{ID: req.ID, Name: req.Name, Type: courseType}

	s.mu.Lock()
	s.repo.AddCourse(course)
	s.version.Add(1)
	s.mu.Unlock()

	s.logger.Debug("course added", zap.Int("course_id", course.ID))
	s.notify(ctx)
	return &course, nil
}

// Seed loads reference data in one critical section.
func (s *TimetableService) Seed(ctx context.Context, catalog *models.Catalog) {
	if catalog == nil {
		return
	}
	s.mu.Lock()
	for _, p := range catalog.Professors {
		s.repo.AddProfessor(p)
	}
	for _, c := range catalog.Classrooms {
		s.repo.AddClassroom(c)
	}
	for _, c := range catalog.Courses {
		s.repo.AddCourse(c)
	}
	s.version.Add(1)
	s.mu.Unlock()

	s.logger.Info("catalog seeded",
		zap.Int("professors", len(catalog.Professors)),
		zap.Int("classrooms", len(catalog.Classrooms)),
		zap.Int("courses", len(catalog.Courses)))
	s.notify(ctx)
}

// ListProfessors returns professors in stored order.
func (s *TimetableService) ListProfessors(ctx context.Context) []models.Professor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.Professors()
}

// ListClassrooms returns classrooms in stored order.
func (s *TimetableService) ListClassrooms(ctx context.Context) []models.Classroom {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.Classrooms()
}

// ListCourses returns courses in stored order.
func (s *TimetableService) ListCourses(ctx context.Context) []models.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.Courses()
}

// ValidateLesson reports the first existing lesson the candidate collides with, or nil.
func (s *TimetableService) ValidateLesson(ctx context.Context, lesson models.Lesson) *models.ScheduleConflict {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findConflict(s.repo.Lessons(), lesson)
}

// AddLesson places a lesson if it collides with nothing. On conflict the schedule is untouched
// and the error wraps a *models.ScheduleConflictError describing the existing lesson.
func (s *TimetableService) AddLesson(ctx context.Context, req LessonRequest) (*models.Lesson, error) {
	lesson, err := s.lessonFromRequest(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if conflict := findConflict(s.repo.Lessons(), lesson); conflict != nil {
		s.mu.Unlock()
		return nil, s.conflictError(ctx, *conflict)
	}
	s.repo.CreateLesson(&lesson)
	count := s.repo.LessonCount()
	s.version.Add(1)
	s.mu.Unlock()

	logger.WithRequestID(ctx, s.logger).Debug("lesson added",
		zap.String("lesson_id", lesson.ID),
		zap.Int("course_id", lesson.CourseID),
		zap.String("day", string(lesson.DayOfWeek)),
		zap.String("slot", string(lesson.TimeSlot)))
	s.metrics.SetLessonsScheduled(count)
	s.notify(ctx)
	return &lesson, nil
}

// BulkAddLessons places lessons in order; each accepted item takes part in validating the next.
// Without PartialOnError the first conflict rejects the whole batch and nothing is stored.
func (s *TimetableService) BulkAddLessons(ctx context.Context, req BulkCreateLessonsRequest) (*BulkCreateLessonsResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid bulk lesson payload")
	}
	candidates := make([]models.Lesson, 0, len(req.Items))
	for _, item := range req.Items {
		lesson, err := s.lessonFromRequest(item)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, lesson)
	}

	s.mu.Lock()
	working := s.repo.Lessons()
	existing := len(working)
	var conflicts []models.ScheduleConflict
	for _, candidate := range candidates {
		if conflict := findConflict(working, candidate); conflict != nil {
			if !req.PartialOnError {
				s.mu.Unlock()
				return nil, s.conflictError(ctx, *conflict)
			}
			s.metrics.RecordConflict(conflict.Type)
			conflicts = append(conflicts, *conflict)
			continue
		}
		working = append(working, candidate)
	}
	created := make([]models.Lesson, 0, len(working)-existing)
	for _, lesson := range working[existing:] {
		s.repo.CreateLesson(&lesson)
		created = append(created, lesson)
	}
	count := s.repo.LessonCount()
	s.version.Add(1)
	s.mu.Unlock()

	s.logger.Debug("lessons bulk added", zap.Int("created", len(created)), zap.Int("conflicts", len(conflicts)))
	s.metrics.SetLessonsScheduled(count)
	if len(created) > 0 {
		s.notify(ctx)
	}
	return &BulkCreateLessonsResult{Created: created, Conflicts: conflicts}, nil
}

// GetLesson returns a lesson by its generated id.
func (s *TimetableService) GetLesson(ctx context.Context, id string) (*models.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.repo.IndexByID(id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
	}
	lesson := s.repo.LessonAt(idx)
	return &lesson, nil
}

// ListLessons returns lessons in stored order with pagination metadata.
func (s *TimetableService) ListLessons(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, *models.Pagination) {
	s.mu.RLock()
	lessons, total := s.repo.ListLessons(filter)
	s.mu.RUnlock()

	page, size, _ := filter.Window()
	return lessons, &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

// FindAvailableClassrooms lists classrooms, in stored order, with no lesson at the day/slot.
// Capacity and projector are not considered.
func (s *TimetableService) FindAvailableClassrooms(ctx context.Context, slot models.TimeSlot, day models.DayOfWeek) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	occupied := make(map[string]struct{})
	for _, l := range s.repo.Lessons() {
		if l.TimeSlot == slot && l.DayOfWeek == day {
			occupied[l.ClassroomNumber] = struct{}{}
		}
	}
	available := make([]string, 0)
	for _, c := range s.repo.Classrooms() {
		if _, busy := occupied[c.Number]; !busy {
			available = append(available, c.Number)
		}
	}
	return available
}

// GetProfessorSchedule returns the professor's lessons in stored order. Unknown ids yield an empty list.
func (s *TimetableService) GetProfessorSchedule(ctx context.Context, professorID int) []models.Lesson {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Lesson, 0)
	for _, l := range s.repo.Lessons() {
		if l.ProfessorID == professorID {
			result = append(result, l)
		}
	}
	return result
}

// GetClassroomUtilization returns lessons in the room as a percentage of the 25 weekly cells.
// The value is not capped at 100.
func (s *TimetableService) GetClassroomUtilization(ctx context.Context, classroomNumber string) float64 {
	return s.ClassroomUtilization(ctx, classroomNumber).Percentage
}

// ClassroomUtilization is GetClassroomUtilization with the raw lesson count.
func (s *TimetableService) ClassroomUtilization(ctx context.Context, classroomNumber string) models.ClassroomUtilization {
	s.mu.RLock()
	defer s.mu.RUnlock()

	occupied := 0
	for _, l := range s.repo.Lessons() {
		if l.ClassroomNumber == classroomNumber {
			occupied++
		}
	}
	return models.ClassroomUtilization{
		ClassroomNumber: classroomNumber,
		Lessons:         occupied,
		Percentage:      float64(occupied) / float64(models.WeeklySlots) * 100,
	}
}

// GetMostPopularCourseType returns the course type with most scheduled lessons.
// Ties go to the earliest type in declaration order; an empty schedule yields Lecture.
func (s *TimetableService) GetMostPopularCourseType(ctx context.Context) models.CourseType {
	return s.CourseTypePopularity(ctx).MostPopular
}

// CourseTypePopularity returns the full tally behind GetMostPopularCourseType.
func (s *TimetableService) CourseTypePopularity(ctx context.Context) models.CourseTypePopularity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make([]models.CourseTypeCount, len(models.CourseTypes))
	for i, ct := range models.CourseTypes {
		counts[i] = models.CourseTypeCount{Type: ct}
	}
	for _, l := range s.repo.Lessons() {
		course, ok := s.repo.FindCourse(l.CourseID)
		if !ok {
			continue
		}
		for i := range counts {
			if counts[i].Type == course.Type {
				counts[i].Count++
				break
			}
		}
	}

	best := counts[0]
	for _, c := range counts[1:] {
		if c.Count > best.Count {
			best = c
		}
	}
	return models.CourseTypePopularity{MostPopular: best.Type, Counts: counts}
}

// ReassignClassroom moves the FIRST lesson of the course to another room. The target
// cell is checked against every lesson, the moved one included.
func (s *TimetableService) ReassignClassroom(ctx context.Context, courseID int, newClassroomNumber string) (*models.Lesson, error) {
	s.mu.Lock()
	idx := s.repo.IndexByCourse(courseID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no lesson scheduled for course")
	}
	updated, err := s.reassignLocked(ctx, idx, newClassroomNumber, false)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.logger.Debug("classroom reassigned", zap.Int("course_id", courseID), zap.String("classroom", newClassroomNumber))
	s.notify(ctx)
	return updated, nil
}

// ReassignLessonClassroom moves one lesson, addressed by id, to another room.
// Unlike ReassignClassroom the lesson itself is ignored when checking the target cell.
func (s *TimetableService) ReassignLessonClassroom(ctx context.Context, id, newClassroomNumber string) (*models.Lesson, error) {
	s.mu.Lock()
	idx := s.repo.IndexByID(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
	}
	updated, err := s.reassignLocked(ctx, idx, newClassroomNumber, true)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.logger.Debug("lesson classroom reassigned", zap.String("lesson_id", id), zap.String("classroom", newClassroomNumber))
	s.notify(ctx)
	return updated, nil
}

// CancelLesson removes every lesson of the course and returns how many were removed.
func (s *TimetableService) CancelLesson(ctx context.Context, courseID int) int {
	s.mu.Lock()
	removed := s.repo.DeleteByCourse(courseID)
	count := s.repo.LessonCount()
	s.version.Add(1)
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Debug("lessons cancelled", zap.Int("course_id", courseID), zap.Int("removed", removed))
		s.metrics.SetLessonsScheduled(count)
		s.notify(ctx)
	}
	return removed
}

// CancelLessonByID removes exactly one lesson.
func (s *TimetableService) CancelLessonByID(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.repo.IndexByID(id)
	if idx < 0 {
		s.mu.Unlock()
		return appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
	}
	s.repo.DeleteAt(idx)
	count := s.repo.LessonCount()
	s.version.Add(1)
	s.mu.Unlock()

	s.logger.Debug("lesson cancelled", zap.String("lesson_id", id))
	s.metrics.SetLessonsScheduled(count)
	s.notify(ctx)
	return nil
}

// Snapshot returns a copy of the schedule and catalog for exports.
func (s *TimetableService) Snapshot(ctx context.Context) ([]models.Lesson, *models.Catalog) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.Lessons(), &models.Catalog{
		Professors: s.repo.Professors(),
		Classrooms: s.repo.Classrooms(),
		Courses:    s.repo.Courses(),
	}
}

// reassignLocked must be called with the write lock held.
func (s *TimetableService) reassignLocked(ctx context.Context, idx int, newClassroomNumber string, skipSelf bool) (*models.Lesson, error) {
	target := s.repo.LessonAt(idx)
	for i, l := range s.repo.Lessons() {
		if skipSelf && i == idx {
			continue
		}
		if l.ClassroomNumber == newClassroomNumber && l.TimeSlot == target.TimeSlot && l.DayOfWeek == target.DayOfWeek {
			return nil, s.conflictError(ctx, models.ScheduleConflict{Type: models.ClassroomConflict, LessonDetails: l})
		}
	}
	updated := s.repo.SetClassroom(idx, newClassroomNumber)
	s.version.Add(1)
	return &updated, nil
}

func (s *TimetableService) lessonFromRequest(req LessonRequest) (models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Lesson{}, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid lesson payload")
	}
	day, _ := models.ParseDayOfWeek(req.DayOfWeek)
	slot, _ := models.ParseTimeSlot(req.TimeSlot)
	return models.Lesson{
		CourseID:        req.CourseID,
		ProfessorID:     req.ProfessorID,
		ClassroomNumber: req.ClassroomNumber,
		DayOfWeek:       day,
		TimeSlot:        slot,
	}, nil
}

func (s *TimetableService) conflictError(ctx context.Context, conflict models.ScheduleConflict) error {
	s.metrics.RecordConflict(conflict.Type)
	logger.WithRequestID(ctx, s.logger).Debug("schedule conflict",
		zap.String("type", string(conflict.Type)),
		zap.String("existing_lesson_id", conflict.LessonDetails.ID))
	domainErr := &models.ScheduleConflictError{Conflict: conflict}
	return appErrors.WrapAs(domainErr, appErrors.ErrConflict, "schedule conflict: "+domainErr.Error())
}

func (s *TimetableService) notify(ctx context.Context) {
	s.mu.RLock()
	listeners := append([]ChangeListener{}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(ctx)
	}
}

// findConflict scans in schedule order: professor dimension first, then classroom. First match wins.
func findConflict(schedule []models.Lesson, candidate models.Lesson) *models.ScheduleConflict {
	for _, l := range schedule {
		if l.ProfessorID == candidate.ProfessorID && l.TimeSlot == candidate.TimeSlot && l.DayOfWeek == candidate.DayOfWeek {
			return &models.ScheduleConflict{Type: models.ProfessorConflict, LessonDetails: l}
		}
	}
	for _, l := range schedule {
		if l.ClassroomNumber == candidate.ClassroomNumber && l.TimeSlot == candidate.TimeSlot && l.DayOfWeek == candidate.DayOfWeek {
			return &models.ScheduleConflict{Type: models.ClassroomConflict, LessonDetails: l}
		}
	}
	return nil
}
