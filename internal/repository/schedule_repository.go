package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/timetable-api/internal/models"
)

// ScheduleRepository keeps the registry's four collections in memory, in insertion order.
// It does no locking; callers serialise access (see service.TimetableService).
type ScheduleRepository struct {
	professors []models.Professor
	classrooms []models.Classroom
	courses    []models.Course
	lessons    []models.Lesson
}

// NewScheduleRepository creates an empty in-memory registry store.
func NewScheduleRepository() *ScheduleRepository {
	return &ScheduleRepository{}
}

// AddProfessor appends a professor without any duplicate check.
func (r *ScheduleRepository) AddProfessor(p models.Professor) {
	r.professors = append(r.professors, p)
}

// Professors returns a copy of the professors in stored order.
func (r *ScheduleRepository) Professors() []models.Professor {
	return append([]models.Professor{}, r.professors...)
}

// AddClassroom appends a classroom.
func (r *ScheduleRepository) AddClassroom(c models.Classroom) {
	r.classrooms = append(r.classrooms, c)
}

// Classrooms returns a copy of the classrooms in stored order.
func (r *ScheduleRepository) Classrooms() []models.Classroom {
	return append([]models.Classroom{}, r.classrooms...)
}

// AddCourse appends a course.
func (r *ScheduleRepository) AddCourse(c models.Course) {
	r.courses = append(r.courses, c)
}

// Courses returns a copy of the courses in stored order.
func (r *ScheduleRepository) Courses() []models.Course {
	return append([]models.Course{}, r.courses...)
}

// FindCourse returns the first course with the given id.
func (r *ScheduleRepository) FindCourse(id int) (models.Course, bool) {
	for _, c := range r.courses {
		if c.ID == id {
			return c, true
		}
	}
	return models.Course{}, false
}

// CreateLesson assigns an id and timestamp when missing and appends the lesson.
func (r *ScheduleRepository) CreateLesson(lesson *models.Lesson) {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = time.Now().UTC()
	}
	r.lessons = append(r.lessons, *lesson)
}

// Lessons returns a copy of the schedule in stored order.
func (r *ScheduleRepository) Lessons() []models.Lesson {
	return append([]models.Lesson{}, r.lessons...)
}

// LessonCount returns the schedule length.
func (r *ScheduleRepository) LessonCount() int {
	return len(r.lessons)
}

// ListLessons returns the filtered schedule page plus the total number of matches.
func (r *ScheduleRepository) ListLessons(filter models.LessonFilter) ([]models.Lesson, int) {
	_, size, offset := filter.Window()

	result := make([]models.Lesson, 0, size)
	total := 0
	for _, l := range r.lessons {
		if !filter.Matches(l) {
			continue
		}
		if total >= offset && len(result) < size {
			result = append(result, l)
		}
		total++
	}
	return result, total
}

// IndexByCourse returns the position of the first lesson for the course, or -1.
func (r *ScheduleRepository) IndexByCourse(courseID int) int {
	for i, l := range r.lessons {
		if l.CourseID == courseID {
			return i
		}
	}
	return -1
}

// IndexByID returns the position of the lesson with the given id, or -1.
func (r *ScheduleRepository) IndexByID(id string) int {
	for i, l := range r.lessons {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// LessonAt returns the lesson stored at position i.
func (r *ScheduleRepository) LessonAt(i int) models.Lesson {
	return r.lessons[i]
}

// SetClassroom moves the lesson at position i to another room in place.
func (r *ScheduleRepository) SetClassroom(i int, number string) models.Lesson {
	r.lessons[i].ClassroomNumber = number
	return r.lessons[i]
}

// DeleteByCourse drops every lesson of the course and returns how many were removed.
func (r *ScheduleRepository) DeleteByCourse(courseID int) int {
	kept := make([]models.Lesson, 0, len(r.lessons))
	for _, l := range r.lessons {
		if l.CourseID != courseID {
			kept = append(kept, l)
		}
	}
	removed := len(r.lessons) - len(kept)
	r.lessons = kept
	return removed
}

// DeleteAt removes the lesson at position i, keeping the order of the rest.
func (r *ScheduleRepository) DeleteAt(i int) models.Lesson {
	removed := r.lessons[i]
	r.lessons = append(r.lessons[:i:i], r.lessons[i+1:]...)
	return removed
}
