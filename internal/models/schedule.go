package models

import (
	"fmt"
	"time"
)

// Lesson places a course with a professor in a classroom at a day/slot.
// ID is generated on insertion; the course-keyed operations ignore it.
type Lesson struct {
	ID              string    `json:"id"`
	CourseID        int       `json:"courseId"`
	ProfessorID     int       `json:"professorId"`
	ClassroomNumber string    `json:"classroomNumber"`
	DayOfWeek       DayOfWeek `json:"dayOfWeek"`
	TimeSlot        TimeSlot  `json:"timeSlot"`
	CreatedAt       time.Time `json:"createdAt"`
}

// LessonFilter describes query params for listing lessons. Zero values match everything.
type LessonFilter struct {
	CourseID        *int
	ProfessorID     *int
	ClassroomNumber string
	DayOfWeek       DayOfWeek
	TimeSlot        TimeSlot
	Page            int
	PageSize        int
}

// Matches reports whether the lesson satisfies every set criterion.
func (f LessonFilter) Matches(l Lesson) bool {
	if f.CourseID != nil && l.CourseID != *f.CourseID {
		return false
	}
	if f.ProfessorID != nil && l.ProfessorID != *f.ProfessorID {
		return false
	}
	if f.ClassroomNumber != "" && l.ClassroomNumber != f.ClassroomNumber {
		return false
	}
	if f.DayOfWeek != "" && l.DayOfWeek != f.DayOfWeek {
		return false
	}
	if f.TimeSlot != "" && l.TimeSlot != f.TimeSlot {
		return false
	}
	return true
}

// ConflictType names the dimension on which two lessons collide.
type ConflictType string

const (
	ProfessorConflict ConflictType = "ProfessorConflict"
	ClassroomConflict ConflictType = "ClassroomConflict"
)

// ScheduleConflict carries the existing lesson a candidate collides with.
type ScheduleConflict struct {
	Type          ConflictType `json:"type"`
	LessonDetails Lesson       `json:"lessonDetails"`
}

// ScheduleConflictError is returned when a lesson collides with an existing one.
type ScheduleConflictError struct {
	Conflict ScheduleConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	existing := e.Conflict.LessonDetails
	switch e.Conflict.Type {
	case ProfessorConflict:
		return fmt.Sprintf("professor %d already teaches course %d on %s %s", existing.ProfessorID, existing.CourseID, existing.DayOfWeek, existing.TimeSlot)
	default:
		return fmt.Sprintf("classroom %s already booked for course %d on %s %s", existing.ClassroomNumber, existing.CourseID, existing.DayOfWeek, existing.TimeSlot)
	}
}

// Details exposes the conflict to API clients.
func (e *ScheduleConflictError) Details() interface{} {
	if e == nil {
		return nil
	}
	return e.Conflict
}
