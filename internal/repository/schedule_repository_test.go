package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func lesson(courseID, professorID int, room string, day models.DayOfWeek, slot models.TimeSlot) *models.Lesson {
	return &models.Lesson{CourseID: courseID, ProfessorID: professorID, ClassroomNumber: room, DayOfWeek: day, TimeSlot: slot}
}

func TestScheduleRepositoryCreateLessonAssignsID(t *testing.T) {
	repo := NewScheduleRepository()
	l := lesson(10, 1, "101", models.Monday, models.Slot0830)

	repo.CreateLesson(l)

	require.NotEmpty(t, l.ID)
	assert.False(t, l.CreatedAt.IsZero())
	assert.Equal(t, 1, repo.LessonCount())
	assert.Equal(t, l.ID, repo.Lessons()[0].ID)
}

func TestScheduleRepositoryCopiesAreDetached(t *testing.T) {
	repo := NewScheduleRepository()
	repo.CreateLesson(lesson(10, 1, "101", models.Monday, models.Slot0830))
	repo.AddProfessor(models.Professor{ID: 1, Name: "Ada"})

	lessons := repo.Lessons()
	lessons[0].ClassroomNumber = "999"
	professors := repo.Professors()
	professors[0].Name = "changed"

	assert.Equal(t, "101", repo.LessonAt(0).ClassroomNumber)
	assert.Equal(t, "Ada", repo.Professors()[0].Name)
}

func TestScheduleRepositoryIndexByCourseFirstMatch(t *testing.T) {
	repo := NewScheduleRepository()
	repo.CreateLesson(lesson(5, 1, "101", models.Monday, models.Slot0830))
	repo.CreateLesson(lesson(5, 2, "102", models.Tuesday, models.Slot0830))

	assert.Equal(t, 0, repo.IndexByCourse(5))
	assert.Equal(t, -1, repo.IndexByCourse(6))
}

func TestScheduleRepositoryDeleteByCourseRemovesAll(t *testing.T) {
	repo := NewScheduleRepository()
	repo.CreateLesson(lesson(5, 1, "101", models.Monday, models.Slot0830))
	repo.CreateLesson(lesson(7, 1, "101", models.Monday, models.Slot1015))
	repo.CreateLesson(lesson(5, 2, "102", models.Tuesday, models.Slot0830))

	removed := repo.DeleteByCourse(5)

	assert.Equal(t, 2, removed)
	require.Equal(t, 1, repo.LessonCount())
	assert.Equal(t, 7, repo.LessonAt(0).CourseID)
}

func TestScheduleRepositoryDeleteAtKeepsOrder(t *testing.T) {
	repo := NewScheduleRepository()
	for i := 1; i <= 3; i++ {
		repo.CreateLesson(lesson(i, i, "101", models.DaysOfWeek[i-1], models.Slot0830))
	}
	snapshot := repo.Lessons()

	removed := repo.DeleteAt(1)

	assert.Equal(t, 2, removed.CourseID)
	lessons := repo.Lessons()
	require.Len(t, lessons, 2)
	assert.Equal(t, 1, lessons[0].CourseID)
	assert.Equal(t, 3, lessons[1].CourseID)
	assert.Equal(t, 2, snapshot[1].CourseID)
}

func TestScheduleRepositoryListLessonsPaginates(t *testing.T) {
	repo := NewScheduleRepository()
	for i, day := range models.DaysOfWeek {
		repo.CreateLesson(lesson(i, 1, "101", day, models.Slot0830))
		repo.CreateLesson(lesson(i, 2, "102", day, models.Slot1015))
	}
	prof := 1

	page, total := repo.ListLessons(models.LessonFilter{ProfessorID: &prof, Page: 2, PageSize: 2})

	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, models.Wednesday, page[0].DayOfWeek)
	assert.Equal(t, models.Thursday, page[1].DayOfWeek)
}

func TestScheduleRepositoryListLessonsHugePageIsEmpty(t *testing.T) {
	repo := NewScheduleRepository()
	repo.CreateLesson(lesson(1, 1, "101", models.Monday, models.Slot0830))
	repo.CreateLesson(lesson(2, 2, "102", models.Monday, models.Slot0830))

	for _, page := range []int{math.MaxInt, math.MaxInt/20 + 2} {
		result, total := repo.ListLessons(models.LessonFilter{Page: page})
		assert.Empty(t, result, "page %d", page)
		assert.Equal(t, 2, total)
	}
}

func TestScheduleRepositoryFindCourse(t *testing.T) {
	repo := NewScheduleRepository()
	repo.AddCourse(models.Course{ID: 1, Name: "Algebra", Type: models.Lecture})
	repo.AddCourse(models.Course{ID: 1, Name: "Duplicate", Type: models.Lab})

	course, ok := repo.FindCourse(1)
	require.True(t, ok)
	assert.Equal(t, "Algebra", course.Name)

	_, ok = repo.FindCourse(2)
	assert.False(t, ok)
}
