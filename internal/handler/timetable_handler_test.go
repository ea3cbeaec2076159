package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/service"
)

func newTimetableRouter(t *testing.T) (*gin.Engine, *service.TimetableService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := service.NewTimetableService(repository.NewScheduleRepository(), nil, nil, zap.NewNop())
	h := NewTimetableHandler(svc)

	r := gin.New()
	r.GET("/professors", h.ListProfessors)
	r.POST("/professors", h.CreateProfessor)
	r.GET("/professors/:id/schedule", h.ProfessorSchedule)
	r.GET("/classrooms", h.ListClassrooms)
	r.POST("/classrooms", h.CreateClassroom)
	r.GET("/courses", h.ListCourses)
	r.POST("/courses", h.CreateCourse)
	r.PATCH("/courses/:id/lessons/classroom", h.ReassignCourseClassroom)
	r.DELETE("/courses/:id/lessons", h.CancelCourseLessons)
	r.GET("/lessons", h.ListLessons)
	r.POST("/lessons", h.CreateLesson)
	r.POST("/lessons/bulk", h.BulkCreateLessons)
	r.POST("/lessons/validate", h.ValidateLesson)
	r.GET("/lessons/:id", h.GetLesson)
	r.PATCH("/lessons/:id/classroom", h.ReassignLessonClassroom)
	r.DELETE("/lessons/:id", h.DeleteLesson)
	return r, svc
}

func lessonPayload(course, professor int, room, day, slot string) service.LessonRequest {
	return service.LessonRequest{CourseID: course, ProfessorID: professor, ClassroomNumber: room, DayOfWeek: day, TimeSlot: slot}
}

func createLesson(t *testing.T, router *gin.Engine, req service.LessonRequest) models.Lesson {
	t.Helper()
	w := perform(t, router, http.MethodPost, "/lessons", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var lesson models.Lesson
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &lesson))
	return lesson
}

func TestTimetableHandlerCreateLesson(t *testing.T) {
	router, _ := newTimetableRouter(t)

	lesson := createLesson(t, router, lessonPayload(1, 1, "101", "monday", "8:30-10:00"))
	assert.NotEmpty(t, lesson.ID)
	assert.Equal(t, models.Monday, lesson.DayOfWeek)
	assert.Equal(t, models.Slot0830, lesson.TimeSlot)
}

func TestTimetableHandlerCreateLessonConflict(t *testing.T) {
	router, _ := newTimetableRouter(t)
	existing := createLesson(t, router, lessonPayload(1, 1, "101", "Monday", "8:30-10:00"))

	w := perform(t, router, http.MethodPost, "/lessons", lessonPayload(2, 1, "102", "Monday", "8:30-10:00"))
	require.Equal(t, http.StatusConflict, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	var conflict models.ScheduleConflict
	require.NoError(t, json.Unmarshal(env.Meta["details"], &conflict))
	assert.Equal(t, models.ProfessorConflict, conflict.Type)
	assert.Equal(t, existing.ID, conflict.LessonDetails.ID)
}

func TestTimetableHandlerCreateLessonValidation(t *testing.T) {
	router, _ := newTimetableRouter(t)

	w := perform(t, router, http.MethodPost, "/lessons", lessonPayload(1, 1, "101", "Sunday", "8:30-10:00"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, rec := newGinContext(http.MethodPost, "/lessons", []byte("{"))
	NewTimetableHandler(service.NewTimetableService(repository.NewScheduleRepository(), nil, nil, nil)).CreateLesson(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimetableHandlerValidateLesson(t *testing.T) {
	router, _ := newTimetableRouter(t)
	createLesson(t, router, lessonPayload(1, 1, "101", "Monday", "8:30-10:00"))

	w := perform(t, router, http.MethodPost, "/lessons/validate", lessonPayload(2, 2, "101", "Monday", "8:30-10:00"))
	require.Equal(t, http.StatusOK, w.Code)
	var result ValidateLessonResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &result))
	assert.False(t, result.Valid)
	require.NotNil(t, result.Conflict)
	assert.Equal(t, models.ClassroomConflict, result.Conflict.Type)

	w = perform(t, router, http.MethodPost, "/lessons/validate", lessonPayload(2, 2, "102", "Monday", "8:30-10:00"))
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &result))
	assert.True(t, result.Valid)

	w = perform(t, router, http.MethodGet, "/lessons", nil)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.TotalCount)
}

func TestTimetableHandlerListLessonsFilters(t *testing.T) {
	router, _ := newTimetableRouter(t)
	createLesson(t, router, lessonPayload(1, 1, "101", "Monday", "8:30-10:00"))
	createLesson(t, router, lessonPayload(2, 2, "102", "Tuesday", "8:30-10:00"))
	createLesson(t, router, lessonPayload(1, 1, "101", "Tuesday", "10:15-11:45"))

	w := perform(t, router, http.MethodGet, "/lessons?courseId=1&dayOfWeek=Tuesday", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lessons []models.Lesson
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &lessons))
	require.Len(t, lessons, 1)
	assert.Equal(t, models.Slot1015, lessons[0].TimeSlot)

	w = perform(t, router, http.MethodGet, "/lessons?courseId=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = perform(t, router, http.MethodGet, "/lessons?timeSlot=9:00", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerProfessorSchedule(t *testing.T) {
	router, _ := newTimetableRouter(t)
	createLesson(t, router, lessonPayload(1, 7, "101", "Monday", "8:30-10:00"))
	createLesson(t, router, lessonPayload(2, 8, "102", "Monday", "8:30-10:00"))

	w := perform(t, router, http.MethodGet, "/professors/7/schedule", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lessons []models.Lesson
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &lessons))
	require.Len(t, lessons, 1)
	assert.Equal(t, 1, lessons[0].CourseID)

	w = perform(t, router, http.MethodGet, "/professors/99/schedule", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", string(decodeEnvelope(t, w).Data))

	w = perform(t, router, http.MethodGet, "/professors/x/schedule", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerReassignCourseClassroom(t *testing.T) {
	router, _ := newTimetableRouter(t)
	createLesson(t, router, lessonPayload(1, 1, "101", "Monday", "8:30-10:00"))
	createLesson(t, router, lessonPayload(2, 2, "202", "Monday", "8:30-10:00"))

	w := perform(t, router, http.MethodPatch, "/courses/1/lessons/classroom", ReassignClassroomRequest{ClassroomNumber: "202"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = perform(t, router, http.MethodPatch, "/courses/1/lessons/classroom", ReassignClassroomRequest{ClassroomNumber: "303"})
	require.Equal(t, http.StatusOK, w.Code)
	var lesson models.Lesson
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &lesson))
	assert.Equal(t, "303", lesson.ClassroomNumber)

	w = perform(t, router, http.MethodPatch, "/courses/9/lessons/classroom", ReassignClassroomRequest{ClassroomNumber: "303"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(t, router, http.MethodPatch, "/courses/1/lessons/classroom", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerLessonLifecycle(t *testing.T) {
	router, _ := newTimetableRouter(t)
	lesson := createLesson(t, router, lessonPayload(1, 1, "101", "Friday", "15:45-17:15"))

	w := perform(t, router, http.MethodGet, "/lessons/"+lesson.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(t, router, http.MethodPatch, "/lessons/"+lesson.ID+"/classroom", ReassignClassroomRequest{ClassroomNumber: "101"})
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(t, router, http.MethodDelete, "/lessons/"+lesson.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = perform(t, router, http.MethodGet, "/lessons/"+lesson.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = perform(t, router, http.MethodDelete, "/lessons/"+lesson.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimetableHandlerCancelCourseLessons(t *testing.T) {
	router, svc := newTimetableRouter(t)
	createLesson(t, router, lessonPayload(1, 1, "101", "Monday", "8:30-10:00"))
	createLesson(t, router, lessonPayload(1, 1, "101", "Tuesday", "8:30-10:00"))
	createLesson(t, router, lessonPayload(2, 2, "102", "Monday", "8:30-10:00"))

	w := perform(t, router, http.MethodDelete, "/courses/1/lessons", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-Removed-Count"))

	lessons, _ := svc.Snapshot(context.Background())
	require.Len(t, lessons, 1)
	assert.Equal(t, 2, lessons[0].CourseID)

	w = perform(t, router, http.MethodDelete, "/courses/1/lessons", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-Removed-Count"))
}

func TestTimetableHandlerBulkCreateLessons(t *testing.T) {
	router, _ := newTimetableRouter(t)

	payload := service.BulkCreateLessonsRequest{Items: []service.LessonRequest{
		lessonPayload(1, 1, "101", "Monday", "8:30-10:00"),
		lessonPayload(2, 1, "102", "Monday", "8:30-10:00"),
	}}
	w := perform(t, router, http.MethodPost, "/lessons/bulk", payload)
	assert.Equal(t, http.StatusConflict, w.Code)

	payload.PartialOnError = true
	w = perform(t, router, http.MethodPost, "/lessons/bulk", payload)
	require.Equal(t, http.StatusCreated, w.Code)
	var result service.BulkCreateLessonsResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &result))
	assert.Len(t, result.Created, 1)
	assert.Len(t, result.Conflicts, 1)
}

func TestTimetableHandlerCatalog(t *testing.T) {
	router, _ := newTimetableRouter(t)

	w := perform(t, router, http.MethodPost, "/professors", service.CreateProfessorRequest{ID: 1, Name: "Ada", Department: "Math"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = perform(t, router, http.MethodPost, "/classrooms", service.CreateClassroomRequest{Number: "101", Capacity: 30, HasProjector: true})
	require.Equal(t, http.StatusCreated, w.Code)
	w = perform(t, router, http.MethodPost, "/courses", service.CreateCourseRequest{ID: 1, Name: "Algebra", Type: "Seminar"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = perform(t, router, http.MethodPost, "/courses", service.CreateCourseRequest{ID: 2, Name: "Drawing", Type: "Studio"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(t, router, http.MethodGet, "/courses", nil)
	var courses []models.Course
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &courses))
	require.Len(t, courses, 1)
	assert.Equal(t, models.Seminar, courses[0].Type)

	w = perform(t, router, http.MethodGet, "/professors", nil)
	var professors []models.Professor
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &professors))
	assert.Len(t, professors, 1)

	w = perform(t, router, http.MethodGet, "/classrooms", nil)
	var classrooms []models.Classroom
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &classrooms))
	assert.Len(t, classrooms, 1)
}
