package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/service"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type timetableService interface {
	AddProfessor(ctx context.Context, req service.CreateProfessorRequest) (*models.Professor, error)
	AddClassroom(ctx context.Context, req service.CreateClassroomRequest) (*models.Classroom, error)
	AddCourse(ctx context.Context, req service.CreateCourseRequest) (*models.Course, error)
	ListProfessors(ctx context.Context) []models.Professor
	ListClassrooms(ctx context.Context) []models.Classroom
	ListCourses(ctx context.Context) []models.Course
	AddLesson(ctx context.Context, req service.LessonRequest) (*models.Lesson, error)
	BulkAddLessons(ctx context.Context, req service.BulkCreateLessonsRequest) (*service.BulkCreateLessonsResult, error)
	ValidateLesson(ctx context.Context, lesson models.Lesson) *models.ScheduleConflict
	GetLesson(ctx context.Context, id string) (*models.Lesson, error)
	ListLessons(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, *models.Pagination)
	GetProfessorSchedule(ctx context.Context, professorID int) []models.Lesson
	ReassignClassroom(ctx context.Context, courseID int, newClassroomNumber string) (*models.Lesson, error)
	ReassignLessonClassroom(ctx context.Context, id, newClassroomNumber string) (*models.Lesson, error)
	CancelLesson(ctx context.Context, courseID int) int
	CancelLessonByID(ctx context.Context, id string) error
}

// ReassignClassroomRequest is the body of the classroom reassignment endpoints.
type ReassignClassroomRequest struct {
	ClassroomNumber string `json:"classroomNumber" binding:"required"`
}

// ValidateLessonResponse reports the result of a dry-run placement.
type ValidateLessonResponse struct {
	Valid    bool                     `json:"valid"`
	Conflict *models.ScheduleConflict `json:"conflict,omitempty"`
}

// TimetableHandler exposes the registry: catalog, lessons and professor schedules.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc timetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// ListProfessors godoc
// @Summary List professors
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /professors [get]
func (h *TimetableHandler) ListProfessors(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.ListProfessors(c.Request.Context()), nil)
}

// CreateProfessor godoc
// @Summary Add professor
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body service.CreateProfessorRequest true "Professor payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /professors [post]
func (h *TimetableHandler) CreateProfessor(c *gin.Context) {
	var req service.CreateProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	professor, err := h.service.AddProfessor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, professor)
}

// ProfessorSchedule godoc
// @Summary Lessons taught by a professor
// @Tags Catalog
// @Produce json
// @Param id path int true "Professor ID"
// @Success 200 {object} response.Envelope
// @Router /professors/{id}/schedule [get]
func (h *TimetableHandler) ProfessorSchedule(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.service.GetProfessorSchedule(c.Request.Context(), id), nil)
}

// ListClassrooms godoc
// @Summary List classrooms
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classrooms [get]
func (h *TimetableHandler) ListClassrooms(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.ListClassrooms(c.Request.Context()), nil)
}

// CreateClassroom godoc
// @Summary Add classroom
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body service.CreateClassroomRequest true "Classroom payload"
// @Success 201 {object} response.Envelope
// @Router /classrooms [post]
func (h *TimetableHandler) CreateClassroom(c *gin.Context) {
	var req service.CreateClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	classroom, err := h.service.AddClassroom(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, classroom)
}

// ListCourses godoc
// @Summary List courses
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *TimetableHandler) ListCourses(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.ListCourses(c.Request.Context()), nil)
}

// CreateCourse godoc
// @Summary Add course
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *TimetableHandler) CreateCourse(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	course, err := h.service.AddCourse(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// ListLessons godoc
// @Summary List lessons
// @Tags Lessons
// @Produce json
// @Param courseId query int false "Filter by course"
// @Param professorId query int false "Filter by professor"
// @Param classroomNumber query string false "Filter by classroom"
// @Param dayOfWeek query string false "Filter by day"
// @Param timeSlot query string false "Filter by time slot"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /lessons [get]
func (h *TimetableHandler) ListLessons(c *gin.Context) {
	filter, err := parseLessonFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	lessons, pagination := h.service.ListLessons(c.Request.Context(), filter)
	response.JSON(c, http.StatusOK, lessons, pagination)
}

// CreateLesson godoc
// @Summary Schedule a lesson
// @Description Rejected with 409 when the professor or classroom is already booked at that day and slot.
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body service.LessonRequest true "Lesson payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /lessons [post]
func (h *TimetableHandler) CreateLesson(c *gin.Context) {
	var req service.LessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	lesson, err := h.service.AddLesson(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lesson)
}

// BulkCreateLessons godoc
// @Summary Schedule several lessons
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body service.BulkCreateLessonsRequest true "Lessons"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /lessons/bulk [post]
func (h *TimetableHandler) BulkCreateLessons(c *gin.Context) {
	var req service.BulkCreateLessonsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.service.BulkAddLessons(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ValidateLesson godoc
// @Summary Check a lesson for conflicts without scheduling it
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body service.LessonRequest true "Lesson payload"
// @Success 200 {object} response.Envelope
// @Router /lessons/validate [post]
func (h *TimetableHandler) ValidateLesson(c *gin.Context) {
	var req service.LessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	day, ok := models.ParseDayOfWeek(req.DayOfWeek)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid dayOfWeek"))
		return
	}
	slot, ok := models.ParseTimeSlot(req.TimeSlot)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid timeSlot"))
		return
	}
	conflict := h.service.ValidateLesson(c.Request.Context(), models.Lesson{
		CourseID:        req.CourseID,
		ProfessorID:     req.ProfessorID,
		ClassroomNumber: req.ClassroomNumber,
		DayOfWeek:       day,
		TimeSlot:        slot,
	})
	response.JSON(c, http.StatusOK, ValidateLessonResponse{Valid: conflict == nil, Conflict: conflict}, nil)
}

// GetLesson godoc
// @Summary Get lesson
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lessons/{id} [get]
func (h *TimetableHandler) GetLesson(c *gin.Context) {
	lesson, err := h.service.GetLesson(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// ReassignLessonClassroom godoc
// @Summary Move one lesson to another classroom
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body ReassignClassroomRequest true "Target classroom"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /lessons/{id}/classroom [patch]
func (h *TimetableHandler) ReassignLessonClassroom(c *gin.Context) {
	var req ReassignClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	lesson, err := h.service.ReassignLessonClassroom(c.Request.Context(), c.Param("id"), req.ClassroomNumber)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// DeleteLesson godoc
// @Summary Cancel one lesson
// @Tags Lessons
// @Param id path string true "Lesson ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /lessons/{id} [delete]
func (h *TimetableHandler) DeleteLesson(c *gin.Context) {
	if err := h.service.CancelLessonByID(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ReassignCourseClassroom godoc
// @Summary Move the first lesson of a course to another classroom
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param payload body ReassignClassroomRequest true "Target classroom"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/{id}/lessons/classroom [patch]
func (h *TimetableHandler) ReassignCourseClassroom(c *gin.Context) {
	courseID, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req ReassignClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	lesson, err := h.service.ReassignClassroom(c.Request.Context(), courseID, req.ClassroomNumber)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// CancelCourseLessons godoc
// @Summary Cancel every lesson of a course
// @Tags Courses
// @Param id path int true "Course ID"
// @Success 204
// @Router /courses/{id}/lessons [delete]
func (h *TimetableHandler) CancelCourseLessons(c *gin.Context) {
	courseID, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	removed := h.service.CancelLesson(c.Request.Context(), courseID)
	c.Header("X-Removed-Count", strconv.Itoa(removed))
	response.NoContent(c)
}

func parseLessonFilter(c *gin.Context) (models.LessonFilter, error) {
	var filter models.LessonFilter
	if raw := c.Query("courseId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "courseId must be an integer")
		}
		filter.CourseID = &id
	}
	if raw := c.Query("professorId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "professorId must be an integer")
		}
		filter.ProfessorID = &id
	}
	filter.ClassroomNumber = c.Query("classroomNumber")
	if raw := c.Query("dayOfWeek"); raw != "" {
		day, ok := models.ParseDayOfWeek(raw)
		if !ok {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid dayOfWeek")
		}
		filter.DayOfWeek = day
	}
	if raw := c.Query("timeSlot"); raw != "" {
		slot, ok := models.ParseTimeSlot(raw)
		if !ok {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid timeSlot")
		}
		filter.TimeSlot = slot
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	return filter, nil
}

func intParam(c *gin.Context, name string) (int, error) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be an integer")
	}
	return value, nil
}

func invalidPayload(err error) error {
	return appErrors.WrapAs(err, appErrors.ErrValidation, "invalid payload")
}
