package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type analyticsService interface {
	Utilization(ctx context.Context, classroomNumber string) (models.ClassroomUtilization, bool)
	PopularCourseType(ctx context.Context) (models.CourseTypePopularity, bool)
	AvailableClassrooms(ctx context.Context, slot models.TimeSlot, day models.DayOfWeek) (models.ClassroomAvailability, bool)
}

// AnalyticsHandler serves the cached timetable reports.
type AnalyticsHandler struct {
	analytics analyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics analyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// AvailableClassrooms godoc
// @Summary Classrooms free at a day and time slot
// @Tags Reports
// @Produce json
// @Param dayOfWeek query string true "Day of week"
// @Param timeSlot query string true "Time slot, e.g. 8:30-10:00"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /classrooms/available [get]
func (h *AnalyticsHandler) AvailableClassrooms(c *gin.Context) {
	day, ok := models.ParseDayOfWeek(c.Query("dayOfWeek"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "dayOfWeek must be one of Monday..Friday"))
		return
	}
	slot, ok := models.ParseTimeSlot(c.Query("timeSlot"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "timeSlot must be one of the fixed periods"))
		return
	}
	result, hit := h.analytics.AvailableClassrooms(c.Request.Context(), slot, day)
	h.respond(c, result, hit)
}

// Utilization godoc
// @Summary Weekly utilisation of a classroom
// @Tags Reports
// @Produce json
// @Param number path string true "Classroom number"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{number}/utilization [get]
func (h *AnalyticsHandler) Utilization(c *gin.Context) {
	result, hit := h.analytics.Utilization(c.Request.Context(), c.Param("number"))
	h.respond(c, result, hit)
}

// PopularCourseType godoc
// @Summary Course type with the most scheduled lessons
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/popular-course-type [get]
func (h *AnalyticsHandler) PopularCourseType(c *gin.Context) {
	result, hit := h.analytics.PopularCourseType(c.Request.Context())
	h.respond(c, result, hit)
}

func (h *AnalyticsHandler) respond(c *gin.Context, data interface{}, cacheHit bool) {
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, data, nil, middleware.ExtractMeta(c))
}
