package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
)

type analyticsServiceStub struct {
	hit     bool
	gotSlot models.TimeSlot
	gotDay  models.DayOfWeek
	gotRoom string
	classes []string
	percent float64
	popular models.CourseType
}

func (s *analyticsServiceStub) Utilization(_ context.Context, room string) (models.ClassroomUtilization, bool) {
	s.gotRoom = room
	return models.ClassroomUtilization{ClassroomNumber: room, Lessons: 3, Percentage: s.percent}, s.hit
}

func (s *analyticsServiceStub) PopularCourseType(context.Context) (models.CourseTypePopularity, bool) {
	return models.CourseTypePopularity{MostPopular: s.popular}, s.hit
}

func (s *analyticsServiceStub) AvailableClassrooms(_ context.Context, slot models.TimeSlot, day models.DayOfWeek) (models.ClassroomAvailability, bool) {
	s.gotSlot, s.gotDay = slot, day
	return models.ClassroomAvailability{DayOfWeek: day, TimeSlot: slot, Classrooms: s.classes}, s.hit
}

func newAnalyticsRouter(stub *analyticsServiceStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAnalyticsHandler(stub)
	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	r.GET("/classrooms/available", h.AvailableClassrooms)
	r.GET("/classrooms/:number/utilization", h.Utilization)
	r.GET("/reports/popular-course-type", h.PopularCourseType)
	return r
}

func TestAnalyticsHandlerAvailableClassrooms(t *testing.T) {
	stub := &analyticsServiceStub{classes: []string{"102", "103"}}
	router := newAnalyticsRouter(stub)

	w := perform(t, router, http.MethodGet, "/classrooms/available?dayOfWeek=wednesday&timeSlot=12:15-13:45", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.Wednesday, stub.gotDay)
	assert.Equal(t, models.Slot1215, stub.gotSlot)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	env := decodeEnvelope(t, w)
	var result models.ClassroomAvailability
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, []string{"102", "103"}, result.Classrooms)
	assert.Contains(t, env.Meta, "processing_time_ms")
}

func TestAnalyticsHandlerAvailableClassroomsRejectsBadQuery(t *testing.T) {
	router := newAnalyticsRouter(&analyticsServiceStub{})

	w := perform(t, router, http.MethodGet, "/classrooms/available?dayOfWeek=Saturday&timeSlot=8:30-10:00", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = perform(t, router, http.MethodGet, "/classrooms/available?dayOfWeek=Monday&timeSlot=9:00-10:00", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = perform(t, router, http.MethodGet, "/classrooms/available", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyticsHandlerUtilization(t *testing.T) {
	stub := &analyticsServiceStub{hit: true, percent: 12}
	router := newAnalyticsRouter(stub)

	w := perform(t, router, http.MethodGet, "/classrooms/101/utilization", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "101", stub.gotRoom)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	var result models.ClassroomUtilization
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &result))
	assert.InDelta(t, 12.0, result.Percentage, 0.0001)
}

func TestAnalyticsHandlerPopularCourseType(t *testing.T) {
	router := newAnalyticsRouter(&analyticsServiceStub{popular: models.Lab})

	w := perform(t, router, http.MethodGet, "/reports/popular-course-type", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result models.CourseTypePopularity
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &result))
	assert.Equal(t, models.Lab, result.MostPopular)
}
