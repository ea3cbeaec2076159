package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
)

const reportsCachePrefix = "reports"

// TimetableReader is the read side of the registry used by reports.
type TimetableReader interface {
	ClassroomUtilization(ctx context.Context, classroomNumber string) models.ClassroomUtilization
	CourseTypePopularity(ctx context.Context) models.CourseTypePopularity
	FindAvailableClassrooms(ctx context.Context, slot models.TimeSlot, day models.DayOfWeek) []string
	Version() uint64
}

// AnalyticsService serves the timetable reports through the cache. The boolean returned by
// each report indicates whether the payload came from cache. Keys carry the registry version
// read before computing, so a report built from an older schedule is never served after a change.
type AnalyticsService struct {
	source TimetableReader
	cache  *CacheService
	logger *zap.Logger
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(source TimetableReader, cache *CacheService, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{source: source, cache: cache, logger: logger}
}

// Utilization returns the weekly utilisation of a classroom.
func (s *AnalyticsService) Utilization(ctx context.Context, classroomNumber string) (models.ClassroomUtilization, bool) {
	var result models.ClassroomUtilization
	hit := s.cache.Remember(ctx, makeReportsCacheKey(s.source.Version(), "utilization", classroomNumber), &result, func() {
		result = s.source.ClassroomUtilization(ctx, classroomNumber)
	})
	return result, hit
}

// PopularCourseType returns the course type tally.
func (s *AnalyticsService) PopularCourseType(ctx context.Context) (models.CourseTypePopularity, bool) {
	var result models.CourseTypePopularity
	hit := s.cache.Remember(ctx, makeReportsCacheKey(s.source.Version(), "popular-course-type"), &result, func() {
		result = s.source.CourseTypePopularity(ctx)
	})
	return result, hit
}

// AvailableClassrooms returns the rooms free at the given cell.
func (s *AnalyticsService) AvailableClassrooms(ctx context.Context, slot models.TimeSlot, day models.DayOfWeek) (models.ClassroomAvailability, bool) {
	var result models.ClassroomAvailability
	hit := s.cache.Remember(ctx, makeReportsCacheKey(s.source.Version(), "available", string(day), string(slot)), &result, func() {
		result = models.ClassroomAvailability{
			DayOfWeek:  day,
			TimeSlot:   slot,
			Classrooms: s.source.FindAvailableClassrooms(ctx, slot, day),
		}
	})
	return result, hit
}

// InvalidateReports drops every cached report. It is registered as a TimetableService change listener.
func (s *AnalyticsService) InvalidateReports(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, reportsCachePrefix+":*"); err != nil {
		s.logger.Warn("invalidate reports cache", zap.Error(err))
	}
}

// makeReportsCacheKey escapes every part so distinct inputs never share a key
// and glob metacharacters cannot reach the invalidation pattern.
func makeReportsCacheKey(version uint64, parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts)*16 + 24)
	builder.WriteString(reportsCachePrefix)
	builder.WriteString(":v")
	builder.WriteString(strconv.FormatUint(version, 10))
	for _, part := range parts {
		builder.WriteByte(':')
		builder.WriteString(url.QueryEscape(part))
	}
	return builder.String()
}
