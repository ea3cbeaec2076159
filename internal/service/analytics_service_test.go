package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type stubCacheRepo struct {
	store  map[string][]byte
	getErr error
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range s.store {
		if strings.HasPrefix(key, prefix) {
			delete(s.store, key)
		}
	}
	return nil
}

type countingReader struct {
	utilizationCalls int
	popularityCalls  int
	availableCalls   int
	version          uint64
}

func (r *countingReader) Version() uint64 {
	return r.version
}

func (r *countingReader) ClassroomUtilization(_ context.Context, number string) models.ClassroomUtilization {
	r.utilizationCalls++
	return models.ClassroomUtilization{ClassroomNumber: number, Lessons: 5, Percentage: 20}
}

func (r *countingReader) CourseTypePopularity(_ context.Context) models.CourseTypePopularity {
	r.popularityCalls++
	return models.CourseTypePopularity{MostPopular: models.Lab}
}

func (r *countingReader) FindAvailableClassrooms(_ context.Context, _ models.TimeSlot, _ models.DayOfWeek) []string {
	r.availableCalls++
	return []string{"101"}
}

func TestAnalyticsServiceUtilizationCaching(t *testing.T) {
	reader := &countingReader{}
	cacheSvc := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewAnalyticsService(reader, cacheSvc, zap.NewNop())
	ctx := context.Background()

	result, hit := svc.Utilization(ctx, "101")
	assert.False(t, hit)
	assert.Equal(t, 20.0, result.Percentage)

	cached, hit := svc.Utilization(ctx, "101")
	assert.True(t, hit)
	assert.Equal(t, result, cached)
	assert.Equal(t, 1, reader.utilizationCalls)

	_, hit = svc.Utilization(ctx, "102")
	assert.False(t, hit)
	assert.Equal(t, 2, reader.utilizationCalls)
}

func TestAnalyticsServiceCacheErrorFallsThrough(t *testing.T) {
	reader := &countingReader{}
	cacheSvc := NewCacheService(&stubCacheRepo{getErr: errors.New("connection refused")}, nil, time.Minute, zap.NewNop(), true)
	svc := NewAnalyticsService(reader, cacheSvc, zap.NewNop())

	result, hit := svc.PopularCourseType(context.Background())

	assert.False(t, hit)
	assert.Equal(t, models.Lab, result.MostPopular)
	assert.Equal(t, 1, reader.popularityCalls)
}

func TestAnalyticsServiceDisabledCache(t *testing.T) {
	reader := &countingReader{}
	svc := NewAnalyticsService(reader, NewCacheService(nil, nil, 0, nil, false), nil)
	ctx := context.Background()

	svc.AvailableClassrooms(ctx, models.Slot0830, models.Monday)
	_, hit := svc.AvailableClassrooms(ctx, models.Slot0830, models.Monday)

	assert.False(t, hit)
	assert.Equal(t, 2, reader.availableCalls)
}

func TestAnalyticsServiceInvalidatedByTimetableChanges(t *testing.T) {
	timetable := NewTimetableService(repository.NewScheduleRepository(), nil, nil, zap.NewNop())
	cacheSvc := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewAnalyticsService(timetable, cacheSvc, zap.NewNop())
	timetable.OnChange(svc.InvalidateReports)
	ctx := context.Background()

	_, err := timetable.AddClassroom(ctx, CreateClassroomRequest{Number: "101"})
	require.NoError(t, err)

	before, _ := svc.Utilization(ctx, "101")
	assert.Equal(t, 0, before.Lessons)
	_, hit := svc.Utilization(ctx, "101")
	assert.True(t, hit)

	_, err = timetable.AddLesson(ctx, LessonRequest{CourseID: 1, ProfessorID: 1, ClassroomNumber: "101", DayOfWeek: "Monday", TimeSlot: "8:30-10:00"})
	require.NoError(t, err)

	after, hit := svc.Utilization(ctx, "101")
	assert.False(t, hit)
	assert.Equal(t, 1, after.Lessons)
	assert.Equal(t, 4.0, after.Percentage)

	available, _ := svc.AvailableClassrooms(ctx, models.Slot0830, models.Monday)
	assert.Empty(t, available.Classrooms)
}

// racingReader applies a registry change while a report is being computed.
type racingReader struct {
	*TimetableService
	during func()
}

func (r *racingReader) ClassroomUtilization(ctx context.Context, number string) models.ClassroomUtilization {
	result := r.TimetableService.ClassroomUtilization(ctx, number)
	if r.during != nil {
		r.during()
		r.during = nil
	}
	return result
}

func TestAnalyticsServiceDoesNotServeReportsComputedBeforeChange(t *testing.T) {
	timetable := NewTimetableService(repository.NewScheduleRepository(), nil, nil, zap.NewNop())
	cacheSvc := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	reader := &racingReader{TimetableService: timetable}
	svc := NewAnalyticsService(reader, cacheSvc, zap.NewNop())
	timetable.OnChange(svc.InvalidateReports)
	ctx := context.Background()

	reader.during = func() {
		_, err := timetable.AddLesson(ctx, LessonRequest{CourseID: 1, ProfessorID: 1, ClassroomNumber: "101", DayOfWeek: "Monday", TimeSlot: "8:30-10:00"})
		require.NoError(t, err)
	}
	first, hit := svc.Utilization(ctx, "101")
	assert.False(t, hit)
	assert.Equal(t, 0, first.Lessons)

	second, hit := svc.Utilization(ctx, "101")
	assert.False(t, hit)
	assert.Equal(t, 1, second.Lessons)
	assert.Equal(t, timetable.ClassroomUtilization(ctx, "101"), second)

	third, hit := svc.Utilization(ctx, "101")
	assert.True(t, hit)
	assert.Equal(t, second, third)
}

func TestAnalyticsServiceKeepsClassroomsApart(t *testing.T) {
	timetable := NewTimetableService(repository.NewScheduleRepository(), nil, nil, zap.NewNop())
	cacheSvc := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewAnalyticsService(timetable, cacheSvc, zap.NewNop())
	ctx := context.Background()
	_, err := timetable.AddLesson(ctx, LessonRequest{CourseID: 1, ProfessorID: 1, ClassroomNumber: "A1", DayOfWeek: "Monday", TimeSlot: "8:30-10:00"})
	require.NoError(t, err)

	a1, _ := svc.Utilization(ctx, "A1")
	require.Equal(t, 1, a1.Lessons)

	spaced, hit := svc.Utilization(ctx, "A 1")
	assert.False(t, hit)
	assert.Equal(t, "A 1", spaced.ClassroomNumber)
	assert.Equal(t, 0, spaced.Lessons)
}

func TestMakeReportsCacheKey(t *testing.T) {
	assert.Equal(t, "reports:v3:available:Monday:8%3A30-10%3A00", makeReportsCacheKey(3, "available", "Monday", "8:30-10:00"))
	assert.Equal(t, "reports:v0:popular-course-type", makeReportsCacheKey(0, "popular-course-type"))
	assert.NotEqual(t, makeReportsCacheKey(1, "utilization", "101"), makeReportsCacheKey(2, "utilization", "101"))

	rooms := []string{"A1", "A 1", "A+1", "a:b", "a|b", "a%3Ab", "a*", "", "a:b:c"}
	seen := make(map[string]string, len(rooms))
	for _, room := range rooms {
		key := makeReportsCacheKey(0, "utilization", room)
		if other, ok := seen[key]; ok {
			t.Fatalf("classrooms %q and %q share key %q", other, room, key)
		}
		seen[key] = room
		assert.NotContains(t, key[len("reports:v0:utilization:"):], "*")
	}
}
