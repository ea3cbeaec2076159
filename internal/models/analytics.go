package models

import "time"

// ClassroomUtilization reports how many weekly cells a classroom fills.
type ClassroomUtilization struct {
	ClassroomNumber string  `json:"classroomNumber"`
	Lessons         int     `json:"lessons"`
	Percentage      float64 `json:"percentage"`
}

// CourseTypeCount is one bucket of the course type tally, kept in declaration order.
type CourseTypeCount struct {
	Type  CourseType `json:"type"`
	Count int        `json:"count"`
}

// CourseTypePopularity reports the most scheduled course type with the full tally.
type CourseTypePopularity struct {
	MostPopular CourseType        `json:"mostPopular"`
	Counts      []CourseTypeCount `json:"counts"`
}

// ClassroomAvailability lists rooms free at a day/slot.
type ClassroomAvailability struct {
	DayOfWeek  DayOfWeek `json:"dayOfWeek"`
	TimeSlot   TimeSlot  `json:"timeSlot"`
	Classrooms []string  `json:"classrooms"`
}

// SystemMetrics summarises process instrumentation for API consumption.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	LessonsScheduled         int       `json:"lessons_scheduled"`
	ConflictsTotal           uint64    `json:"conflicts_total"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
