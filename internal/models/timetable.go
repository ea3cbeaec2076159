package models

import "strings"

// DayOfWeek is a teaching day. Weekends are not scheduled.
type DayOfWeek string

const (
	Monday    DayOfWeek = "Monday"
	Tuesday   DayOfWeek = "Tuesday"
	Wednesday DayOfWeek = "Wednesday"
	Thursday  DayOfWeek = "Thursday"
	Friday    DayOfWeek = "Friday"
)

// DaysOfWeek lists teaching days in declaration order.
var DaysOfWeek = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday}

// TimeSlot is one of the fixed daily teaching periods.
type TimeSlot string

const (
	Slot0830 TimeSlot = "8:30-10:00"
	Slot1015 TimeSlot = "10:15-11:45"
	Slot1215 TimeSlot = "12:15-13:45"
	Slot1400 TimeSlot = "14:00-15:30"
	Slot1545 TimeSlot = "15:45-17:15"
)

// TimeSlots lists daily periods in declaration order.
var TimeSlots = []TimeSlot{Slot0830, Slot1015, Slot1215, Slot1400, Slot1545}

// WeeklySlots is the number of day/slot cells a classroom offers per week.
const WeeklySlots = 5 * 5

// CourseType classifies how a course is taught.
type CourseType string

const (
	Lecture  CourseType = "Lecture"
	Seminar  CourseType = "Seminar"
	Lab      CourseType = "Lab"
	Practice CourseType = "Practice"
)

// CourseTypes lists course types in declaration order. Popularity ties resolve to the earliest entry.
var CourseTypes = []CourseType{Lecture, Seminar, Lab, Practice}

// Valid reports whether d is a known teaching day.
func (d DayOfWeek) Valid() bool {
	return d.Index() >= 0
}

// Index is the position of d in the teaching week, or -1.
func (d DayOfWeek) Index() int {
	for i, day := range DaysOfWeek {
		if d == day {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the fixed periods.
func (s TimeSlot) Valid() bool {
	return s.Index() >= 0
}

// Index is the position of s in the day, or -1.
func (s TimeSlot) Index() int {
	for i, slot := range TimeSlots {
		if s == slot {
			return i
		}
	}
	return -1
}

// Valid reports whether t is a known course type.
func (t CourseType) Valid() bool {
	for _, ct := range CourseTypes {
		if t == ct {
			return true
		}
	}
	return false
}

// ParseDayOfWeek resolves a day name case-insensitively ("monday", "MONDAY").
func ParseDayOfWeek(raw string) (DayOfWeek, bool) {
	raw = strings.TrimSpace(raw)
	for _, day := range DaysOfWeek {
		if strings.EqualFold(raw, string(day)) {
			return day, true
		}
	}
	return DayOfWeek(raw), false
}

// ParseTimeSlot resolves a period, tolerating spaces and a zero-padded start ("08:30 - 10:00").
func ParseTimeSlot(raw string) (TimeSlot, bool) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	normalized = strings.TrimPrefix(normalized, "0")
	for _, slot := range TimeSlots {
		if normalized == string(slot) {
			return slot, true
		}
	}
	return TimeSlot(raw), false
}

// ParseCourseType resolves a course type case-insensitively.
func ParseCourseType(raw string) (CourseType, bool) {
	raw = strings.TrimSpace(raw)
	for _, ct := range CourseTypes {
		if strings.EqualFold(raw, string(ct)) {
			return ct, true
		}
	}
	return CourseType(raw), false
}
