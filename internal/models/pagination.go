package models

import "math"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// Window normalises the requested page and size and returns the number of matches to skip.
// Pages past the addressable range saturate the offset so they come back empty.
func (f LessonFilter) Window() (page, size, offset int) {
	page = f.Page
	if page < 1 {
		page = 1
	}
	size = f.PageSize
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}
	if page-1 > math.MaxInt/size {
		return page, size, math.MaxInt
	}
	return page, size, (page - 1) * size
}
