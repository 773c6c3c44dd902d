package util

import "strconv"

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// ParseIntDefault reads a query value, falling back to def when it is empty
// or not a number.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func Calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return (page - 1) * size, size
}

type Meta struct {
	Page       int  `json:"page"`
	Size       int  `json:"size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// Paginate slices rows for one page of an already loaded result.
func Paginate[T any](rows []T, page, size int) ([]T, Meta) {
	if page < 1 {
		page = 1
	}
	_, limit := Calculate(page, size)
	total := len(rows)
	meta := Meta{
		Page:       page,
		Size:       limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
		HasPrev:    page > 1,
	}
	// Checked before multiplying: (page-1)*limit overflows for huge pages.
	if page-1 >= meta.TotalPages {
		return []T{}, meta
	}
	offset := (page - 1) * limit
	meta.HasNext = offset+limit < total
	end := offset + limit
	if end > total {
		end = total
	}
	return rows[offset:end], meta
}
