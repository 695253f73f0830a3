package util

import "strconv"

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*MaxPageSize well inside int range.
	MaxPage = 1_000_000
)

// Calculate clamps page and size into range and returns the row offset and limit.
func Calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	offset = (page - 1) * size
	return offset, size
}

func TotalPages(total int64, size int) int64 {
	if size <= 0 {
		return 0
	}
	return (total + int64(size) - 1) / int64(size)
}

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
