package httputil

import "strconv"

const defaultPageSize = 50

func ParsePage(s string) int {
	if i, err := strconv.Atoi(s); err == nil && i > 0 {
		return i
	}
	return 1
}

func ParsePageSize(s string) int {
	if i, err := strconv.Atoi(s); err == nil && i > 0 && i <= 500 {
		return i
	}
	return defaultPageSize
}
