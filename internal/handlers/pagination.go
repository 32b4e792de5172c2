package handlers

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"blooddonation/internal/store"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

var errInvalidPagination = errors.New("invalid pagination params")

// parsePage reads a zero-based page number and a page size. Skip is
// page*size.
func parsePage(pageStr, sizeStr string) (store.Page, error) {
	page := int64(0)
	size := int64(defaultPageSize)

	if s := strings.TrimSpace(pageStr); s != "" {
		p, err := strconv.ParseInt(s, 10, 64)
		if err != nil || p < 0 {
			return store.Page{}, errInvalidPagination
		}
		page = p
	}

	if s := strings.TrimSpace(sizeStr); s != "" {
		l, err := strconv.ParseInt(s, 10, 64)
		if err != nil || l < 1 {
			return store.Page{}, errInvalidPagination
		}
		size = min(l, maxPageSize)
	}

	if page > math.MaxInt64/size {
		return store.Page{}, errInvalidPagination
	}
	return store.Page{Skip: page * size, Limit: size}, nil
}

// parseOptionalPage returns an unbounded page when neither parameter is set.
func parseOptionalPage(pageStr, sizeStr string) (store.Page, error) {
	if strings.TrimSpace(pageStr) == "" && strings.TrimSpace(sizeStr) == "" {
		return store.Page{}, nil
	}
	return parsePage(pageStr, sizeStr)
}
