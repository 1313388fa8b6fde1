package api

import (
	"alcyxob/trainer-app/internal/domain"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ListResponse is the envelope of every paginated listing.
type ListResponse[T any] struct {
	Data     []T `json:"data"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

func newListResponse[T any](data []T, total int, page domain.Page) ListResponse[T] {
	if data == nil {
		data = []T{}
	}
	return ListResponse[T]{Data: data, Total: total, Page: page.Number, PageSize: page.Size}
}

// parsePage reads ?page and ?pageSize, clamped by domain.NewPage.
func parsePage(c *gin.Context) (domain.Page, error) {
	number, err := queryInt(c, "page")
	if err != nil {
		return domain.Page{}, err
	}
	size, err := queryInt(c, "pageSize")
	if err != nil {
		return domain.Page{}, err
	}
	return domain.NewPage(number, size), nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q must be an integer", key)
	}
	return n, nil
}

func queryBool(c *gin.Context, key string) (bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("query parameter %q must be a boolean", key)
	}
	return b, nil
}

// dateLayouts are accepted wherever the API takes a date.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// parseDate accepts RFC 3339 timestamps and plain dates. Empty input yields nil.
func parseDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s must be a date (YYYY-MM-DD) or an RFC 3339 timestamp", field)
}

func queryDate(c *gin.Context, key string) (*time.Time, error) {
	return parseDate("query parameter "+strconv.Quote(key), c.Query(key))
}
