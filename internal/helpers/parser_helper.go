package helpers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}

// ParseDateTime accepts RFC3339 timestamps, falling back to bare dates.
func ParseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

// DateOf truncates a timestamp to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Pagination reads the page/limit query params with the listing defaults.
func Pagination(c *gin.Context) (page, limit int, err error) {
	page, err = StringToInt(c.DefaultQuery("page", "1"))
	if err != nil {
		return 0, 0, err
	}
	limit, err = StringToInt(c.DefaultQuery("limit", "10"))
	if err != nil {
		return 0, 0, err
	}
	if page < 1 || limit < 1 {
		return 0, 0, errors.New("page and limit must be >= 1")
	}
	return page, limit, nil
}

// FilterContains applies a case-insensitive substring match. LOWER/LIKE keeps
// the generated SQL portable across Postgres and the SQLite test database.
func FilterContains(query *gorm.DB, column, value string) *gorm.DB {
	if value == "" {
		return query
	}
	return query.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(value)+"%")
}
