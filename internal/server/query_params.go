package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const dateOnlyLayout = "2006-01-02"

var errInvalidDate = errors.New("invalid_date")

func parseOptionalBool(value string) (*bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseOptionalSnowflakeID(value string) (*snowflake.ID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := snowflake.ParseString(trimmed)
	if err != nil || parsed == 0 {
		return nil, errors.New("invalid_snowflake_id")
	}
	return &parsed, nil
}

func parseSnowflakeID(value string) (snowflake.ID, bool) {
	parsed, err := parseOptionalSnowflakeID(value)
	if err != nil || parsed == nil {
		return 0, false
	}
	return *parsed, true
}

// parseDate accepts a calendar date or an RFC 3339 timestamp and returns
// the UTC calendar date.
func parseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if parsed, err := time.Parse(dateOnlyLayout, trimmed); err == nil {
		return parsed, nil
	}
	parsed, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	y, m, d := parsed.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func parseOptionalTime(value string, endOfDay bool) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed, nil
	}
	parsed, err := time.Parse(dateOnlyLayout, trimmed)
	if err != nil {
		return nil, errInvalidDate
	}
	if endOfDay {
		parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
	}
	return &parsed, nil
}

// pathID reads a snowflake path parameter.
func pathID(c *gin.Context, name string) (snowflake.ID, error) {
	id, ok := parseSnowflakeID(c.Param(name))
	if !ok {
		return 0, newValidationError(name, "invalid_id", "invalid "+name)
	}
	return id, nil
}

// requestDate parses a required date field of a request body.
func requestDate(field, value string) (time.Time, error) {
	parsed, err := parseDate(value)
	if err != nil {
		return time.Time{}, newValidationError(field, "invalid_"+field, "invalid "+field)
	}
	return parsed, nil
}
