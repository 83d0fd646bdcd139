package domain

import "strings"

func normalizeType(raw string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(raw)), ".")
}
