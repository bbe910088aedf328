package mysql

import "strings"

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// nullIfEmpty maps "" to SQL NULL
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
