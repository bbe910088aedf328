package middleware

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bryanwahyu/complaint-analyst/internal/domain/complaints"
)

// ValidateSessionID checks that a session id is a canonical UUID.
func ValidateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("session ID cannot be empty")
	}
	u, err := uuid.Parse(id)
	if err != nil || u.String() != strings.ToLower(id) {
		return fmt.Errorf("invalid session ID format")
	}
	return nil
}

// ValidateHistoryID parses a history id from a path segment.
func ValidateHistoryID(raw string) (complaints.HistoryID, error) {
	id, err := complaints.ParseHistoryID(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid history ID: %q", raw)
	}
	return id, nil
}

// ValidateLanguage accepts the bundled example languages only.
func ValidateLanguage(lang string) (complaints.Language, error) {
	l := complaints.Language(strings.ToLower(strings.TrimSpace(lang)))
	switch l {
	case complaints.LanguageEnglish, complaints.LanguageMalayalam:
		return l, nil
	}
	return "", fmt.Errorf("invalid language: %s (allowed: en, ml)", lang)
}

// SanitizeFilename keeps only the base name of an uploaded file, without control characters.
func SanitizeFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	for _, r := range name {
		if r >= 32 && r != 127 {
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" || out == "." || out == ".." {
		return "upload"
	}
	return out
}

// ValidatePage normalizes the page number.
func ValidatePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
