package complaints

import (
	"mime"
	"strings"
)

// MediaTypePDF is the only non-image type accepted for extraction.
const MediaTypePDF = "application/pdf"

// NormalizeMediaType strips parameters and lowercases the type.
func NormalizeMediaType(mediaType string) string {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mediaType))
	}
	return mt
}

// IsSupportedMediaType reports whether a file of this type can be transcribed.
func IsSupportedMediaType(mediaType string) bool {
	mt := NormalizeMediaType(mediaType)
	return strings.HasPrefix(mt, "image/") || mt == MediaTypePDF
}
