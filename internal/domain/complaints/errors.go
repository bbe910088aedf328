package complaints

import "errors"

var (
	// ErrEmptyInput analysis was requested with a blank draft. Never surfaced to the user.
	ErrEmptyInput = errors.New("complaint text is empty")

	// ErrUnsupportedFileType the upload is neither an image nor a PDF.
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// UnsupportedFileTypeMessage is shown inline next to the input.
const UnsupportedFileTypeMessage = "File type not supported. Please upload an image or PDF file."
