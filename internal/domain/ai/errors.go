package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrExternalService the analyze or extract call failed at the transport/service level.
var ErrExternalService = errors.New("ai service error")

// ErrMalformedResponse the structured output does not carry the four required fields.
var ErrMalformedResponse = errors.New("malformed ai response")

// GenericFailureMessage is displayed when a failure carries no message of its own.
const GenericFailureMessage = "An unexpected error occurred."

// Error carries the message shown to the official. Kind is one of the sentinels above.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return GenericFailureMessage
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// ErrMissingCredential the API key is absent at startup. Fatal.
var ErrMissingCredential = errors.New("API_KEY environment variable not set")
