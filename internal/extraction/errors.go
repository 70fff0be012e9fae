package extraction

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse is returned when the model produced no payload
	ErrEmptyResponse = errors.New("extraction service returned an empty response")
	// ErrMalformedResponse is returned when the payload is not a usable extraction
	ErrMalformedResponse = errors.New("unable to parse extraction response as structured JSON")
	// ErrMissingAPIKey is returned when the client has no credentials
	ErrMissingAPIKey = errors.New("extraction API key is not configured")
)

// RequestError is a non-2xx response from the extraction service
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("extraction request failed (%d): %s", e.Status, e.Body)
}
