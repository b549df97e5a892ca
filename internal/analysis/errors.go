package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned when the inference credential is missing.
	ErrConfiguration = errors.New("inference API key is not set")
	// ErrNoImage is returned when an analysis is requested before any upload.
	ErrNoImage = errors.New("no image uploaded")
)

// ServiceError is a transport or service level failure of the inference call
type ServiceError struct {
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("failed to get analysis from %s API: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// FormatError means the service answered but the payload did not match the result contract
type FormatError struct {
	Provider string
	Payload  string
	Err      error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("failed to get analysis from %s API: invalid response format: %v", e.Provider, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// UserMessage converts any analysis error into the single string shown in the UI
func UserMessage(err error) string {
	var serviceErr *ServiceError
	var formatErr *FormatError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "Configuration Error: API key is not set. Please contact support."
	case errors.Is(err, ErrNoImage):
		return "Please upload a medical scan first."
	case errors.As(err, &formatErr):
		return fmt.Sprintf("Failed to get analysis from %s API: %v", formatErr.Provider, formatErr.Err)
	case errors.As(err, &serviceErr):
		return fmt.Sprintf("Failed to get analysis from %s API: %v", serviceErr.Provider, serviceErr.Err)
	case err.Error() != "":
		return err.Error()
	default:
		return "An unexpected error occurred."
	}
}
