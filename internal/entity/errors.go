package entity

import (
	"errors"
	"fmt"
)

var (
	// Upload errors
	ErrNoImage         = errors.New("no image file provided")
	ErrUnsupportedType = errors.New("invalid image type, supported: png, jpg, jpeg")
	ErrImageTooLarge   = errors.New("image file too large")

	// Session errors
	ErrUnknownProject  = errors.New("unknown project")
	ErrUnknownLanguage = errors.New("unknown display language")
	ErrNothingToRender = errors.New("no tagged image in this session")
)

// ImageDecodeError means the upload is not a decodable image.
type ImageDecodeError struct {
	Err error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("cannot decode image: %v", e.Err)
}

func (e *ImageDecodeError) Unwrap() error { return e.Err }

// ImageEncodeError covers resize, colour conversion and compression failures.
type ImageEncodeError struct {
	Err error
}

func (e *ImageEncodeError) Error() string {
	return fmt.Sprintf("error processing image: %v", e.Err)
}

func (e *ImageEncodeError) Unwrap() error { return e.Err }

// ServiceError is returned when the tagging endpoint answers with anything
// other than a well formed 200 response.
type ServiceError struct {
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("error in API response (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("error in API response (status %d)", e.StatusCode)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// TransportError wraps network failures reaching the tagging endpoint.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
