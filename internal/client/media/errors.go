package media

import (
	"errors"
	"fmt"
)

var (
	ErrQuotaExceeded = errors.New("media limit reached")
	ErrImageTooLarge = errors.New("image exceeds the maximum size")
	ErrVideoTooLarge = errors.New("video exceeds the maximum size")
	ErrVideoTooLong  = errors.New("video exceeds the maximum duration")
	ErrNotDeletable  = errors.New("only pending or rejected media can be removed")
	ErrUnsupported   = errors.New("unsupported media type")
)

// APIError carries the HTTP status and server-reported error string from a
// failed backend call.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Code)
}

// UserMessage turns any upload pipeline error into a short string fit for
// display.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrQuotaExceeded):
		return "You have reached the media limit. Remove something first."
	case errors.Is(err, ErrImageTooLarge):
		return "This photo is too large."
	case errors.Is(err, ErrVideoTooLarge):
		return "This video is too large."
	case errors.Is(err, ErrVideoTooLong):
		return "Videos can be at most 60 seconds."
	case errors.Is(err, ErrNotDeletable):
		return "Approved media cannot be removed."
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case 401:
			return "Your session has expired. Please sign in again."
		case 403:
			return "You do not have access to this profile."
		case 404:
			return "This item no longer exists."
		case 409:
			return "You have reached the media limit. Remove something first."
		}
	}
	return "Upload failed. Please try again."
}
