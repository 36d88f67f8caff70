package task

import "errors"

// ErrNotFound indicates no task has the requested id.
var ErrNotFound = errors.New("task not found")

// User-facing messages.
const (
	MsgNotFound        = "Task not found"
	MsgTitleRequired   = "Title is required"
	MsgTitleTooLong    = "Title must be at most 255 characters"
	MsgInvalidStatus   = "Valid status (pending/completed) is required"
	MsgInvalidPriority = "Priority must be one of: low, medium, high"
	MsgInvalidDueDate  = "Due date must be a valid date (YYYY-MM-DD)"
)

// ValidationError reports a missing or invalid input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
