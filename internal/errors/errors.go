package errors

import "fmt"

// ErrorCode represents a chatstash error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrNotReady       ErrorCode = "NOT_READY"       // 425 (page empty or still streaming; try again later)
	ErrEmptyCapture   ErrorCode = "EMPTY_CAPTURE"   // 422
	ErrUnreachable    ErrorCode = "UNREACHABLE"     // 502 (page source not reachable)
	ErrClipboard      ErrorCode = "CLIPBOARD"       // 500
	ErrStorage        ErrorCode = "STORAGE"         // 500
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// StashError represents a structured error with code, status, and details.
type StashError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *StashError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *StashError {
	return &StashError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewFolderNotFound creates a 404 error for a missing folder.
func NewFolderNotFound(folder string) *StashError {
	return &StashError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("folder not found: %s", folder),
		Details: map[string]any{"folder": folder},
	}
}

// NewTurnNotFound creates a 404 error for a missing turn.
func NewTurnNotFound(folder, id string) *StashError {
	return &StashError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("turn not found: %s in folder %q", id, folder),
		Details: map[string]any{"folder": folder, "id": id},
	}
}

// NewNotReady creates a 425 error for pages with no extractable turn yet.
// Callers should treat this as "try again later", not as a hard failure.
func NewNotReady(msg string) *StashError {
	return &StashError{
		Code:    ErrNotReady,
		Status:  425,
		Message: msg,
	}
}

// NewEmptyCapture creates a 422 error for captures where both fields came
// back empty or sentinel.
func NewEmptyCapture() *StashError {
	return &StashError{
		Code:    ErrEmptyCapture,
		Status:  422,
		Message: "nothing to capture: select some text or open a page with a conversation",
	}
}

// NewUnreachable creates a 502 error for an unreachable page source.
func NewUnreachable(err error) *StashError {
	msg := "page source not reachable; reload the page or check the snapshot path"
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &StashError{
		Code:    ErrUnreachable,
		Status:  502,
		Message: msg,
	}
}

// NewClipboard creates a 500 error for a rejected clipboard write.
func NewClipboard(err error) *StashError {
	return &StashError{
		Code:    ErrClipboard,
		Status:  500,
		Message: fmt.Sprintf("clipboard write failed: %v", err),
	}
}

// NewStorage creates a 500 error for a failed storage read or write.
func NewStorage(err error) *StashError {
	return &StashError{
		Code:    ErrStorage,
		Status:  500,
		Message: fmt.Sprintf("storage operation failed: %v", err),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *StashError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &StashError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a StashError with the given code.
func Is(err error, code ErrorCode) bool {
	if sErr, ok := err.(*StashError); ok {
		return sErr.Code == code
	}
	return false
}
