package gateway

import "fmt"

// The error taxonomy every store re-raises. Classification happens once, at
// the gateway boundary; callers use errors.As to branch on the class.

// NetworkError means no response reached the client at all (dial failure,
// timeout, connection reset).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError is an HTTP 401: the session is invalid or expired. The gateway
// has already cleared the persisted session when this is returned.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication required"
	}
	return e.Message
}

// PermissionError is an HTTP 403.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	if e.Message == "" {
		return "permission denied"
	}
	return e.Message
}

// NotFoundError is an HTTP 404.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message == "" {
		return "not found"
	}
	return e.Message
}

// ServerError is an HTTP 500.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return "server error"
	}
	return e.Message
}

// BusinessError carries a non-success application code from the response
// envelope (the HTTP exchange itself succeeded).
type BusinessError struct {
	Code    int
	Message string
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("request failed (code %d): %s", e.Code, e.Message)
}

// ValidationError is raised client-side before any network dispatch. No
// loading flag is toggled and no request side effects occur for it.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
