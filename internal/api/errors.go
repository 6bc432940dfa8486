package api

import (
	"errors"
	"fmt"
)

// Error classes mirror how callers are expected to present failures: auth
// failures end the session globally, conflicts are shown with the server's
// detail verbatim, not-found renders as an empty state, and network errors
// are generic and retryable. The server reports its user-facing message in a
// "detail" field of the error body; each typed error carries it through.

// AuthError is an authorization failure: bad credentials on login, or an
// expired/invalid session on any other call. The transport has already
// cleared the session by the time a caller sees this.
type AuthError struct {
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail == "" {
		return "not authenticated"
	}
	return e.Detail
}

// ValidationError is any 4xx other than 401/404/409; it belongs on the
// originating form or flag, not in a global handler.
type ValidationError struct {
	Status int
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("request rejected (status %d)", e.Status)
	}
	return e.Detail
}

// ConflictError is a delete blocked by a server-side dependency. Detail is
// the server's message and must be surfaced verbatim.
type ConflictError struct {
	Detail string
}

func (e *ConflictError) Error() string {
	if e.Detail == "" {
		return "conflict with existing data"
	}
	return e.Detail
}

// NotFoundError means the referenced entity does not exist (HTTP 404).
type NotFoundError struct {
	Detail string
}

func (e *NotFoundError) Error() string {
	if e.Detail == "" {
		return "not found"
	}
	return e.Detail
}

// NetworkError wraps a failure where the request never produced a response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network error: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a 5xx response.
type ServerError struct {
	Status int
	Detail string
}

func (e *ServerError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server error (status %d)", e.Status)
	}
	return e.Detail
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var a *AuthError
	return errors.As(err, &a)
}

// Detail extracts the user-displayable message from err, falling back to the
// given generic message when the error carries none.
func Detail(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var (
		auth       *AuthError
		validation *ValidationError
		conflict   *ConflictError
		notFound   *NotFoundError
		server     *ServerError
	)
	switch {
	case errors.As(err, &auth):
		if auth.Detail != "" {
			return auth.Detail
		}
	case errors.As(err, &validation):
		if validation.Detail != "" {
			return validation.Detail
		}
	case errors.As(err, &conflict):
		if conflict.Detail != "" {
			return conflict.Detail
		}
	case errors.As(err, &notFound):
		if notFound.Detail != "" {
			return notFound.Detail
		}
	case errors.As(err, &server):
		if server.Detail != "" {
			return server.Detail
		}
	}
	return fallback
}
