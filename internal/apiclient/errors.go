package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/me/uniportal/pkg/model"
)

var (
	// ErrSessionExpired is returned by every call that receives HTTP 401.
	// By the time it is returned the stored session has been cleared.
	ErrSessionExpired = errors.New("session expired, please log in again")

	// ErrEmptyDownload indicates a binary endpoint answered 2xx with no body.
	ErrEmptyDownload = errors.New("downloaded file is empty")

	// ErrNotAuthenticated indicates an operation needs a session and none is stored.
	ErrNotAuthenticated = errors.New("not authenticated: no session")
)

// fallbackMessage is used when a failed response carries no message of its own.
const fallbackMessage = "request failed"

// RequestError is a failure reported by the backend: a non-2xx status other
// than 401, or a 2xx envelope with success=false.
type RequestError struct {
	// Op is the request that failed, e.g. "GET /student/marks.php".
	Op string

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Message is the server's message, or a generic fallback.
	Message string

	// Code is the structured error code, when the server sent one.
	Code model.ErrorCode
}

// Error returns the server's message verbatim.
func (e *RequestError) Error() string {
	return e.Message
}

// TransportError is a failure where no usable response was received:
// connection errors, cancellations, unreadable or malformed bodies.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError is a client-side check that failed before any request
// was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" && !strings.HasPrefix(e.Message, e.Field+" ") {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return "validation error: " + e.Message
}

// IsSessionExpired reports whether err is (or wraps) ErrSessionExpired.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTransport reports whether err happened before a response was received.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusCode returns the HTTP status carried by err, 401 for an expired
// session, or 0 when no response was involved.
func StatusCode(err error) int {
	if errors.Is(err, ErrSessionExpired) {
		return http.StatusUnauthorized
	}
	var re *RequestError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}

// annotateServerError adds a clarifying prefix to validation and transaction
// failures reported by the server. The structured code wins; the substring
// match on the message covers backends that only send text.
func annotateServerError(err error) error {
	var re *RequestError
	if !errors.As(err, &re) {
		return err
	}
	msg := strings.ToLower(re.Message)
	switch {
	case re.Code == model.ErrValidation, re.Code == "" && strings.Contains(msg, "validation"):
		return fmt.Errorf("server rejected the data: %w", err)
	case re.Code == model.ErrTransaction, re.Code == "" && strings.Contains(msg, "transaction"):
		return fmt.Errorf("server could not save the change: %w", err)
	}
	return err
}
