package model

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// Response is the envelope every JSON endpoint of the portal backend returns.
// Data is left raw; each caller decodes the shape it expects.
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    ErrorCode       `json:"code,omitempty"`
}

// ErrorText returns the server-supplied failure text, preferring message over error.
func (r *Response) ErrorText() string {
	if r == nil {
		return ""
	}
	if r.Message != "" {
		return r.Message
	}
	return r.Error
}

// HasData reports whether the envelope carries a non-null data payload.
func (r *Response) HasData() bool {
	if r == nil || len(r.Data) == 0 {
		return false
	}
	s := string(r.Data)
	return s != "null" && s != "{}" && s != "[]" && s != `""`
}

// Request describes a single call to the backend. It is built by a typed
// wrapper and consumed once by the request executor.
type Request struct {
	Method string
	Path   string
	Body   any
	Query  url.Values
	Header http.Header
}

// ErrorCode is a structured error code some backend endpoints attach to failures.
type ErrorCode string

const (
	ErrValidation   ErrorCode = "VALIDATION_ERROR"
	ErrTransaction  ErrorCode = "TRANSACTION_ERROR"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrForbidden    ErrorCode = "FORBIDDEN"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)
