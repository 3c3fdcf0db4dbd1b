package client

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is returned when the client is constructed without a token.
var ErrMissingCredential = errors.New("credential is required")

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassAuth represents 401/403 authentication and authorization errors.
	ErrorClassAuth ErrorClass = "auth"

	// ErrorClassClient represents other 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents transport and timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// APIError is a fatal request failure: a non-2xx response or a transport
// error. Pagination aborts on the first APIError; nothing is retried.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	URL        string
	Body       string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("github %s error (%s): %v", e.ErrorClass, e.URL, e.Err)
	}
	return fmt.Sprintf("github %s error (status %d): %s: %s",
		e.ErrorClass, e.StatusCode, e.URL, e.Body)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus categorizes an HTTP status code for observability.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == 401 || status == 403:
		return ErrorClassAuth
	case status >= 400 && status < 500:
		return ErrorClassClient
	default:
		return ErrorClassServer
	}
}
