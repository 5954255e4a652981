package service

import (
	"errors"
	"net/http"
)

// RemoteError is the single error kind returned by a Service.
// Transport failures and server-reported errors look the same to callers;
// StatusCode is 0 when no HTTP response was received.
type RemoteError struct {
	Op         string // list, get, create, update, delete
	StatusCode int
	Message    string
	Err        error
}

// Error returns the human-readable message.
func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsAuth reports whether the server rejected the caller's credentials.
func (e *RemoteError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// AsRemoteError extracts a *RemoteError from err's chain.
func AsRemoteError(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsAuthError reports whether err is a RemoteError caused by rejected credentials.
func IsAuthError(err error) bool {
	re, ok := AsRemoteError(err)
	return ok && re.IsAuth()
}
