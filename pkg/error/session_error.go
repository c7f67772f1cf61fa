package error

import "net/http"

// SessionNotFoundError indicates the requested session id is not registered.
type SessionNotFoundError string

func (err SessionNotFoundError) Error() string {
	return string(err)
}

func (err SessionNotFoundError) ErrCode() string {
	return "SESSION_NOT_FOUND"
}

func (err SessionNotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// SessionNotReadyError indicates the session exists but is not in a state
// that can send messages (awaiting scan, disconnected, auth failed).
type SessionNotReadyError string

func (err SessionNotReadyError) Error() string {
	return string(err)
}

func (err SessionNotReadyError) ErrCode() string {
	return "SESSION_NOT_READY"
}

func (err SessionNotReadyError) StatusCode() int {
	return http.StatusConflict
}

// NoAvailableSessionsError indicates no connected session has daily quota left.
type NoAvailableSessionsError string

func (err NoAvailableSessionsError) Error() string {
	return string(err)
}

func (err NoAvailableSessionsError) ErrCode() string {
	return "NO_AVAILABLE_SESSIONS"
}

func (err NoAvailableSessionsError) StatusCode() int {
	return http.StatusServiceUnavailable
}

// AuthFailureError indicates the account credentials were rejected and the
// session needs a new QR scan.
type AuthFailureError string

func (err AuthFailureError) Error() string {
	return string(err)
}

func (err AuthFailureError) ErrCode() string {
	return "AUTH_FAILURE"
}

func (err AuthFailureError) StatusCode() int {
	return http.StatusUnauthorized
}
