package core

import (
	"errors"
	"net/http"
)

// ErrNotConfigured means a required upstream credential is missing.
var ErrNotConfigured = errors.New("upstream not configured")

type UpstreamKind string

const (
	UpstreamAuth      UpstreamKind = "auth"
	UpstreamNotFound  UpstreamKind = "not_found"
	UpstreamRateLimit UpstreamKind = "rate_limit"
	UpstreamOther     UpstreamKind = "other"
)

// UpstreamError is a failure reported by a third-party API.
type UpstreamError struct {
	Kind   UpstreamKind
	Status int
	Msg    string
}

func (e *UpstreamError) Error() string {
	return e.Msg
}

// HTTPStatus maps the failure kind onto the status returned to our caller.
func (e *UpstreamError) HTTPStatus() int {
	switch e.Kind {
	case UpstreamAuth:
		return http.StatusUnauthorized
	case UpstreamNotFound:
		return http.StatusNotFound
	case UpstreamRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
