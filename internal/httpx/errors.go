package httpx

import (
	"net/http"

	"github.com/sundayezeilo/repostore/internal/errx"
)

// ErrorKindToStatus maps errx.Kind to HTTP status codes.
// Handlers use it for failures that have no fixed wire status of their own.
func ErrorKindToStatus(kind errx.Kind) int {
	switch kind {
	case errx.NotFound:
		return http.StatusNotFound
	case errx.Invalid:
		return http.StatusBadRequest
	case errx.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorKindMessage is the client-facing message for kinds whose underlying
// error text should not leak.
func ErrorKindMessage(kind errx.Kind) string {
	switch kind {
	case errx.Unavailable:
		return "service temporarily unavailable"
	default:
		return "an unexpected error occurred"
	}
}
