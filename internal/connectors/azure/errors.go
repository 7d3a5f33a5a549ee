package azure

import (
	"errors"
	"net/http"
)

// Error types for Azure Storage API responses.
var (
	// ErrUnauthorised indicates the access token is invalid or expired.
	ErrUnauthorised = errors.New("azure: unauthorised")

	// ErrForbidden indicates the principal lacks permission for the resource.
	ErrForbidden = errors.New("azure: forbidden")

	// ErrNotFound indicates the path or filesystem does not exist.
	ErrNotFound = errors.New("azure: not found")

	// ErrRateLimited indicates the request was throttled.
	ErrRateLimited = errors.New("azure: rate limited")

	// ErrBadRequest indicates the request was malformed.
	ErrBadRequest = errors.New("azure: bad request")

	// ErrServerError indicates a server-side storage error.
	ErrServerError = errors.New("azure: server error")
)

// WrapError converts an HTTP status and x-ms-error-code header value to
// an appropriate error. The error code takes precedence: storage returns
// 404 with distinct codes for missing paths vs missing filesystems, and
// 403 carries authorisation codes.
func WrapError(statusCode int, errorCode string) error {
	switch errorCode {
	case "PathNotFound", "FilesystemNotFound", "BlobNotFound":
		return ErrNotFound
	case "AuthorizationFailure", "AuthorizationPermissionMismatch", "AuthenticationFailed":
		return ErrForbidden
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorised
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusBadRequest:
		return ErrBadRequest
	default:
		if statusCode >= 500 {
			return ErrServerError
		}
		return nil
	}
}

// IsRateLimited checks if the status code indicates throttling.
func IsRateLimited(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests
}

// IsNotFound checks if the status code indicates a missing resource.
func IsNotFound(statusCode int) bool {
	return statusCode == http.StatusNotFound
}
