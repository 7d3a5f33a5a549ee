package azure

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapError_ErrorCodePrecedence(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		errorCode string
		want      error
	}{
		{"path not found", http.StatusNotFound, "PathNotFound", ErrNotFound},
		{"filesystem not found", http.StatusNotFound, "FilesystemNotFound", ErrNotFound},
		{"blob not found", http.StatusNotFound, "BlobNotFound", ErrNotFound},
		{"authorization failure", http.StatusForbidden, "AuthorizationFailure", ErrForbidden},
		{"permission mismatch", http.StatusForbidden, "AuthorizationPermissionMismatch", ErrForbidden},
		{"authentication failed", http.StatusForbidden, "AuthenticationFailed", ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WrapError(tt.status, tt.errorCode))
		})
	}
}

func TestWrapError_StatusFallback(t *testing.T) {
	assert.Equal(t, ErrUnauthorised, WrapError(http.StatusUnauthorized, ""))
	assert.Equal(t, ErrForbidden, WrapError(http.StatusForbidden, ""))
	assert.Equal(t, ErrNotFound, WrapError(http.StatusNotFound, ""))
	assert.Equal(t, ErrRateLimited, WrapError(http.StatusTooManyRequests, ""))
	assert.Equal(t, ErrBadRequest, WrapError(http.StatusBadRequest, ""))
	assert.Equal(t, ErrServerError, WrapError(http.StatusInternalServerError, ""))
	assert.NoError(t, WrapError(http.StatusOK, ""))
}
