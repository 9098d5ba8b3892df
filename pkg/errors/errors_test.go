package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageIncludesInternal(t *testing.T) {
	base := New("STORY_PARSE_FAILED", "Story could not be parsed", http.StatusBadGateway)
	wrapped := base.WithInternal(errors.New("connection refused"))

	require.Equal(t, "Story could not be parsed: connection refused", wrapped.Error())
	require.Equal(t, "Story could not be parsed", base.Error())
}

func TestFromErrorUnwrapsAppError(t *testing.T) {
	sentinel := New("TALENT_NOT_FOUND", "Talent not found", http.StatusNotFound)
	err := fmt.Errorf("talent service: %w", sentinel)

	resolved := FromError(err)
	require.Equal(t, sentinel.Code, resolved.Code)
	require.Equal(t, http.StatusNotFound, resolved.StatusCode)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	resolved := FromError(errors.New("boom"))
	require.Equal(t, ErrInternalServer.Code, resolved.Code)
	require.Equal(t, http.StatusInternalServerError, resolved.StatusCode)
	require.ErrorContains(t, resolved, "boom")
}

func TestNewBadRequestKeepsStatus(t *testing.T) {
	err := NewBadRequest("story_text is required")
	require.Equal(t, http.StatusBadRequest, err.StatusCode)
	require.Equal(t, "story_text is required", err.Message)
}
