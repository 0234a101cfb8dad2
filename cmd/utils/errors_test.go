package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", NewValidationError("bad input", FieldErrors{"title": "blank"}), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", NewNotFoundError("post", 7), http.StatusNotFound, "NOT_FOUND"},
		{"forbidden", &ForbiddenError{Message: "not yours"}, http.StatusForbidden, "FORBIDDEN"},
		{"access denied", &AccessDeniedError{Message: "outside root"}, http.StatusForbidden, "ACCESS_DENIED"},
		{"storage", &StorageError{Op: "write", Err: errors.New("disk full")}, http.StatusInternalServerError, "STORAGE_FAILURE"},
		{"conflict", &ConflictError{Message: "taken"}, http.StatusConflict, "CONFLICT"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)

			var env struct {
				Success bool      `json:"success"`
				Data    ErrorBody `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.False(t, env.Success)
			assert.Equal(t, tc.code, env.Data.Code)
		})
	}
}

func TestValidationFieldDetailSurvivesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, NewValidationError("invalid post", FieldErrors{"title": "must not be blank"}))

	var env struct {
		Data ErrorBody `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "must not be blank", env.Data.Errors["title"])
}

func TestUnknownErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("pq: secret connection string"))

	var env struct {
		Data ErrorBody `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.NotContains(t, env.Data.Message, "secret")
}
