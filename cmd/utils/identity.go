package utils

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// CallerID reads the caller-supplied userId parameter. No credential
// verification happens anywhere in the system; the value is an opaque
// identity provided by the client.
func CallerID(r *http.Request) (uint, error) {
	raw := r.URL.Query().Get("userId")
	if raw == "" {
		raw = r.FormValue("userId")
	}
	if raw == "" {
		return 0, NewValidationError("missing required parameter: userId", FieldErrors{"userId": "required"})
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, NewValidationError("invalid userId", FieldErrors{"userId": "must be a positive integer"})
	}
	return uint(id), nil
}

// OptionalCallerID returns nil when the request carries no userId parameter.
func OptionalCallerID(r *http.Request) (*uint, error) {
	raw := r.URL.Query().Get("userId")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, NewValidationError("invalid userId", FieldErrors{"userId": "must be a positive integer"})
	}
	uid := uint(id)
	return &uid, nil
}

// PathID parses a numeric path variable registered on the mux route.
func PathID(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, NewValidationError("invalid "+name, FieldErrors{name: "must be a positive integer"})
	}
	return uint(id), nil
}
