package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mcoot/codenames-go/internal/api/apierr"
)

// maxBodyBytes bounds request bodies; every request type is a few fields
const maxBodyBytes = 1 << 16

// WriteError maps err to its API status and code
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError reports a malformed or incomplete request body
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// decodeBody reads a JSON request body into v. On failure it writes the
// error response and returns false. An empty body decodes as {}.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	WriteError(w, NewInvalidRequestError("invalid request body"))
	return false
}
