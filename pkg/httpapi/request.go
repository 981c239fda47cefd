package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultRequestIDHeader = "X-Request-Id"
	maxBodyBytes           = 1 << 20
)

// RequestID returns the caller-supplied id from header, or a fresh one.
func RequestID(r *http.Request, header string) string {
	if header == "" {
		header = DefaultRequestIDHeader
	}
	if id := strings.TrimSpace(r.Header.Get(header)); id != "" {
		return id
	}
	return uuid.NewString()
}

// DecodeJSON reads a single JSON document, rejecting unknown fields and oversized bodies.
func DecodeJSON(body io.ReadCloser, out any) error {
	defer func() { _ = body.Close() }()
	dec := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
