package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// ErrorEnvelope is the body of every non-2xx response under /orgnav/api.
// Status travels in the response line, not the body.
type ErrorEnvelope struct {
	Status    int    `json:"-"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	// Units lists the organizational unit ids the request referenced but the
	// catalog does not know.
	Units []int `json:"units,omitempty"`
}

func NewError(status int, code, message string) *ErrorEnvelope {
	return &ErrorEnvelope{Status: status, Code: code, Message: message}
}

func (e *ErrorEnvelope) WithRequestID(id string) *ErrorEnvelope {
	e.RequestID = id
	return e
}

func (e *ErrorEnvelope) WithUnits(ids ...int) *ErrorEnvelope {
	e.Units = append(e.Units, ids...)
	return e
}

func (e *ErrorEnvelope) Error() string {
	return strconv.Itoa(e.Status) + " " + e.Code + ": " + e.Message
}

// Write sends the envelope with its status. A zero status is written as 500.
func (e *ErrorEnvelope) Write(w http.ResponseWriter) error {
	status := e.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return WriteJSON(w, status, e)
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}
