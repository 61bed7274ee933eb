package respond

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Envelope is the uniform response shape. Body carries the payload; the
// envelope fields themselves are what handlers return to the router.
type Envelope struct {
	StatusCode      int  `json:"statusCode"`
	Body            any  `json:"body"`
	IsBase64Encoded bool `json:"isBase64Encoded"`
}

func OK(body any) Envelope {
	return Envelope{StatusCode: http.StatusOK, Body: body}
}

func Error(status int, format string, args ...any) Envelope {
	return Envelope{StatusCode: status, Body: fmt.Sprintf(format, args...)}
}

// NoContent is a bodyless 204. net/http suppresses bodies on 204 responses,
// so any message attached to one would be dropped on the floor.
func NoContent() Envelope {
	return Envelope{StatusCode: http.StatusNoContent}
}

// Write serializes the envelope body with the envelope's status code. A 204
// is written as a bare status line.
func Write(w http.ResponseWriter, env Envelope) {
	mergeCORSHeaders(w)
	if env.StatusCode == http.StatusNoContent {
		w.WriteHeader(env.StatusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.StatusCode)
	_ = json.NewEncoder(w).Encode(env.Body)
}

func mergeCORSHeaders(w http.ResponseWriter) {
	headers := w.Header()
	if headers.Get("Access-Control-Allow-Origin") == "" {
		headers.Set("Access-Control-Allow-Origin", "*")
	}
	headers.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}
