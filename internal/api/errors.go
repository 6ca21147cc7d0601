// internal/api/errors.go
package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// fallbackMessage is returned whenever nothing usable can be extracted from
// an error payload.
const fallbackMessage = "Unknown error"

// ValidationError is a 4xx rejection carrying structured field errors.
// The user can recover by editing their input.
type ValidationError struct {
	StatusCode int
	Detail     json.RawMessage
}

func (e *ValidationError) Error() string {
	if msg := normalizePayload(e.Detail); msg != "" {
		return msg
	}
	return fmt.Sprintf("validation failed (status %d)", e.StatusCode)
}

// ServerError is an opaque backend failure, recoverable by retry.
type ServerError struct {
	StatusCode int
	Body       []byte
}

func (e *ServerError) Error() string {
	if msg := normalizePayload(e.Body); msg != "" {
		return msg
	}
	return fmt.Sprintf("server error (status %d)", e.StatusCode)
}

// NetworkError wraps a transport-level failure (dial, timeout, broken
// connection). Transient and recoverable by retry.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Message normalizes any backend failure into one human-readable string.
// Payloads arrive in several shapes: a bare string, an object with a
// detail/message field, or an array of field-level errors. The function is
// total: it never panics and always returns a non-empty string.
func Message(err error) string {
	if err == nil {
		return fallbackMessage
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallbackMessage
}

// normalizePayload extracts a readable message from a raw error payload.
// Returns "" when the payload holds nothing usable.
func normalizePayload(raw []byte) string {
	raw = []byte(strings.TrimSpace(string(raw)))
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	// Bare string payload.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	// Array of field-level errors: join each element's message field,
	// falling back to the element's JSON when absent.
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		parts := make([]string, 0, len(arr))
		for _, el := range arr {
			if msg := elementMessage(el); msg != "" {
				parts = append(parts, msg)
			}
		}
		return strings.Join(parts, "; ")
	}

	// Object payload: prefer detail, then message. Detail may itself be a
	// string, array, or object.
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		if detail, ok := obj["detail"]; ok {
			if msg := normalizePayload(detail); msg != "" {
				return msg
			}
		}
		if message, ok := obj["message"]; ok {
			if msg := normalizePayload(message); msg != "" {
				return msg
			}
		}
		return ""
	}

	// Not JSON at all: surface the raw text.
	return string(raw)
}

// elementMessage extracts the message from one array element, trying the
// common field names before falling back to the element's own JSON.
func elementMessage(el json.RawMessage) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(el, &obj); err == nil {
		for _, key := range []string{"msg", "message", "detail"} {
			if v, ok := obj[key]; ok {
				var s string
				if err := json.Unmarshal(v, &s); err == nil && strings.TrimSpace(s) != "" {
					return strings.TrimSpace(s)
				}
			}
		}
	}
	var s string
	if err := json.Unmarshal(el, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(el))
}
