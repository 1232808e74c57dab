// Package wire holds the JSON conventions shared by every admin API call.
package wire

import (
	"encoding/json"
	"strings"
)

// ErrorMessage extracts the human readable message from an error response body.
// The admin API answers `{"error": "..."}`; `{"error": {"message": "..."}}` and
// `{"message": "..."}` are accepted too. Returns "" when none is present.
func ErrorMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	if raw, ok := fields["error"]; ok {
		var msg string
		if json.Unmarshal(raw, &msg) == nil && strings.TrimSpace(msg) != "" {
			return msg
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &nested) == nil && strings.TrimSpace(nested.Message) != "" {
			return nested.Message
		}
	}
	if raw, ok := fields["message"]; ok {
		var msg string
		if json.Unmarshal(raw, &msg) == nil && strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	return ""
}

// MessageOr returns the body's error message, or fallback when it carries none.
func MessageOr(body []byte, fallback string) string {
	if msg := ErrorMessage(body); msg != "" {
		return msg
	}
	return fallback
}
