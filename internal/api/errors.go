package api

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Error is a failure reported by the server. The message is surfaced to the
// user verbatim; domain validation failures are never retried.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return e.Message
}

// newError normalizes the server's error payload. The API answers with
// {"error": "..."} or {"message": "..."} for single messages, and with a
// field-to-messages map for registration validation failures; the map is
// stringified for display.
func newError(status int, body []byte) *Error {
	e := &Error{Status: status}

	var single struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &single); err == nil {
		switch {
		case single.Error != "":
			e.Message = single.Error
			return e
		case single.Detail != "":
			e.Message = single.Detail
			return e
		case single.Message != "":
			e.Message = single.Message
			return e
		}
	}

	var fields map[string][]string
	if err := json.Unmarshal(body, &fields); err == nil && len(fields) > 0 {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+": "+strings.Join(fields[name], "; "))
		}
		e.Message = strings.Join(parts, "; ")
	}
	return e
}
