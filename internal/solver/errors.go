package solver

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is a non-2xx response from the solver backend, normalized to a
// single display string.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("solver backend error (%d)", e.Status)
}

// ConflictError means applying a run would overwrite existing assignments.
// It is a recoverable branch, not a failure: the caller must present Detail
// to the user and retry with overwrite only after explicit confirmation.
type ConflictError struct {
	Detail string
}

func (e *ConflictError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return "existing assignments would be overwritten"
}

// errorBody is the backend's error envelope. Detail is either a plain string
// or a list of {message} objects depending on the endpoint.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type detailItem struct {
	Message string `json:"message"`
}

// normalizeDetail flattens the backend's structured error payload into one
// display string. Returns "" when nothing usable is present.
func normalizeDetail(body []byte) string {
	var envelope errorBody
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []detailItem
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if msg := strings.TrimSpace(it.Message); msg != "" {
				parts = append(parts, msg)
			}
		}
		return strings.Join(parts, "; ")
	}

	return ""
}
