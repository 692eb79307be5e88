// Package http holds small helpers shared by the API handlers: JSON
// responses and query-parameter parsing.
package http

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// Error sends a JSON error response and logs it.
func Error(w http.ResponseWriter, message string, status int) {
	log.Printf("Error: %s (status %d)", message, status)
	JSON(w, status, map[string]string{"error": message})
}

// Decode parses a JSON request body into v.
func Decode(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// ParseDateRange parses start and end date query parameters. Missing values
// default to the trailing defaultDays window ending today.
func ParseDateRange(startStr, endStr string, defaultDays int) (start, end time.Time) {
	today := time.Now()
	end = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)
	start = end.AddDate(0, 0, -defaultDays)

	if startStr != "" {
		if t, err := time.ParseInLocation("2006-01-02", startStr, time.Local); err == nil {
			start = t
		}
	}
	if endStr != "" {
		if t, err := time.ParseInLocation("2006-01-02", endStr, time.Local); err == nil {
			end = t
		}
	}
	return start, end
}

// ParseDate parses a YYYY-MM-DD query or path value; ok is false when the
// value is empty or malformed.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
