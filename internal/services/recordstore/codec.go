package recordstore

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Serialized date/timestamp layouts for every collection.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// ParseID reads a row's integer id (0 when missing or malformed; ReadAll
// has already recovered malformed ids, so 0 only appears for rows that never
// went through the store).
func ParseID(row Row) int {
	id, err := strconv.Atoi(row["id"])
	if err != nil {
		return 0
	}
	return id
}

// FormatID serializes an integer id.
func FormatID(id int) string {
	return strconv.Itoa(id)
}

// FormatAmount serializes a monetary value as a plain 2-decimal string with
// no currency symbol.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// ParseAmount parses a monetary field tolerantly: currency symbols, commas
// and surrounding space are stripped, and anything still unparseable yields
// 0 so one bad field never aborts a batch.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimLeft(s, "$₹ ")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// FormatFloat serializes a non-monetary numeric field (percentages, totals).
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseFloat parses a numeric field, substituting 0 for garbage.
func ParseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatBool serializes a boolean field.
func FormatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// ParseBool parses a boolean field ("True"/"1"/"yes" and friends).
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// FormatDate serializes a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date. An unparseable value is recovered as
// today's date with a warning, so reporting keeps working on dirty rows.
func ParseDate(s string) time.Time {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		log.Printf("Warning: could not parse date %q, substituting today", s)
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	}
	return t
}

// FormatTimestamp serializes a timestamp as YYYY-MM-DD HH:MM:SS.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a timestamp, substituting the current time for
// garbage.
func ParseTimestamp(s string) time.Time {
	t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Now()
	}
	return t
}
