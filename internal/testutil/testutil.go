// Package testutil provides testing utilities for the income tracker.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"earntrack/internal/models"
	"earntrack/internal/services/ledger"
	"earntrack/internal/services/recordstore"
	"earntrack/internal/services/storage"
)

// NewTestLedger creates a ledger over a temporary plaintext data directory.
func NewTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()

	files, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	return ledger.New(recordstore.New(files), ledger.DefaultConfig())
}

// SeedRecord adds one income record with a single source amount, failing the
// test on error.
func SeedRecord(t *testing.T, l *ledger.Ledger, day time.Time, source models.Source, amount, goal float64) models.IncomeRecord {
	t.Helper()

	r := models.NewIncomeRecord(day, goal)
	r.SetAmount(source, amount)
	id, err := l.AddRecord(r)
	if err != nil {
		t.Fatalf("Failed to seed record for %s: %v", day.Format("2006-01-02"), err)
	}
	r.ID = id
	return r
}

// SeedDays adds one record per day for n consecutive days starting at start,
// each with the given earned amount on a single source.
func SeedDays(t *testing.T, l *ledger.Ledger, start time.Time, n int, source models.Source, amount, goal float64) {
	t.Helper()
	for i := 0; i < n; i++ {
		SeedRecord(t, l, start.AddDate(0, 0, i), source, amount, goal)
	}
}

// TestServer wraps httptest.Server with convenience methods
type TestServer struct {
	Server  *httptest.Server
	BaseURL string
	t       *testing.T
}

// NewTestServer creates a new test server using the application's router.
func NewTestServer(t *testing.T, router http.Handler) *TestServer {
	t.Helper()

	server := httptest.NewServer(router)

	return &TestServer{
		Server:  server,
		BaseURL: server.URL,
		t:       t,
	}
}

// GET performs a GET request to the given path
func (ts *TestServer) GET(path string) *http.Response {
	ts.t.Helper()

	resp, err := http.Get(ts.BaseURL + path)
	if err != nil {
		ts.t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

// POSTJSON performs a POST request with a JSON-encoded body
func (ts *TestServer) POSTJSON(path string, v interface{}) *http.Response {
	ts.t.Helper()

	body, err := json.Marshal(v)
	if err != nil {
		ts.t.Fatalf("Failed to marshal body for POST %s: %v", path, err)
	}
	resp, err := http.Post(ts.BaseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		ts.t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

// PUTJSON performs a PUT request with a JSON-encoded body
func (ts *TestServer) PUTJSON(path string, v interface{}) *http.Response {
	ts.t.Helper()

	body, err := json.Marshal(v)
	if err != nil {
		ts.t.Fatalf("Failed to marshal body for PUT %s: %v", path, err)
	}
	req, err := http.NewRequest(http.MethodPut, ts.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		ts.t.Fatalf("Failed to build PUT %s: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("PUT %s failed: %v", path, err)
	}
	return resp
}

// DELETE performs a DELETE request to the given path
func (ts *TestServer) DELETE(path string) *http.Response {
	ts.t.Helper()

	req, err := http.NewRequest(http.MethodDelete, ts.BaseURL+path, nil)
	if err != nil {
		ts.t.Fatalf("Failed to build DELETE %s: %v", path, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("DELETE %s failed: %v", path, err)
	}
	return resp
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// ReadBody reads and returns the response body as a string
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return string(body)
}
