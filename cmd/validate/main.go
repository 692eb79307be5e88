// Package main provides a CLI tool for validating income tracker endpoints.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type endpoint struct {
	path        string
	method      string
	contentType string
	contains    []string
}

var endpoints = []endpoint{
	// API
	{path: "/api/health", method: "GET", contentType: "application/json", contains: []string{`"status":"ok"`}},

	// Records
	{path: "/api/records", method: "GET", contentType: "application/json", contains: nil},
	{path: "/api/records/today", method: "GET", contentType: "application/json", contains: []string{"goal_inc"}},

	// Summaries
	{path: "/api/summary/weekly", method: "GET", contentType: "application/json", contains: []string{"daily_breakdown"}},
	{path: "/api/summary/monthly", method: "GET", contentType: "application/json", contains: []string{"weekly_breakdown"}},
	{path: "/api/summary/monthly/history", method: "GET", contentType: "application/json", contains: nil},
	{path: "/api/summary/yearly", method: "GET", contentType: "application/json", contains: []string{"monthly_breakdown"}},
	{path: "/api/summary/overview", method: "GET", contentType: "application/json", contains: []string{"total_records"}},
	{path: "/api/decompose?earned=650", method: "GET", contentType: "application/json", contains: []string{"base_achieved"}},

	// Sources
	{path: "/api/sources/analysis", method: "GET", contentType: "application/json", contains: []string{"rankings"}},
	{path: "/api/sources/targets", method: "GET", contentType: "application/json", contains: []string{"targets"}},
	{path: "/api/sources/recommendations", method: "GET", contentType: "application/json", contains: []string{"recommendations"}},
	{path: "/api/sources/yoy", method: "GET", contentType: "application/json", contains: []string{"source_comparisons"}},
	{path: "/api/sources/weightage-history", method: "GET", contentType: "application/json", contains: nil},

	// Goals and settings
	{path: "/api/goals", method: "GET", contentType: "application/json", contains: nil},
	{path: "/api/goals/current", method: "GET", contentType: "application/json", contains: []string{"monthly"}},
	{path: "/api/goals/recommendations", method: "GET", contentType: "application/json", contains: []string{"confidence_score"}},
	{path: "/api/settings/base-income", method: "GET", contentType: "application/json", contains: []string{"weekday_base"}},
	{path: "/api/targets/weekly", method: "GET", contentType: "application/json", contains: []string{"weekly_target"}},

	// Encryption
	{path: "/api/encryption/status", method: "GET", contentType: "application/json", contains: []string{"encrypted"}},
}

type result struct {
	endpoint endpoint
	status   int
	duration time.Duration
	err      error
	body     string
}

func main() {
	url := flag.String("url", "http://localhost:8080", "Base URL of the server to validate")
	verbose := flag.Bool("v", false, "Verbose output")
	timeout := flag.Int("timeout", 10, "Request timeout in seconds")
	flag.Parse()

	client := &http.Client{
		Timeout: time.Duration(*timeout) * time.Second,
	}

	fmt.Printf("Validating server at %s\n", *url)
	fmt.Printf("Testing %d endpoints...\n\n", len(endpoints))

	var passed, failed int

	for _, ep := range endpoints {
		r := validateEndpoint(client, *url, ep)

		if r.err != nil {
			failed++
			fmt.Printf("FAIL %s %s\n", ep.method, ep.path)
			fmt.Printf("     Error: %v\n", r.err)
		} else if r.status != http.StatusOK {
			failed++
			fmt.Printf("FAIL %s %s\n", ep.method, ep.path)
			fmt.Printf("     Status: %d (expected 200)\n", r.status)
		} else {
			passed++
			if *verbose {
				fmt.Printf("PASS %s %s (%v)\n", ep.method, ep.path, r.duration)
			}
		}
	}

	fmt.Printf("\n========================================\n")
	fmt.Printf("Results: %d passed, %d failed\n", passed, failed)

	if failed > 0 {
		os.Exit(1)
	}
}

func validateEndpoint(client *http.Client, baseURL string, ep endpoint) result {
	start := time.Now()

	req, err := http.NewRequest(ep.method, baseURL+ep.path, nil)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := client.Do(req)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("failed to read body: %w", err)}
	}

	r := result{
		endpoint: ep,
		status:   resp.StatusCode,
		duration: time.Since(start),
		body:     string(body),
	}

	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, ep.contentType) {
		r.err = fmt.Errorf("wrong content type: got %q, expected %q", ct, ep.contentType)
		return r
	}

	if ep.contentType == "application/json" {
		var js interface{}
		if err := json.Unmarshal(body, &js); err != nil {
			r.err = fmt.Errorf("invalid JSON: %w", err)
			return r
		}
	}

	for _, needle := range ep.contains {
		if !strings.Contains(string(body), needle) {
			r.err = fmt.Errorf("missing expected content: %q", needle)
			return r
		}
	}

	return r
}
