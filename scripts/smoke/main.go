// Command smoke exercises a running enrollment API instance end to end:
// health, calendar resolution and the status read path. Intended for
// post-deploy verification, not for CI.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"
)

type check struct {
	Name     string
	Path     string
	Critical bool
}

type result struct {
	Check    check
	Status   int
	Duration time.Duration
	Err      error
}

func main() {
	var (
		base         string
		prefix       string
		studentID    string
		term         string
		academicYear string
		timeout      time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&prefix, "prefix", "/api/v1", "API route prefix")
	flag.StringVar(&studentID, "student", "", "student ID for status and eligibility checks")
	flag.StringVar(&term, "term", "FIRST", "term for scoped checks")
	flag.StringVar(&academicYear, "year", "2025-2026", "academic year for scoped checks")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	scoped := url.Values{"term": {term}, "academicYear": {academicYear}}.Encode()

	checks := []check{
		{Name: "health", Path: "/health", Critical: true},
		{Name: "ready", Path: "/ready", Critical: true},
		{Name: "current term", Path: prefix + "/terms/current", Critical: true},
		{Name: "subject catalog", Path: prefix + "/subjects?term=" + url.QueryEscape(term), Critical: false},
		{Name: "bulk status", Path: prefix + "/enrollments/status?" + scoped, Critical: false},
	}
	if studentID != "" {
		checks = append(checks,
			check{Name: "student status", Path: prefix + "/enrollments/status/" + url.PathEscape(studentID) + "?" + scoped},
			check{Name: "eligibility", Path: prefix + "/eligibility/" + url.PathEscape(studentID) + "?" + scoped},
		)
	}

	client := &http.Client{Timeout: timeout}
	failedCritical := false
	for _, c := range checks {
		res := run(client, base, c)
		report(res)
		if res.Check.Critical && (res.Err != nil || res.Status != http.StatusOK) {
			failedCritical = true
		}
	}

	if failedCritical {
		log.Println("critical check failed")
		os.Exit(1)
	}
}

func run(client *http.Client, base string, c check) result {
	start := time.Now()
	resp, err := client.Get(base + c.Path)
	if err != nil {
		return result{Check: c, Err: err, Duration: time.Since(start)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return result{Check: c, Status: resp.StatusCode, Duration: time.Since(start)}
}

func report(r result) {
	line := map[string]interface{}{
		"check":       r.Check.Name,
		"status":      r.Status,
		"duration_ms": r.Duration.Milliseconds(),
	}
	if r.Err != nil {
		line["error"] = r.Err.Error()
	}
	out, _ := json.Marshal(line)
	fmt.Println(string(out))
}
