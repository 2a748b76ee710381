package server

import (
	"github.com/raysh454/stereocheck/internal/app"
	"github.com/raysh454/stereocheck/internal/tracker"
)

// SuitesResponse lists the runnable suites.
type SuitesResponse struct {
	Suites  []string `json:"suites"`
	BaseURL string   `json:"base_url"`
}

// RunResponse is returned by POST /suites/{suite}/runs.
type RunResponse struct {
	*app.RunResult
}

// RunsResponse lists recorded runs, newest first.
type RunsResponse struct {
	Runs []*tracker.Run `json:"runs"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error"`
}
