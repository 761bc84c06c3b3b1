package dto

import "time"

// RunSummaryDTO is the wire format of a run summary
type RunSummaryDTO struct {
	RunID           string       `json:"runID"`
	Source          string       `json:"source,omitempty"`
	StartedAt       time.Time    `json:"startedAt"`
	DurationSeconds float64      `json:"durationSeconds"`
	State           string       `json:"state"`
	Degraded        bool         `json:"degraded"`
	Counts          CountsDTO    `json:"counts"`
	Failures        []FailureDTO `json:"failures,omitempty"`
}

// CountsDTO holds per configuration and per data point counters
type CountsDTO struct {
	Configurations  int `json:"configurations"`
	Attempted       int `json:"attempted"`
	Succeeded       int `json:"succeeded"`
	Throttled       int `json:"throttled"`
	Skipped         int `json:"skipped"`
	Failed          int `json:"failed"`
	DataPoints      int `json:"dataPoints"`
	Published       int `json:"published"`
	PublishFailures int `json:"publishFailures"`
	UnscoredRegions int `json:"unscoredRegions"`
}

// FailureDTO is one failed item of a run
type FailureDTO struct {
	Dashboard     string `json:"dashboard,omitempty"`
	Configuration string `json:"configuration,omitempty"`
	Region        string `json:"region,omitempty"`
	Metric        string `json:"metric,omitempty"`
	Reason        string `json:"reason"`
	Message       string `json:"message,omitempty"`
}
