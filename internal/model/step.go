package model

import "time"

// Source identifies the pipeline step that produced a field value.
type Source string

const (
	SourceInternal          Source = "internal_db"
	SourceExactMatch        Source = "exact_match"
	SourceFuzzySearch       Source = "fuzzy_search"
	SourceIdentityDiscovery Source = "identity_discovery"
	SourceCompanyFallback   Source = "company_fallback"
)

// StepStatus is the terminal state of an enrichment step.
type StepStatus string

const (
	StepStatusRunning   StepStatus = "running"
	StepStatusSuccess   StepStatus = "success"
	StepStatusNoData    StepStatus = "no_data"
	StepStatusNoMatch   StepStatus = "no_match"
	StepStatusNoResults StepStatus = "no_results"
	StepStatusError     StepStatus = "error"
	StepStatusSkipped   StepStatus = "skipped"
)

// EnrichmentStep records one step of a pipeline run. A step record is created
// when the controller decides the step is eligible (or skipped), mutated
// exactly once to its terminal status, and appended to the run's step log.
type EnrichmentStep struct {
	Source      Source     `json:"source"`
	Status      StepStatus `json:"status"`
	FieldsFound []string   `json:"fields_found,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
	Duration    int64      `json:"duration_ms"`
	Message     string     `json:"message,omitempty"`
}
