package model

import "time"

// Confidence is the coarse confidence label for a completed run.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Quality is the UI-facing completeness label derived from provenance.
type Quality string

const (
	QualityComplete Quality = "complete"
	QualityPartial  Quality = "partial"
	QualityMinimal  Quality = "minimal"
)

// Summary condenses a run's outcome for callers and list views.
type Summary struct {
	FieldsFound   int        `json:"fields_found"`
	FieldsMissing []string   `json:"fields_missing"`
	Confidence    Confidence `json:"confidence"`
	SourcesUsed   []string   `json:"sources_used"`
	Quality       Quality    `json:"quality"`
}

// Report is the final, immutable output of one pipeline run.
type Report struct {
	EnrichedData FieldMap          `json:"enriched_data"`
	Steps        []EnrichmentStep  `json:"steps"`
	Provenance   map[string]Source `json:"provenance"`
	Summary      Summary           `json:"summary"`
}

// RunStatus represents the current state of an enrichment run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is a persisted enrichment run.
type Run struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Contact   Contact   `json:"contact"`
	Status    RunStatus `json:"status"`
	Report    *Report   `json:"report,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
