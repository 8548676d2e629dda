package resilience

import (
	"time"

	"github.com/sells-group/contact-cli/internal/model"
)

// DLQEntry is a contact whose enrichment failed and is parked for a later
// retry. Entries carry the original input so a retry needs no other state.
type DLQEntry struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	Contact      model.Contact `json:"contact"`
	Error        string        `json:"error"`
	ErrorType    string        `json:"error_type"` // "transient" or "permanent"
	FailedStep   string        `json:"failed_step,omitempty"`
	RetryCount   int           `json:"retry_count"`
	MaxRetries   int           `json:"max_retries"`
	NextRetryAt  time.Time     `json:"next_retry_at"`
	CreatedAt    time.Time     `json:"created_at"`
	LastFailedAt time.Time     `json:"last_failed_at"`
}

// CanRetry reports whether the entry has retries remaining.
func (e *DLQEntry) CanRetry() bool {
	return e.RetryCount < e.MaxRetries
}

// DLQFilter narrows DLQ queries.
type DLQFilter struct {
	// ErrorType keeps only "transient" or "permanent" entries; empty keeps all.
	ErrorType string `json:"error_type,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}
