package domain

import "time"

// Status tracks a publication record through its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusFailed    Status = "failed"
)

// PublicationRecord is one ledger row per product sync attempt. Fields
// snapshot catalog data at selection time; later catalog edits do not
// affect the record.
type PublicationRecord struct {
	ID           string
	SKU          string
	ProductName  string
	ProductType  string
	ImageURL     string
	Status       Status
	ScheduledAt  time.Time
	PublishedAt  *time.Time
	PostID       string
	Message      string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MarkPublished moves the record to its terminal published state. The
// post identifier and rendered message are shared across the whole batch
// because the batch is one physical post.
func (r *PublicationRecord) MarkPublished(postID, message string, at time.Time) {
	r.Status = StatusPublished
	r.PostID = postID
	r.Message = message
	r.PublishedAt = &at
	r.ErrorMessage = ""
}

// MarkFailed records the failure reason. Failed records stay eligible
// for re-selection on a later run; only published SKUs are excluded.
func (r *PublicationRecord) MarkFailed(reason string, at time.Time) {
	r.Status = StatusFailed
	r.ErrorMessage = reason
	r.PublishedAt = &at
}

// RecordFilter narrows ledger queries.
type RecordFilter struct {
	Statuses        []Status
	SKU             string
	ScheduledBefore *time.Time
	Limit           int
}
