package models

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of a DIC analysis as reported by the backend.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further server-side transitions are expected.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusCancelled
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusError, StatusCancelled:
		return true
	}
	return false
}

// Processing parameter defaults applied by the backend when a field is omitted.
const (
	DefaultSubsetSize     = 25
	DefaultStep           = 12
	DefaultMaxIter        = 35
	DefaultMinCorrelation = 0.4
)

// Analysis is a DIC job. Status decides which optional groups are meaningful:
// result paths and statistics only once completed, error fields only on error.
type Analysis struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Status        Status `json:"status"`
	StatusDisplay string `json:"status_display"`

	SubsetSize     int     `json:"subset_size"`
	Step           int     `json:"step"`
	MaxIter        int     `json:"max_iter"`
	MinCorrelation float64 `json:"min_correlation"`

	ImageBefore    string  `json:"image_before"`
	ImageAfter     string  `json:"image_after"`
	ImageBeforeURL *string `json:"image_before_url,omitempty"`
	ImageAfterURL  *string `json:"image_after_url,omitempty"`

	ResultJSON          json.RawMessage `json:"result_json,omitempty"`
	ResultImagePath     *string         `json:"result_image_path,omitempty"`
	OriginalImagePath   *string         `json:"original_image_path,omitempty"`
	DeformedImagePath   *string         `json:"deformed_image_path,omitempty"`
	DisplacementMapPath *string         `json:"displacement_map_path,omitempty"`
	ResultImageURL      *string         `json:"result_image_url,omitempty"`
	OriginalImageURL    *string         `json:"original_image_url,omitempty"`
	DeformedImageURL    *string         `json:"deformed_image_url,omitempty"`
	DisplacementMapURL  *string         `json:"displacement_map_url,omitempty"`

	MeanDisplacement         *float64 `json:"mean_displacement,omitempty"`
	MaxDisplacement          *float64 `json:"max_displacement,omitempty"`
	MedianDisplacement       *float64 `json:"median_displacement,omitempty"`
	StdDisplacement          *float64 `json:"std_displacement,omitempty"`
	CorrelationQuality       *float64 `json:"correlation_quality,omitempty"`
	ReliablePointsPercentage *float64 `json:"reliable_points_percentage,omitempty"`

	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ProcessingTime *float64   `json:"processing_time,omitempty"`

	ErrorMessage   *string `json:"error_message,omitempty"`
	ErrorTraceback *string `json:"error_traceback,omitempty"`
}

// HasResults reports whether result artifacts and statistics may be read.
func (a *Analysis) HasResults() bool {
	return a.Status == StatusCompleted
}

// Failed reports whether the error fields carry the job's outcome.
func (a *Analysis) Failed() bool {
	return a.Status == StatusError
}

// ListResponse is one page of analyses as returned by GET /api/analyses/.
type ListResponse struct {
	Count    int        `json:"count"`
	Next     *string    `json:"next,omitempty"`
	Previous *string    `json:"previous,omitempty"`
	Results  []Analysis `json:"results"`
}

// CancelResult is the acknowledgement of POST /api/analyses/{id}/cancel/.
type CancelResult struct {
	Message string `json:"message"`
}

// BulkDeleteResult is the acknowledgement of POST /api/analyses/bulk_delete/.
// DeletedCount may be lower than the number of requested ids.
type BulkDeleteResult struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deleted_count"`
}

// CSRFToken is the body of GET /api/get-csrf-token/.
type CSRFToken struct {
	CSRFToken string `json:"csrfToken"`
}
