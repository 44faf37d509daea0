package models

import "time"

// Event types
const (
	EventTypeDatasetRequested = "DATASET_REQUESTED"
	EventTypeDatasetCompleted = "DATASET_COMPLETED"
	EventTypeDatasetFailed    = "DATASET_FAILED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// DatasetRequestedEvent asks the generation worker to produce a dataset
type DatasetRequestedEvent struct {
	BaseEvent
	Seed          int64   `json:"seed"`
	RecordCount   int     `json:"record_count"`
	ErrorFraction float64 `json:"error_fraction"`
	WindowStart   string  `json:"window_start,omitempty"`
	WindowEnd     string  `json:"window_end,omitempty"`
}

// DatasetCompletedEvent published when a generation run finishes
type DatasetCompletedEvent struct {
	BaseEvent
	RunID          string  `json:"run_id"`
	Seed           int64   `json:"seed"`
	RecordCount    int     `json:"record_count"`
	RowCount       int     `json:"row_count"`
	CorruptedCount int     `json:"corrupted_count"`
	ErrorFraction  float64 `json:"error_fraction"`
}

// DatasetFailedEvent published when a generation run fails
type DatasetFailedEvent struct {
	BaseEvent
	Seed          int64   `json:"seed"`
	RecordCount   int     `json:"record_count"`
	ErrorFraction float64 `json:"error_fraction"`
	Reason        string  `json:"reason"`
}
