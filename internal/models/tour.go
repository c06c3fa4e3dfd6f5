package models

import "time"

// TourStatus is the lifecycle state of a tour. Terminal states are
// StatusCompleted and StatusFailed.
type TourStatus string

const (
	StatusUploading  TourStatus = "uploading"
	StatusProcessing TourStatus = "processing"
	StatusCompleted  TourStatus = "completed"
	StatusFailed     TourStatus = "failed"
)

// ProcessingStep names the pipeline stage a tour has most recently reached.
type ProcessingStep string

const (
	StepUpload    ProcessingStep = "upload"
	StepAnalysis  ProcessingStep = "analysis"
	StepDepth     ProcessingStep = "depth"
	StepAssembly  ProcessingStep = "assembly"
	StepCompleted ProcessingStep = "completed"
	StepFailed    ProcessingStep = "failed"
)

type Tour struct {
	ID              int            `json:"id"`
	Title           string         `json:"title"`
	Status          TourStatus     `json:"status"`
	TotalPhotos     int            `json:"totalPhotos"`
	ProcessedPhotos int            `json:"processedPhotos"`
	ProcessingStep  ProcessingStep `json:"processingStep"`
	CreatedAt       time.Time      `json:"createdAt"`
	CompletedAt     *time.Time     `json:"completedAt"`
}

// TourUpdate is a partial update applied with shallow-merge semantics: only
// non-nil fields overwrite the stored record. ID and CreatedAt are immutable
// and have no counterpart here.
type TourUpdate struct {
	Title           *string         `json:"title,omitempty"`
	Status          *TourStatus     `json:"status,omitempty"`
	TotalPhotos     *int            `json:"totalPhotos,omitempty"`
	ProcessedPhotos *int            `json:"processedPhotos,omitempty"`
	ProcessingStep  *ProcessingStep `json:"processingStep,omitempty"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
}
