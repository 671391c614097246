package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RenderAttemptRecord captures one attempt inside a render loop execution
type RenderAttemptRecord struct {
	Attempt    int    `json:"attempt" bson:"attempt"`
	DurationMs int64  `json:"duration_ms" bson:"duration_ms"`
	Error      string `json:"error,omitempty" bson:"error,omitempty"`
	Repaired   bool   `json:"repaired" bson:"repaired"`
}

// RenderRecord is the archived outcome of one render job, written once when
// the job reaches a terminal status. The in-memory JobStore stays the
// authority for polling; this record exists for after-the-fact inspection.
type RenderRecord struct {
	ID          primitive.ObjectID    `json:"id" bson:"_id,omitempty"`
	JobID       string                `json:"job_id" bson:"job_id"`
	Question    string                `json:"question" bson:"question"`
	Status      string                `json:"status" bson:"status"`
	VideoURL    string                `json:"video_url,omitempty" bson:"video_url,omitempty"`
	Error       string                `json:"error,omitempty" bson:"error,omitempty"`
	Attempts    []RenderAttemptRecord `json:"attempts" bson:"attempts"`
	StartedAt   time.Time             `json:"started_at" bson:"started_at"`
	CompletedAt time.Time             `json:"completed_at" bson:"completed_at"`
}

// RenderSummary is the list-endpoint projection of a RenderRecord
type RenderSummary struct {
	JobID       string `json:"job_id"`
	Question    string `json:"question"`
	Status      string `json:"status"`
	Attempts    int    `json:"attempts"`
	DurationMs  int64  `json:"duration_ms"`
	CompletedAt string `json:"completed_at"`
}

// ToSummary converts a RenderRecord to its list projection
func (r *RenderRecord) ToSummary() RenderSummary {
	var completedAt string
	if !r.CompletedAt.IsZero() {
		completedAt = r.CompletedAt.Format(time.RFC3339)
	}

	return RenderSummary{
		JobID:       r.JobID,
		Question:    r.Question,
		Status:      r.Status,
		Attempts:    len(r.Attempts),
		DurationMs:  r.CompletedAt.Sub(r.StartedAt).Milliseconds(),
		CompletedAt: completedAt,
	}
}
