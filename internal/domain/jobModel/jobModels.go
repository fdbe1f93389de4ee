package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	IngestInit InternalStatus = "Init"
	Extracting InternalStatus = "Extracting"
	Chunking   InternalStatus = "Chunking"
	Embedding  InternalStatus = "Embedding"
	Indexing   InternalStatus = "Indexing"
	Error      InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeIngest JobType = "Ingest"
)

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	DocName string `json:"doc_name,omitempty"`
	//StoredPath is where the upload handler parked the file for the worker
	StoredPath string `json:"stored_path,omitempty"`
	//KeepSource marks docs-dir bootstrap files that must survive ingestion
	KeepSource     bool `json:"keep_source,omitempty"`
	PagesExtracted int  `json:"pages_extracted,omitempty"`
	ChunksIndexed  int  `json:"chunks_indexed,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
