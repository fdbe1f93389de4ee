package ingest

import (
	"context"
	"os"
	"time"

	"github.com/clearpathhq/supportbot/internal/domain/commonModels"
	"github.com/clearpathhq/supportbot/internal/domain/jobModel"
	"github.com/clearpathhq/supportbot/internal/rag/embedding"
	"github.com/clearpathhq/supportbot/internal/rag/vectorDB"
	"github.com/clearpathhq/supportbot/pkg/logger_i"
)

var logger = logger_i.NewLogger("document_ingestion")

// ProcessDocumentIngestion walks one staged file through extract, chunk,
// embed and index. The document replaces any previous version of itself
// in one swap, a failure along the way leaves the old version serving.
func ProcessDocumentIngestion(ctx context.Context, job jobModel.Job, e embedding.Embedder, store vectorDB.SearchStore) jobModel.Job {
	log := logger.With("traceId", job.TraceId, "jobId", job.Id, "doc", job.JobPayload.DocName)

	docPath := job.JobPayload.StoredPath

	job.CurrentStep = jobModel.Extracting
	docType := getDocType(docPath)
	if docType == commonModels.ERR {
		log.Error("unsupported document type", "path", docPath)
		return failJob(job, "Unsupported document type", false)
	}

	doc := commonModels.Document{
		Id:                  job.Id,
		Name:                job.JobPayload.DocName,
		LastIngestTimestamp: time.Now(),
		ContentType:         docType,
	}

	pages, err := extractText(docPath, docType)
	if err != nil {
		log.Error("extracting document", "error", err)
		return failJob(job, "Error extracting document content", false)
	}
	job.JobPayload.PagesExtracted = len(pages)

	job.CurrentStep = jobModel.Chunking
	chunks := PrepareChunks(pages, doc, e.ModelVersion())

	job.CurrentStep = jobModel.Embedding
	vectors, err := EmbedChunks(ctx, chunks, e)
	if err != nil {
		log.Error("embedding document", "error", err)
		return failJob(job, "Error embedding document content", true)
	}

	job.CurrentStep = jobModel.Indexing
	if err := store.ReplaceDocument(ctx, doc, chunks, vectors); err != nil {
		log.Error("indexing document", "error", err)
		return failJob(job, "Error indexing document", true)
	}
	job.JobPayload.ChunksIndexed = len(chunks)

	if !job.JobPayload.KeepSource {
		if err := os.Remove(docPath); err != nil && !os.IsNotExist(err) {
			log.Error("removing staged file", "path", docPath, "error", err)
		}
	}

	log.Info("document ingested", "pages", len(pages), "chunks", len(chunks))
	job.CurrentStep = jobModel.Complete
	job.Status = jobModel.JobStatusComplete
	return job
}

// failJob marks the job failed. retry tells the client whether the same
// upload can succeed later, bad files cannot.
func failJob(job jobModel.Job, message string, retry bool) jobModel.Job {
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	job.Error.Message = message
	job.Error.Retry = retry
	return job
}
