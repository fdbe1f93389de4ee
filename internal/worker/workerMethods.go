package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/clearpathhq/supportbot/internal/config"
	jobmodel "github.com/clearpathhq/supportbot/internal/domain/jobModel"
	"github.com/clearpathhq/supportbot/internal/metrics"
)

// executeJob runs one ingest job end to end. The rag service owns the
// step transitions and the final status, the worker only persists the
// RUNNING transition up front and the finished job afterwards.
func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureExecutionMetrics("ingest_job", time.Since(start))
	}()

	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.IngestJobTimeout)
	defer cancel()

	log := logger.With("traceId", job.TraceId, "jobId", job.Id)
	log.Debug("Processing job", "doc", job.JobPayload.DocName)

	saveJobState(ctx, job, jobmodel.JobStatusRunning)

	job = _ragService.IngestDocument(ctx, job)
	job.EndTime = time.Now()

	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		log.Error("Failed to persist finished job", "err", err)
	}
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker", "reason", reason, "workerCount", atomic.LoadInt64(&currentWorkerCount))
	metrics.DecrementActiveWorkerCount()
}

func saveJobState(ctx context.Context, job jobmodel.Job, status jobmodel.JobStatus) {
	job.Status = status
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update job status in store", "err", err)
	}
}
