package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/clearpathhq/supportbot/internal/config"
	"github.com/clearpathhq/supportbot/internal/domain/chatModel"
	"github.com/clearpathhq/supportbot/internal/domain/jobModel"
	"github.com/clearpathhq/supportbot/internal/job"
	"github.com/clearpathhq/supportbot/internal/metrics"
	"github.com/clearpathhq/supportbot/internal/rag"
	"github.com/clearpathhq/supportbot/pkg/logger_i"
)

var (
	handlerInstance *serviceHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
	logRH           *logger_i.Logger
)

type serviceHandler struct {
	jobs      *job.Service
	rag       rag.Service
	convs     chatModel.ConversationStore
	storeMode string
	startedAt time.Time
}

func InitHandlers(jobService *job.Service, ragService rag.Service, convStore chatModel.ConversationStore, storeMode string) {
	once.Do(func() {
		handlerInstance = &serviceHandler{
			jobs:      jobService,
			rag:       ragService,
			convs:     convStore,
			storeMode: storeMode,
			startedAt: time.Now(),
		}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting handlers")
	})
}

type newJobData struct {
	id         string
	traceId    string
	docName    string
	storedPath string
}

func CreateIngestJob(data newJobData) {
	logJH.Info("Queueing ingest job", "traceId", data.traceId, "jobId", data.id, "doc", data.docName)
	handlerInstance.pushToJobChannel(data)
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.jobs.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

// private methods
func (h *serviceHandler) pushToJobChannel(data newJobData) {
	_job := jobModel.Job{
		Id:          data.id,
		CreatedTime: time.Now(),
		TraceId:     data.traceId,
		Status:      jobModel.JobStatusQueued,
		JobType:     jobModel.JobTypeIngest,
		CurrentStep: jobModel.IngestInit,
	}
	_job.JobPayload.DocName = data.docName
	_job.JobPayload.StoredPath = data.storedPath

	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, data.traceId)
	// persist before the send so status polls see QUEUED immediately
	if err := h.jobs.JobStore.SaveJob(ctxC, _job); err != nil {
		logJH.Error("Failed to persist queued job", "jobId", _job.Id, "err", err)
	}

	//metrics
	metrics.IncrementJobsInQueue()

	h.jobs.JobChannel <- _job //blocking send keeps intake from overwhelming the pool

	total := atomic.AddInt64(&h.jobs.RequestCount, 1)
	logJH.Debug("Ingest jobs accepted", "total", total)

	//ingestion is batch heavy, every job gets the offer of a fresh worker
	//and the dispatcher caps the pool at MaxWorkerCount
	select {
	case h.jobs.DispatcherChannel <- true:
		metrics.StartDispatcherSignalCount()
	default:
		//a signal is already pending
	}
}
