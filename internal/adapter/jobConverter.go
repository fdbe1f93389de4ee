package adapter

import (
	"fmt"

	"github.com/clearpathhq/supportbot/internal/api"
	"github.com/clearpathhq/supportbot/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("documents/status/%s", id),
	}
}

func ToJobResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status: string(job.Status),
		Step:   string(job.CurrentStep),
		Ingest: toIngestOutcome(job.JobPayload),
	}

	return api.JobResponse{
		Id:        job.Id,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

// toIngestOutcome is nil until extraction produced something, queued jobs
// report bare status.
func toIngestOutcome(payload jobModel.JobPayload) *api.IngestOutcome {
	if payload.PagesExtracted == 0 && payload.ChunksIndexed == 0 {
		return nil
	}
	return &api.IngestOutcome{
		Document:       payload.DocName,
		PagesExtracted: payload.PagesExtracted,
		ChunksIndexed:  payload.ChunksIndexed,
	}
}

func BadRequest(id string, message string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Id: id,
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: message,
			Retry:   false,
		},
	}
}
