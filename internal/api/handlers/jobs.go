package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

// JobsProvider defines the store methods required by the jobs handler.
type JobsProvider interface {
	ListJobRuns(ctx context.Context, jobName string, limit int) ([]domain.JobRun, error)
}

// JobsHandler serves rematch run history.
type JobsHandler struct {
	store JobsProvider
}

// NewJobsHandler creates a new JobsHandler.
func NewJobsHandler(s JobsProvider) *JobsHandler {
	return &JobsHandler{store: s}
}

// GetJobHistoryInput is the request for a job's history.
type GetJobHistoryInput struct {
	JobName string `path:"job_name" doc:"Job name (e.g. rematch)"`
	Limit   int    `query:"limit" default:"20" minimum:"1" maximum:"500" doc:"Maximum runs to fetch"`
	Status  string `query:"status" enum:"running,succeeded,failed,crashed" doc:"Only return runs with this status"`
}

// GetJobHistoryOutput is the response body for a job's history.
type GetJobHistoryOutput struct {
	Body []domain.JobRun
}

// GetJobHistory returns the run history for a job, newest first.
func (h *JobsHandler) GetJobHistory(
	ctx context.Context,
	input *GetJobHistoryInput,
) (*GetJobHistoryOutput, error) {
	runs, err := h.store.ListJobRuns(ctx, input.JobName, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("fetching job history failed: " + err.Error())
	}

	// The status filter applies to the fetched window, not the full history.
	out := make([]domain.JobRun, 0, len(runs))
	for i := range runs {
		if input.Status == "" || runs[i].Status == input.Status {
			out = append(out, runs[i])
		}
	}
	return &GetJobHistoryOutput{Body: out}, nil
}

// RegisterJobRoutes registers job history endpoints with the Huma API.
func RegisterJobRoutes(api huma.API, h *JobsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-job-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/jobs/{job_name}",
		Summary:     "Get job history",
		Description: "Returns the most recent runs of a job, newest first. Scheduled and manual rematch runs share the rematch history; crashed runs are ones the scheduler found stale at startup.",
		Tags:        []string{"jobs"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.GetJobHistory)
}
