package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

// JobHistoryQuery narrows a job history request. Zero values use the server
// defaults.
type JobHistoryQuery struct {
	Limit  int
	Status string
}

func (q JobHistoryQuery) encode() string {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// GetJobHistory returns recent runs of a job, newest first.
func (c *Client) GetJobHistory(ctx context.Context, jobName string, q JobHistoryQuery) ([]domain.JobRun, error) {
	path := fmt.Sprintf("/api/v1/jobs/%s", url.PathEscape(jobName)) + q.encode()

	var runs []domain.JobRun
	if err := c.get(ctx, path, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}
