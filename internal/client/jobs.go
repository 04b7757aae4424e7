package client

import (
	"context"
	"net/http"
)

// GetJobStatus fetches the current status of a job.
func (c *Client) GetJobStatus(ctx context.Context, jobID string) (JobStatusResponse, error) {
	var status JobStatusResponse
	err := c.do(ctx, "get_job_status", http.MethodGet, nil, "api", "jobs", jobID).
		expectSuccess().
		decodeJSON(&status)
	return status, err
}

// GetJobResult fetches the result of a finished analysis job.
func (c *Client) GetJobResult(ctx context.Context, jobID string) (AnalysisJobResponse, error) {
	var result AnalysisJobResponse
	err := c.do(ctx, "get_job_result", http.MethodGet, nil, "api", "jobs", jobID, "result").
		expectSuccess().
		decodeJSON(&result)
	return result, err
}
