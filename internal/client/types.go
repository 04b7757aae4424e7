package client

import (
	"fmt"
	"strings"
)

// Project is a Code Dx project.
type Project struct {
	ID       uint32  `json:"id"       yaml:"id"`
	Name     string  `json:"name"     yaml:"name"`
	ParentID *uint32 `json:"parentId" yaml:"parentId"`
}

// Branch is a branch of a Code Dx project.
type Branch struct {
	ID        uint32 `json:"id"        yaml:"id"`
	Name      string `json:"name"      yaml:"name"`
	ProjectID uint32 `json:"projectId" yaml:"projectId"`
	IsDefault bool   `json:"isDefault" yaml:"isDefault"`
}

// ProjectFilter narrows a project query. Empty criteria are left out of the request.
type ProjectFilter struct {
	Name     string            `json:"name,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// AnalysisJobResponse is returned when an analysis is started, and by job results.
type AnalysisJobResponse struct {
	AnalysisID uint32 `json:"analysisId"`
	JobID      string `json:"jobId"`
}

// AnalysisWithGitSourceJobResponse is returned when an analysis including git source is
// requested. The analysis ID is only known once the job has finished.
type AnalysisWithGitSourceJobResponse struct {
	JobID string `json:"jobId"`
}

// JobStatusResponse is the state of a server-side job.
type JobStatusResponse struct {
	JobID  string    `json:"jobId"`
	Status JobStatus `json:"status"`
}

// JobStatus is the lifecycle state of a job. The wire form is lowercase.
type JobStatus int

const (
	JobQueued JobStatus = iota + 1
	JobRunning
	JobCancelled
	JobCompleted
	JobFailed
)

var jobStatusNames = map[JobStatus]string{
	JobQueued:    "queued",
	JobRunning:   "running",
	JobCancelled: "cancelled",
	JobCompleted: "completed",
	JobFailed:    "failed",
}

// ParseJobStatus parses the lowercase wire form.
func ParseJobStatus(s string) (JobStatus, error) {
	for status, name := range jobStatusNames {
		if name == s {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown job status %q", s)
}

// IsReady reports whether polling can stop. Cancelled is not ready: a cancelled job
// keeps being polled until the strategy stops.
func (s JobStatus) IsReady() bool {
	return s == JobCompleted || s == JobFailed
}

// IsSuccess reports whether the job completed successfully.
func (s JobStatus) IsSuccess() bool {
	return s == JobCompleted
}

// String returns the capitalized name, e.g. "Completed".
func (s JobStatus) String() string {
	name, ok := jobStatusNames[s]
	if !ok {
		return fmt.Sprintf("JobStatus(%d)", int(s))
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// MarshalText implements encoding.TextMarshaler with the wire form.
func (s JobStatus) MarshalText() ([]byte, error) {
	name, ok := jobStatusNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown job status %d", int(s))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler; unknown values are rejected.
func (s *JobStatus) UnmarshalText(text []byte) error {
	status, err := ParseJobStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}
