package client

import (
	"codedx-client/internal/application/common/logging"
	"codedx-client/internal/branching"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentFileChecks bounds the stat calls made before an upload starts.
const maxConcurrentFileChecks = 4

// Multipart form field names understood by the analysis endpoint.
const (
	fieldBranchName       = "branchName"
	fieldGitBranchName    = "gitBranchName"
	fieldIncludeGitSource = "includeGitSource"
	fieldFilePrefix       = "file"
)

// GitSourceOptions configures an analysis that pulls the project's configured git source.
type GitSourceOptions struct {
	// BranchName is the Code Dx target branch; created from the context when missing.
	BranchName string
	// GitBranchName selects the git branch to fetch.
	GitBranchName string
	// IncludeGitSource asks the server to include the configured git source.
	IncludeGitSource bool
}

type formField struct {
	name  string
	value string
}

// StartAnalysis uploads files to the project context and starts an analysis. A non-empty
// branchName targets (or creates) that Code Dx branch.
func (c *Client) StartAnalysis(
	ctx context.Context,
	project branching.ProjectContext,
	branchName string,
	files []string,
) (AnalysisJobResponse, error) {
	var fields []formField
	if branchName != "" {
		fields = append(fields, formField{fieldBranchName, branchName})
	}

	var result AnalysisJobResponse
	err := c.upload(ctx, "start_analysis", fields, files, func(body *requestBody) error {
		return c.do(ctx, "start_analysis", http.MethodPost, body,
			"api", "projects", project.APIString(), "analysis").
			expectSuccess().
			decodeJSON(&result)
	})
	return result, err
}

// StartAnalysisWithGit starts an analysis that may include the project's git source.
// The request addresses the project by ID only; the branch travels as form fields.
func (c *Client) StartAnalysisWithGit(
	ctx context.Context,
	project branching.ProjectContext,
	opts GitSourceOptions,
	files []string,
) (AnalysisWithGitSourceJobResponse, error) {
	var fields []formField
	if opts.BranchName != "" {
		fields = append(fields, formField{fieldBranchName, opts.BranchName})
	}
	if opts.GitBranchName != "" {
		fields = append(fields, formField{fieldGitBranchName, opts.GitBranchName})
	}
	fields = append(fields, formField{fieldIncludeGitSource, strconv.FormatBool(opts.IncludeGitSource)})

	var result AnalysisWithGitSourceJobResponse
	err := c.upload(ctx, "start_analysis_with_git", fields, files, func(body *requestBody) error {
		return c.do(ctx, "start_analysis_with_git", http.MethodPost, body,
			"api", "projects", project.ProjectIDString(), "analysis").
			expectSuccess().
			decodeJSON(&result)
	})
	return result, err
}

// SetAnalysisName renames an analysis of the context's project.
func (c *Client) SetAnalysisName(
	ctx context.Context,
	project branching.ProjectContext,
	analysisID uint32,
	name string,
) error {
	body, err := jsonBody(map[string]string{"name": name})
	if err != nil {
		return err
	}
	return c.do(ctx, "set_analysis_name", http.MethodPut, body,
		"x", "projects", project.ProjectIDString(), "analyses", strconv.FormatUint(uint64(analysisID), 10)).
		expectSuccess().
		discard()
}

// upload checks and opens every file, then streams a multipart form built from fields
// and files through send. Files are named file0..fileN in argument order.
func (c *Client) upload(
	ctx context.Context,
	operation string,
	fields []formField,
	files []string,
	send func(body *requestBody) error,
) error {
	if err := checkFiles(ctx, files); err != nil {
		return err
	}

	opened, err := openFiles(files)
	if err != nil {
		return err
	}
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	written := make(chan error, 1)
	go func() {
		err := writeForm(form, fields, opened)
		_ = pw.CloseWithError(err)
		written <- err
	}()

	sendErr := send(&requestBody{reader: pr, contentType: form.FormDataContentType()})
	_ = pr.Close()
	writeErr := <-written

	if writeErr != nil && !errors.Is(writeErr, io.ErrClosedPipe) {
		c.logger.ErrorWithError(ctx, writeErr, "Failed to stream upload", logging.Fields{
			"operation":  operation,
			"file_count": len(files),
		})
		return NewLocalIOError(writeErr)
	}
	return sendErr
}

// checkFiles stats every file concurrently so that a missing file fails before any
// bytes are sent.
func checkFiles(ctx context.Context, files []string) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFileChecks)
	for _, path := range files {
		g.Go(func() error {
			info, err := os.Stat(path)
			if err != nil {
				return NewLocalIOError(err)
			}
			if info.IsDir() {
				return NewLocalIOError(fmt.Errorf("%s is a directory", path))
			}
			return nil
		})
	}
	return g.Wait()
}

func openFiles(files []string) ([]*os.File, error) {
	opened := make([]*os.File, 0, len(files))
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			for _, o := range opened {
				_ = o.Close()
			}
			return nil, NewLocalIOError(err)
		}
		opened = append(opened, f)
	}
	return opened, nil
}

func writeForm(form *multipart.Writer, fields []formField, files []*os.File) error {
	for _, field := range fields {
		if err := form.WriteField(field.name, field.value); err != nil {
			return err
		}
	}
	for i, f := range files {
		part, err := form.CreateFormFile(fieldFilePrefix+strconv.Itoa(i), filepath.Base(f.Name()))
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, f); err != nil {
			return fmt.Errorf("failed to read %s: %w", f.Name(), err)
		}
	}
	return form.Close()
}
