package commands

import (
	"codedx-client/internal/branching"
	"codedx-client/internal/client"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

// Argument errors of the analyze command.
const (
	errMsgMissingContext = "project context missing"
	errMsgMissingFiles   = "must specify at least one file to analyze"
)

type analyzeOptions struct {
	branchName       string
	includeGitSource bool
	gitBranchName    string
	name             string
	pollInterval     time.Duration
	maxPolls         int
}

// NewAnalyzeCmd creates the analyze command. It uploads files to a project
// context, optionally names the analysis, and waits for the analysis job.
//
// Example usage:
//
//	analyze 42 src.zip
//	analyze "42;branch=main" src.zip findbugs.xml --name nightly
//	analyze 42 extra-results.xml -g --git-branch-name develop
func NewAnalyzeCmd(app *App) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <project-context> <file>...",
		Short: "Analyze some files",
		Long: `Uploads files and starts an analysis.

The project context is <project-id>, <project-id>;branchId=<branch-id> or
<project-id>;branch=<branch-name>.`,
		Args: func(_ *cobra.Command, args []string) error {
			switch len(args) {
			case 0:
				return &UsageError{Msg: errMsgMissingContext}
			case 1:
				return &UsageError{Msg: errMsgMissingFiles}
			}
			if _, err := branching.ParseProjectContext(args[0]); err != nil {
				return &UsageError{Msg: err.Error()}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := branching.ParseProjectContext(args[0])
			if err != nil {
				return &UsageError{Msg: err.Error()}
			}
			status, err := runAnalyze(cmd.Context(), app.client, cmd.OutOrStdout(), project, args[1:], opts)
			if err != nil {
				return operationError("Error during analysis", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "# Polling done\n%s\n", status)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.branchName, "branch-name", "",
		"Code Dx target branch name, created off the project context when it does not exist")
	flags.BoolVarP(&opts.includeGitSource, "include-git-source", "g", false,
		"Include the configured git source in the analysis")
	flags.StringVar(&opts.gitBranchName, "git-branch-name", "", "Git branch to analyze")
	flags.StringVarP(&opts.name, "name", "n", "", "Name of the analysis")
	flags.DurationVar(&opts.pollInterval, "poll-interval", client.DefaultPollInterval,
		"Wait between job status checks")
	flags.IntVar(&opts.maxPolls, "max-polls", 0, "Stop waiting after this many status checks (0 waits until done)")

	return cmd
}

// runAnalyze starts the analysis and polls its job. It returns the last observed status.
func runAnalyze(
	ctx context.Context,
	c *client.Client,
	out io.Writer,
	project branching.ProjectContext,
	files []string,
	opts *analyzeOptions,
) (client.JobStatus, error) {
	if opts.pollInterval <= 0 {
		return 0, errors.New("poll interval must be positive")
	}
	strategy := newPollStrategy(ctx, out, opts)

	var (
		analysisID uint32
		jobID      string
	)
	if opts.includeGitSource || opts.gitBranchName != "" {
		started, err := c.StartAnalysisWithGit(ctx, project, client.GitSourceOptions{
			BranchName:       opts.branchName,
			GitBranchName:    opts.gitBranchName,
			IncludeGitSource: opts.includeGitSource,
		}, files)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(out, "Requesting new analysis with job id %s with included git source\n", started.JobID)

		if _, err := c.PollJobCompletion(ctx, started.JobID, strategy); err != nil {
			return 0, err
		}
		result, err := c.GetJobResult(ctx, started.JobID)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(out, "# Started analysis %d with job id %s with included git source\n",
			result.AnalysisID, started.JobID)
		analysisID, jobID = result.AnalysisID, result.JobID
	} else {
		started, err := c.StartAnalysis(ctx, project, opts.branchName, files)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(out, "# Started analysis %d with job id %s\n", started.AnalysisID, started.JobID)
		analysisID, jobID = started.AnalysisID, started.JobID
	}

	if opts.name != "" {
		if err := c.SetAnalysisName(ctx, project, analysisID, opts.name); err != nil {
			return 0, err
		}
		fmt.Fprintf(out, "# Set analysis %d's name to \"%s\"\n", analysisID, opts.name)
	}

	return c.PollJobCompletion(ctx, jobID, strategy)
}

// newPollStrategy waits pollInterval between checks, bounded by maxPolls and ctx,
// and reports every check that is followed by another on out.
func newPollStrategy(ctx context.Context, out io.Writer, opts *analyzeOptions) client.PollingStrategy {
	strategy := client.FixedInterval[client.JobStatus](opts.pollInterval)
	if opts.maxPolls > 0 {
		strategy = client.MaxAttempts(opts.maxPolls, strategy)
	}
	strategy = client.ContextStrategy(ctx, strategy)

	return client.Observed(strategy, func(d client.Decision[client.JobStatus]) {
		if !d.Continue {
			return
		}
		fmt.Fprintf(out, "# Polling job completion, iteration %d: status = %s\n", d.Iteration, d.State)
	})
}
