package commands

import (
	"codedx-client/internal/client"
	"strconv"

	"github.com/spf13/cobra"
)

// Argument errors of the branches command.
const (
	errMsgMissingProjectID = "must specify a numerical project-id"
	errMsgInvalidProjectID = "project id should be a number"
)

// NewBranchesCmd creates the branches command.
func NewBranchesCmd(app *App) *cobra.Command {
	var (
		rawProjectID string
		name         string
		projectID    uint32
	)

	cmd := &cobra.Command{
		Use:   "branches",
		Short: "Get a list of branches for a project",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := noArgs(cmd, args); err != nil {
				return err
			}
			if !cmd.Flags().Changed("project-id") {
				return &UsageError{Msg: errMsgMissingProjectID}
			}
			id, err := strconv.ParseUint(rawProjectID, 10, 32)
			if err != nil {
				return &UsageError{Msg: errMsgInvalidProjectID}
			}
			projectID = uint32(id)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				branches []client.Branch
				err      error
			)
			if name == "" {
				branches, err = app.client.GetBranches(cmd.Context(), projectID)
			} else {
				branches, err = app.client.QueryBranches(cmd.Context(), projectID, name)
			}
			if err != nil {
				return operationError("Error loading branches", err)
			}
			return client.WriteItems(cmd.OutOrStdout(), app.format, branches)
		},
	}

	cmd.Flags().StringVarP(&rawProjectID, "project-id", "p", "", "Project whose branches are listed")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Case-insensitive part of the branch name")

	return cmd
}
