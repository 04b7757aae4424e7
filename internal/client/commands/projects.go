package commands

import (
	"codedx-client/internal/client"
	"strings"

	"github.com/spf13/cobra"
)

const errMsgMetadataPairs = "metadata must be given as key value pairs"

// NewProjectsCmd creates the projects command. Without criteria it lists every
// project; --name and --metadata switch to a server-side query.
//
// Example usage:
//
//	projects
//	projects --name goat
//	projects -m Owner alice -m Tier=gold
func NewProjectsCmd(app *App) *cobra.Command {
	var (
		name     string
		metadata []string
		filter   *client.ProjectFilter
	)

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Get a list of projects",
		Long: `Lists projects, one per line.

Metadata criteria are given as "-m FIELD VALUE" or "-m FIELD=VALUE" and may be repeated.`,
		Args: func(_ *cobra.Command, args []string) error {
			pairs, err := metadataPairs(metadata, args)
			if err != nil {
				return err
			}
			filter = nil
			if name != "" || len(pairs) > 0 {
				filter = &client.ProjectFilter{Name: name}
				if len(pairs) > 0 {
					filter.Metadata = pairs
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				projects []client.Project
				err      error
			)
			if filter == nil {
				projects, err = app.client.GetProjects(cmd.Context())
			} else {
				projects, err = app.client.QueryProjects(cmd.Context(), *filter)
			}
			if err != nil {
				return operationError("Error loading projects", err)
			}
			return client.WriteItems(cmd.OutOrStdout(), app.format, projects)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Case-insensitive part of the project name")
	cmd.Flags().StringArrayVarP(&metadata, "metadata", "m", nil, "Metadata criterion FIELD VALUE or FIELD=VALUE")

	return cmd
}

// metadataPairs matches every --metadata value with its VALUE. A FIELD=VALUE
// entry carries both; a bare FIELD takes the next positional argument.
func metadataPairs(fields, positional []string) (map[string]string, error) {
	pairs := make(map[string]string, len(fields))
	next := 0
	for _, field := range fields {
		if key, value, ok := strings.Cut(field, "="); ok {
			pairs[key] = value
			continue
		}
		if next >= len(positional) {
			return nil, &UsageError{Msg: errMsgMetadataPairs}
		}
		pairs[field] = positional[next]
		next++
	}
	if next != len(positional) {
		return nil, &UsageError{Msg: errMsgMetadataPairs}
	}
	return pairs, nil
}
