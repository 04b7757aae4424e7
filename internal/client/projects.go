package client

import (
	"context"
	"net/http"
)

// GetProjects lists every project visible to the caller.
func (c *Client) GetProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	err := c.do(ctx, "get_projects", http.MethodGet, nil, "x", "projects").
		expectSuccess().
		decodeJSON(&projects)
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// QueryProjects lists the projects matching filter.
func (c *Client) QueryProjects(ctx context.Context, filter ProjectFilter) ([]Project, error) {
	body, err := jsonBody(struct {
		Filter ProjectFilter `json:"filter"`
	}{Filter: filter})
	if err != nil {
		return nil, err
	}

	var projects []Project
	err = c.do(ctx, "query_projects", http.MethodPost, body, "x", "projects", "query").
		expectSuccess().
		decodeJSON(&projects)
	if err != nil {
		return nil, err
	}
	return projects, nil
}
