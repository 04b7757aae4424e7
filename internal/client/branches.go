package client

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

// GetBranches lists the branches of a project.
func (c *Client) GetBranches(ctx context.Context, projectID uint32) ([]Branch, error) {
	var branches []Branch
	err := c.do(ctx, "get_branches", http.MethodGet, nil,
		"x", "projects", strconv.FormatUint(uint64(projectID), 10), "branches").
		expectSuccess().
		decodeJSON(&branches)
	if err != nil {
		return nil, err
	}
	return branches, nil
}

// QueryBranches lists the branches of a project whose name contains name, ignoring case.
// The server has no branch query endpoint, so the filter runs locally.
func (c *Client) QueryBranches(ctx context.Context, projectID uint32, name string) ([]Branch, error) {
	branches, err := c.GetBranches(ctx, projectID)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(name)
	matched := make([]Branch, 0, len(branches))
	for _, b := range branches {
		if strings.Contains(strings.ToLower(b.Name), needle) {
			matched = append(matched, b)
		}
	}
	return matched, nil
}
