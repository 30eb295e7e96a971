// Copyright (c) 2025 neonrpc
// Licensed under the MIT License. See LICENSE file in the project root for details.

package neonapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// ListProjects calls GET /projects.
func (c *Client) ListProjects(ctx context.Context, params ListProjectsParams) (json.RawMessage, error) {
	q := url.Values{}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	var out json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/projects", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProjectBranches calls GET /projects/{project_id}/branches.
func (c *Client) ListProjectBranches(ctx context.Context, params ListBranchesParams) (json.RawMessage, error) {
	p, err := segment("project id", params.ProjectID)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	var out json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/projects/"+p+"/branches", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProjectBranch calls GET /projects/{project_id}/branches/{branch_id}.
func (c *Client) GetProjectBranch(ctx context.Context, projectID, branchID string) (json.RawMessage, error) {
	path, err := branchPath(projectID, branchID)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteProjectBranch calls DELETE /projects/{project_id}/branches/{branch_id}.
func (c *Client) DeleteProjectBranch(ctx context.Context, projectID, branchID string) (json.RawMessage, error) {
	path, err := branchPath(projectID, branchID)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RestoreProjectBranch calls POST /projects/{project_id}/branches/{branch_id}/restore.
func (c *Client) RestoreProjectBranch(ctx context.Context, projectID, branchID string, req RestoreBranchRequest) (json.RawMessage, error) {
	path, err := branchPath(projectID, branchID)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	if err := c.doJSON(ctx, http.MethodPost, path+"/restore", nil, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProjectBranchSchema calls GET /projects/{project_id}/branches/{branch_id}/schema.
func (c *Client) GetProjectBranchSchema(ctx context.Context, params BranchSchemaParams) (*BranchSchema, error) {
	path, err := branchPath(params.ProjectID, params.BranchID)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("db_name", params.DBName)
	setOptional(q, "lsn", params.LSN)
	setOptional(q, "timestamp", params.Timestamp)

	var out BranchSchema
	if err := c.doJSON(ctx, http.MethodGet, path+"/schema", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProjectBranchSchemaComparison calls GET .../branches/{branch_id}/compare_schema.
func (c *Client) GetProjectBranchSchemaComparison(ctx context.Context, params SchemaComparisonParams) (json.RawMessage, error) {
	path, err := branchPath(params.ProjectID, params.BranchID)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("db_name", params.DBName)
	setOptional(q, "base_branch_id", params.BaseBranchID)
	setOptional(q, "lsn", params.LSN)
	setOptional(q, "timestamp", params.Timestamp)
	setOptional(q, "base_timestamp", params.BaseTimestamp)

	var out json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, path+"/compare_schema", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProjectBranchDatabases calls GET .../branches/{branch_id}/databases.
func (c *Client) ListProjectBranchDatabases(ctx context.Context, projectID, branchID string) (json.RawMessage, error) {
	path, err := branchPath(projectID, branchID)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, path+"/databases", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
