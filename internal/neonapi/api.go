// Copyright (c) 2025 neonrpc
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package neonapi provides a client for the Neon control-plane HTTP API.
// It covers the project, branch, schema and database endpoints the RPC
// operations depend on and returns response bodies as raw JSON so callers
// can re-serialize them without losing fields the client does not model.
package neonapi

import (
	"context"
	"encoding/json"
)

// API defines the upstream operations the RPC layer depends on.
// Implementations may call the real Neon API or provide mocks for tests.
type API interface {
	ListProjects(ctx context.Context, params ListProjectsParams) (json.RawMessage, error)
	ListProjectBranches(ctx context.Context, params ListBranchesParams) (json.RawMessage, error)
	GetProjectBranch(ctx context.Context, projectID, branchID string) (json.RawMessage, error)
	// DeleteProjectBranch starts branch deletion. The returned body describes
	// the branch and the operations Neon scheduled for it.
	DeleteProjectBranch(ctx context.Context, projectID, branchID string) (json.RawMessage, error)
	// RestoreProjectBranch restores a branch from a source branch, optionally
	// at an LSN or timestamp.
	RestoreProjectBranch(ctx context.Context, projectID, branchID string, req RestoreBranchRequest) (json.RawMessage, error)
	GetProjectBranchSchema(ctx context.Context, params BranchSchemaParams) (*BranchSchema, error)
	GetProjectBranchSchemaComparison(ctx context.Context, params SchemaComparisonParams) (json.RawMessage, error)
	ListProjectBranchDatabases(ctx context.Context, projectID, branchID string) (json.RawMessage, error)
}

// Factory builds an API client for a single credential.
type Factory func(apiKey string) API

// NewFactory returns a Factory that builds HTTP clients sharing opts.
func NewFactory(opts ...Option) Factory {
	return func(apiKey string) API {
		return New(apiKey, opts...)
	}
}

// ListProjectsParams holds query parameters for GET /projects.
type ListProjectsParams struct {
	// Limit caps the page size. Zero leaves the upstream default.
	Limit int
}

// ListBranchesParams holds parameters for GET /projects/{project_id}/branches.
type ListBranchesParams struct {
	ProjectID string
	Limit     int
}

// RestoreBranchRequest is the body of POST .../branches/{branch_id}/restore.
// Nil fields are left out of the body; empty strings are sent as-is.
type RestoreBranchRequest struct {
	SourceBranchID    string  `json:"source_branch_id"`
	SourceLSN         *string `json:"source_lsn,omitempty"`
	SourceTimestamp   *string `json:"source_timestamp,omitempty"`
	PreserveUnderName *string `json:"preserve_under_name,omitempty"`
}

// BranchSchemaParams selects the database and point in time for
// GET .../branches/{branch_id}/schema. Nil LSN/Timestamp are not sent.
type BranchSchemaParams struct {
	ProjectID string
	BranchID  string
	DBName    string
	LSN       *string
	Timestamp *string
}

// BranchSchema is the body returned by the schema endpoint.
type BranchSchema struct {
	SQL string `json:"sql,omitempty"`
}

// SchemaComparisonParams selects both sides of a schema comparison.
// Every non-nil field is forwarded, including empty strings.
type SchemaComparisonParams struct {
	ProjectID     string
	BranchID      string
	DBName        string
	BaseBranchID  *string
	LSN           *string
	Timestamp     *string
	BaseTimestamp *string
}
