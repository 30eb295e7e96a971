package operations

import (
	"context"

	"neonrpc/cli/internal/neonapi"
)

// ListBranchesParams selects the project whose branches are listed.
type ListBranchesParams struct {
	Env
	ProjectID string
}

// BranchParams addresses one branch.
type BranchParams struct {
	Env
	ProjectID string
	BranchID  string
}

// RestoreBranchParams describes a restore. Nil optionals are omitted upstream,
// empty strings are sent. LSN and timestamp are not checked for exclusivity.
type RestoreBranchParams struct {
	Env
	ProjectID         string
	BranchID          string
	SourceBranchID    string
	SourceLSN         *string
	SourceTimestamp   *string
	PreserveUnderName *string
}

// RetrieveSchemaParams selects a database and an optional point in time.
type RetrieveSchemaParams struct {
	Env
	ProjectID string
	BranchID  string
	DBName    string
	LSN       *string
	Timestamp *string
}

// CompareSchemasParams selects both sides of a comparison.
type CompareSchemasParams struct {
	Env
	ProjectID     string
	BranchID      string
	DBName        string
	BaseBranchID  *string
	LSN           *string
	Timestamp     *string
	BaseTimestamp *string
}

// ListBranches returns the first page of a project's branches.
func ListBranches(ctx context.Context, p ListBranchesParams) (Envelope, error) {
	api, err := p.client(ctx)
	if err != nil {
		return Envelope{}, err
	}
	body, err := api.ListProjectBranches(ctx, neonapi.ListBranchesParams{
		ProjectID: p.ProjectID,
		Limit:     p.pageSize(),
	})
	if err != nil {
		return Envelope{}, err
	}
	return JSON(body)
}

// GetBranch returns one branch. A missing branch surfaces as a 404 *neonapi.APIError.
func GetBranch(ctx context.Context, p BranchParams) (Envelope, error) {
	api, err := p.client(ctx)
	if err != nil {
		return Envelope{}, err
	}
	body, err := api.GetProjectBranch(ctx, p.ProjectID, p.BranchID)
	if err != nil {
		return Envelope{}, err
	}
	return JSON(body)
}

// DeleteBranch starts deletion and confirms without waiting for completion.
func DeleteBranch(ctx context.Context, p BranchParams) (Envelope, error) {
	api, err := p.client(ctx)
	if err != nil {
		return Envelope{}, err
	}
	if _, err := api.DeleteProjectBranch(ctx, p.ProjectID, p.BranchID); err != nil {
		return Envelope{}, err
	}
	return Confirm(BranchDeleted), nil
}

// RestoreBranch starts a restore and confirms without waiting for completion.
func RestoreBranch(ctx context.Context, p RestoreBranchParams) (Envelope, error) {
	api, err := p.client(ctx)
	if err != nil {
		return Envelope{}, err
	}
	_, err = api.RestoreProjectBranch(ctx, p.ProjectID, p.BranchID, neonapi.RestoreBranchRequest{
		SourceBranchID:    p.SourceBranchID,
		SourceLSN:         p.SourceLSN,
		SourceTimestamp:   p.SourceTimestamp,
		PreserveUnderName: p.PreserveUnderName,
	})
	if err != nil {
		return Envelope{}, err
	}
	return Confirm(BranchRestored), nil
}

// RetrieveDatabaseSchema returns the schema SQL verbatim. LSN and timestamp
// are sent only when set and non-empty. An empty result is reported as text,
// not as an error.
func RetrieveDatabaseSchema(ctx context.Context, p RetrieveSchemaParams) (Envelope, error) {
	api, err := p.client(ctx)
	if err != nil {
		return Envelope{}, err
	}
	params := neonapi.BranchSchemaParams{
		ProjectID: p.ProjectID,
		BranchID:  p.BranchID,
		DBName:    p.DBName,
	}
	if present(p.LSN) {
		params.LSN = p.LSN
	}
	if present(p.Timestamp) {
		params.Timestamp = p.Timestamp
	}

	schema, err := api.GetProjectBranchSchema(ctx, params)
	if err != nil {
		return Envelope{}, err
	}
	if schema == nil || schema.SQL == "" {
		return Text(NoSchemaAvailable), nil
	}
	return Text(schema.SQL), nil
}

// CompareSchemas forwards every filter as received, empty values included.
func CompareSchemas(ctx context.Context, p CompareSchemasParams) (Envelope, error) {
	api, err := p.client(ctx)
	if err != nil {
		return Envelope{}, err
	}
	body, err := api.GetProjectBranchSchemaComparison(ctx, neonapi.SchemaComparisonParams{
		ProjectID:     p.ProjectID,
		BranchID:      p.BranchID,
		DBName:        p.DBName,
		BaseBranchID:  p.BaseBranchID,
		LSN:           p.LSN,
		Timestamp:     p.Timestamp,
		BaseTimestamp: p.BaseTimestamp,
	})
	if err != nil {
		return Envelope{}, err
	}
	return JSON(body)
}

// ListDatabases returns every database on a branch. No limit is sent.
func ListDatabases(ctx context.Context, p BranchParams) (Envelope, error) {
	api, err := p.client(ctx)
	if err != nil {
		return Envelope{}, err
	}
	body, err := api.ListProjectBranchDatabases(ctx, p.ProjectID, p.BranchID)
	if err != nil {
		return Envelope{}, err
	}
	return JSON(body)
}

func present(s *string) bool { return s != nil && *s != "" }
