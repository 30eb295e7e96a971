// Package entrypoint exposes the Neon operations as one callable surface.
//
// Worker has one method per operation with the operation's literal parameter
// list. Registry maps operation names to Worker methods so every transport
// dispatches through the same table.
package entrypoint

import (
	"context"

	"neonrpc/cli/internal/operations"
)

// Operations is the table of operation functions a Worker delegates to.
type Operations struct {
	ListProjects           func(context.Context, operations.ListProjectsParams) (operations.Envelope, error)
	ListBranches           func(context.Context, operations.ListBranchesParams) (operations.Envelope, error)
	GetBranch              func(context.Context, operations.BranchParams) (operations.Envelope, error)
	DeleteBranch           func(context.Context, operations.BranchParams) (operations.Envelope, error)
	RestoreBranch          func(context.Context, operations.RestoreBranchParams) (operations.Envelope, error)
	CompareSchemas         func(context.Context, operations.CompareSchemasParams) (operations.Envelope, error)
	RetrieveDatabaseSchema func(context.Context, operations.RetrieveSchemaParams) (operations.Envelope, error)
	ListDatabases          func(context.Context, operations.BranchParams) (operations.Envelope, error)
}

// DefaultOperations returns the real operation functions.
func DefaultOperations() Operations {
	return Operations{
		ListProjects:           operations.ListProjects,
		ListBranches:           operations.ListBranches,
		GetBranch:              operations.GetBranch,
		DeleteBranch:           operations.DeleteBranch,
		RestoreBranch:          operations.RestoreBranch,
		CompareSchemas:         operations.CompareSchemas,
		RetrieveDatabaseSchema: operations.RetrieveDatabaseSchema,
		ListDatabases:          operations.ListDatabases,
	}
}

// Worker delegates each call to its operation with the injected Env.
type Worker struct {
	Env operations.Env
	Ops Operations
}

// NewWorker returns a Worker wired to the real operations.
func NewWorker(env operations.Env) *Worker {
	return &Worker{Env: env, Ops: DefaultOperations()}
}

// ListProjects lists the first page of projects.
func (w *Worker) ListProjects(ctx context.Context) (operations.Envelope, error) {
	return w.Ops.ListProjects(ctx, operations.ListProjectsParams{Env: w.Env})
}

// ListBranches lists the first page of branches of projectID.
func (w *Worker) ListBranches(ctx context.Context, projectID string) (operations.Envelope, error) {
	return w.Ops.ListBranches(ctx, operations.ListBranchesParams{Env: w.Env, ProjectID: projectID})
}

// GetBranch returns the details of one branch.
func (w *Worker) GetBranch(ctx context.Context, projectID, branchID string) (operations.Envelope, error) {
	return w.Ops.GetBranch(ctx, operations.BranchParams{Env: w.Env, ProjectID: projectID, BranchID: branchID})
}

// DeleteBranch deletes one branch.
func (w *Worker) DeleteBranch(ctx context.Context, projectID, branchID string) (operations.Envelope, error) {
	return w.Ops.DeleteBranch(ctx, operations.BranchParams{Env: w.Env, ProjectID: projectID, BranchID: branchID})
}

// RestoreBranch restores branchID from sourceBranchID, optionally at an LSN or timestamp.
func (w *Worker) RestoreBranch(ctx context.Context, projectID, branchID, sourceBranchID string, sourceLSN, sourceTimestamp, preserveUnderName *string) (operations.Envelope, error) {
	return w.Ops.RestoreBranch(ctx, operations.RestoreBranchParams{
		Env:               w.Env,
		ProjectID:         projectID,
		BranchID:          branchID,
		SourceBranchID:    sourceBranchID,
		SourceLSN:         sourceLSN,
		SourceTimestamp:   sourceTimestamp,
		PreserveUnderName: preserveUnderName,
	})
}

// CompareSchemas compares the schema of dbName on branchID against a base.
func (w *Worker) CompareSchemas(ctx context.Context, projectID, branchID, dbName string, baseBranchID, lsn, timestamp, baseTimestamp *string) (operations.Envelope, error) {
	return w.Ops.CompareSchemas(ctx, operations.CompareSchemasParams{
		Env:           w.Env,
		ProjectID:     projectID,
		BranchID:      branchID,
		DBName:        dbName,
		BaseBranchID:  baseBranchID,
		LSN:           lsn,
		Timestamp:     timestamp,
		BaseTimestamp: baseTimestamp,
	})
}

// RetrieveDatabaseSchema returns the SQL schema of dbName, optionally as of an LSN or timestamp.
func (w *Worker) RetrieveDatabaseSchema(ctx context.Context, projectID, branchID, dbName string, lsn, timestamp *string) (operations.Envelope, error) {
	return w.Ops.RetrieveDatabaseSchema(ctx, operations.RetrieveSchemaParams{
		Env:       w.Env,
		ProjectID: projectID,
		BranchID:  branchID,
		DBName:    dbName,
		LSN:       lsn,
		Timestamp: timestamp,
	})
}

// ListDatabases lists every database on a branch.
func (w *Worker) ListDatabases(ctx context.Context, projectID, branchID string) (operations.Envelope, error) {
	return w.Ops.ListDatabases(ctx, operations.BranchParams{Env: w.Env, ProjectID: projectID, BranchID: branchID})
}
