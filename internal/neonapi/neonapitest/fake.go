// Package neonapitest provides an in-memory neonapi.API for tests.
package neonapitest

import (
	"context"
	"encoding/json"
	"sync"

	"neonrpc/cli/internal/neonapi"
)

// Call records one method invocation.
type Call struct {
	Method string
	Args   []any
}

// Fake returns canned bodies and records every call. Err, when set, is
// returned by every method.
type Fake struct {
	mu sync.Mutex

	Body   json.RawMessage
	Schema *neonapi.BranchSchema
	Err    error

	Calls []Call
	// Keys lists the API keys passed to the factory.
	Keys []string
}

// Factory returns a neonapi.Factory that hands out f and records the key.
func (f *Fake) Factory() neonapi.Factory {
	return func(apiKey string) neonapi.API {
		f.mu.Lock()
		f.Keys = append(f.Keys, apiKey)
		f.mu.Unlock()
		return f
	}
}

// Last returns the most recent call.
func (f *Fake) Last() Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		return Call{}
	}
	return f.Calls[len(f.Calls)-1]
}

func (f *Fake) record(method string, args ...any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Method: method, Args: args})
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Body, nil
}

func (f *Fake) ListProjects(_ context.Context, p neonapi.ListProjectsParams) (json.RawMessage, error) {
	return f.record("ListProjects", p)
}

func (f *Fake) ListProjectBranches(_ context.Context, p neonapi.ListBranchesParams) (json.RawMessage, error) {
	return f.record("ListProjectBranches", p)
}

func (f *Fake) GetProjectBranch(_ context.Context, projectID, branchID string) (json.RawMessage, error) {
	return f.record("GetProjectBranch", projectID, branchID)
}

func (f *Fake) DeleteProjectBranch(_ context.Context, projectID, branchID string) (json.RawMessage, error) {
	return f.record("DeleteProjectBranch", projectID, branchID)
}

func (f *Fake) RestoreProjectBranch(_ context.Context, projectID, branchID string, req neonapi.RestoreBranchRequest) (json.RawMessage, error) {
	return f.record("RestoreProjectBranch", projectID, branchID, req)
}

func (f *Fake) GetProjectBranchSchema(_ context.Context, p neonapi.BranchSchemaParams) (*neonapi.BranchSchema, error) {
	if _, err := f.record("GetProjectBranchSchema", p); err != nil {
		return nil, err
	}
	return f.Schema, nil
}

func (f *Fake) GetProjectBranchSchemaComparison(_ context.Context, p neonapi.SchemaComparisonParams) (json.RawMessage, error) {
	return f.record("GetProjectBranchSchemaComparison", p)
}

func (f *Fake) ListProjectBranchDatabases(_ context.Context, projectID, branchID string) (json.RawMessage, error) {
	return f.record("ListProjectBranchDatabases", projectID, branchID)
}

var _ neonapi.API = (*Fake)(nil)
