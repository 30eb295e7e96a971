package entrypoint

import (
	"context"
	"reflect"
	"testing"

	"neonrpc/cli/internal/auth"
	"neonrpc/cli/internal/operations"
)

func strPtr(s string) *string { return &s }

// spyOps records the params each operation receives.
func spyOps(got *any) Operations {
	ok := operations.Text("ok")
	return Operations{
		ListProjects: func(_ context.Context, p operations.ListProjectsParams) (operations.Envelope, error) {
			*got = p
			return ok, nil
		},
		ListBranches: func(_ context.Context, p operations.ListBranchesParams) (operations.Envelope, error) {
			*got = p
			return ok, nil
		},
		GetBranch: func(_ context.Context, p operations.BranchParams) (operations.Envelope, error) {
			*got = p
			return ok, nil
		},
		DeleteBranch: func(_ context.Context, p operations.BranchParams) (operations.Envelope, error) {
			*got = p
			return ok, nil
		},
		RestoreBranch: func(_ context.Context, p operations.RestoreBranchParams) (operations.Envelope, error) {
			*got = p
			return ok, nil
		},
		CompareSchemas: func(_ context.Context, p operations.CompareSchemasParams) (operations.Envelope, error) {
			*got = p
			return ok, nil
		},
		RetrieveDatabaseSchema: func(_ context.Context, p operations.RetrieveSchemaParams) (operations.Envelope, error) {
			*got = p
			return ok, nil
		},
		ListDatabases: func(_ context.Context, p operations.BranchParams) (operations.Envelope, error) {
			*got = p
			return ok, nil
		},
	}
}

func TestWorker_ForwardsExactArguments(t *testing.T) {
	env := operations.Env{Credentials: auth.Static("napi_x"), PageSize: 100}
	var got any
	w := &Worker{Env: env, Ops: spyOps(&got)}
	ctx := context.Background()
	lsn, ts, name, base, bts := strPtr("0/1"), strPtr(""), strPtr("old"), strPtr("br-base"), strPtr("2024-01-01T00:00:00Z")

	tests := []struct {
		name string
		call func() (operations.Envelope, error)
		want any
	}{
		{"listProjects", func() (operations.Envelope, error) { return w.ListProjects(ctx) },
			operations.ListProjectsParams{Env: env}},
		{"listBranches", func() (operations.Envelope, error) { return w.ListBranches(ctx, "p1") },
			operations.ListBranchesParams{Env: env, ProjectID: "p1"}},
		{"getBranch", func() (operations.Envelope, error) { return w.GetBranch(ctx, "p1", "b1") },
			operations.BranchParams{Env: env, ProjectID: "p1", BranchID: "b1"}},
		{"deleteBranch", func() (operations.Envelope, error) { return w.DeleteBranch(ctx, "p1", "b2") },
			operations.BranchParams{Env: env, ProjectID: "p1", BranchID: "b2"}},
		{"restoreBranch", func() (operations.Envelope, error) { return w.RestoreBranch(ctx, "p1", "b1", "main", lsn, ts, name) },
			operations.RestoreBranchParams{Env: env, ProjectID: "p1", BranchID: "b1", SourceBranchID: "main", SourceLSN: lsn, SourceTimestamp: ts, PreserveUnderName: name}},
		{"compareSchemas", func() (operations.Envelope, error) {
			return w.CompareSchemas(ctx, "p1", "b1", "neondb", base, nil, ts, bts)
		}, operations.CompareSchemasParams{Env: env, ProjectID: "p1", BranchID: "b1", DBName: "neondb", BaseBranchID: base, Timestamp: ts, BaseTimestamp: bts}},
		{"retrieveDatabaseSchema", func() (operations.Envelope, error) {
			return w.RetrieveDatabaseSchema(ctx, "p1", "b1", "neondb", lsn, nil)
		}, operations.RetrieveSchemaParams{Env: env, ProjectID: "p1", BranchID: "b1", DBName: "neondb", LSN: lsn}},
		{"listDatabases", func() (operations.Envelope, error) { return w.ListDatabases(ctx, "p1", "b1") },
			operations.BranchParams{Env: env, ProjectID: "p1", BranchID: "b1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = nil
			if _, err := tt.call(); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("params = %#v\nwant     %#v", got, tt.want)
			}
		})
	}
}
