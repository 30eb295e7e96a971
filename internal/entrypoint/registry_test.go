package entrypoint

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"neonrpc/cli/internal/auth"
	neonerrors "neonrpc/cli/internal/errors"
	"neonrpc/cli/internal/neonapi"
	"neonrpc/cli/internal/neonapi/neonapitest"
	"neonrpc/cli/internal/operations"
)

func newSpyRegistry() (*Registry, *any) {
	var got any
	w := &Worker{Ops: spyOps(&got)}
	return NewRegistry(w), &got
}

func TestRegistry_ListsEveryOperation(t *testing.T) {
	r, _ := newSpyRegistry()
	var names []string
	for _, op := range r.List() {
		names = append(names, op.Name)
	}
	want := []string{"listProjects", "listBranches", "getBranch", "deleteBranch", "restoreBranch", "compareSchemas", "retrieveDatabaseSchema", "listDatabases"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("names = %v", names)
	}

	op, _ := r.Lookup("deleteBranch")
	if !op.Hints.Destructive || op.Hints.ReadOnly {
		t.Errorf("deleteBranch hints = %+v", op.Hints)
	}
	op, _ = r.Lookup("compareSchemas")
	var required []string
	for _, p := range op.Params {
		if p.Required {
			required = append(required, p.Name)
		}
	}
	if !reflect.DeepEqual(required, []string{"projectId", "branchId", "db_name"}) {
		t.Errorf("compareSchemas required = %v", required)
	}
}

func TestRegistry_Binding(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		op   string
		raw  string
		want any
	}{
		{
			name: "positional",
			op:   "getBranch",
			raw:  `["p1","b1"]`,
			want: operations.BranchParams{ProjectID: "p1", BranchID: "b1"},
		},
		{
			name: "named",
			op:   "listBranches",
			raw:  `{"projectId":"p1"}`,
			want: operations.ListBranchesParams{ProjectID: "p1"},
		},
		{
			name: "no arguments",
			op:   "listProjects",
			raw:  ``,
			want: operations.ListProjectsParams{},
		},
		{
			name: "positional with null optional",
			op:   "restoreBranch",
			raw:  `["p1","b1","main",null,"2024-01-01T00:00:00Z"]`,
			want: operations.RestoreBranchParams{ProjectID: "p1", BranchID: "b1", SourceBranchID: "main", SourceTimestamp: strPtr("2024-01-01T00:00:00Z")},
		},
		{
			name: "named empty optional kept",
			op:   "compareSchemas",
			raw:  `{"projectId":"p1","branchId":"b1","db_name":"neondb","lsn":""}`,
			want: operations.CompareSchemasParams{ProjectID: "p1", BranchID: "b1", DBName: "neondb", LSN: strPtr("")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, got := newSpyRegistry()
			if _, err := r.Call(ctx, tt.op, json.RawMessage(tt.raw)); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(*got, tt.want) {
				t.Errorf("params = %#v\nwant     %#v", *got, tt.want)
			}
		})
	}
}

func TestRegistry_Rejections(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		op   string
		raw  string
		kind neonerrors.Kind
	}{
		{"unknown operation", "dropDatabase", `[]`, neonerrors.UnknownOperation},
		{"missing required", "getBranch", `["p1"]`, neonerrors.InvalidArguments},
		{"empty required", "getBranch", `{"projectId":"p1","branchId":" "}`, neonerrors.InvalidArguments},
		{"too many", "listBranches", `["p1","extra"]`, neonerrors.InvalidArguments},
		{"unknown name", "listBranches", `{"projectId":"p1","limit":"5"}`, neonerrors.InvalidArguments},
		{"non-string", "listBranches", `{"projectId":7}`, neonerrors.InvalidArguments},
		{"scalar", "listBranches", `"p1"`, neonerrors.InvalidArguments},
		{"malformed", "listBranches", `[`, neonerrors.InvalidArguments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, got := newSpyRegistry()
			_, err := r.Call(ctx, tt.op, json.RawMessage(tt.raw))
			if !neonerrors.Is(err, tt.kind) {
				t.Fatalf("err = %v, want kind %s", err, tt.kind)
			}
			if *got != nil {
				t.Error("operation ran despite rejected arguments")
			}
		})
	}
}

func TestRegistry_EndToEndWithFakeAPI(t *testing.T) {
	f := &neonapitest.Fake{Schema: &neonapi.BranchSchema{SQL: "CREATE TABLE t();"}}
	w := NewWorker(operations.Env{Credentials: auth.Static("napi_x"), NewClient: f.Factory()})
	r := NewRegistry(w)

	env, err := r.CallNamed(context.Background(), "retrieveDatabaseSchema", map[string]any{
		"projectId": "p1", "branchId": "b1", "db_name": "neondb", "lsn": "0/123",
	})
	if err != nil {
		t.Fatal(err)
	}
	if env.Content[0].Text != "CREATE TABLE t();" {
		t.Errorf("text = %q", env.Content[0].Text)
	}
	p := f.Last().Args[0].(neonapi.BranchSchemaParams)
	if p.LSN == nil || *p.LSN != "0/123" || p.Timestamp != nil {
		t.Errorf("upstream params = %+v", p)
	}

	upstream := &neonapi.APIError{StatusCode: 429, Message: "slow down"}
	f.Err = upstream
	if _, err := r.Call(context.Background(), "listProjects", nil); !errors.Is(err, upstream) {
		t.Errorf("err = %v, want upstream error", err)
	}
}
