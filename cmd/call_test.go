package cmd

import (
	"bytes"
	"strings"
	"testing"

	"neonrpc/cli/internal/entrypoint"
	"neonrpc/cli/internal/errors"
	"neonrpc/cli/internal/operations"
)

func TestCallPayload(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "no args", want: ""},
		{name: "named", args: []string{"projectId=p1", "branchId=b1"}, want: `{"branchId":"b1","projectId":"p1"}`},
		{name: "explicit empty", args: []string{"projectId=p1", "lsn="}, want: `{"lsn":"","projectId":"p1"}`},
		{name: "value containing equals", args: []string{"timestamp=a=b"}, want: `{"timestamp":"a=b"}`},
		{name: "positional", args: []string{"p1", "b1"}, want: `["p1","b1"]`},
		{name: "leading equals is positional", args: []string{"=x"}, want: `["=x"]`},
		{name: "raw", raw: `{"projectId":"p1"}`, want: `{"projectId":"p1"}`},
		{name: "mixed", args: []string{"p1", "branchId=b1"}, wantErr: true},
		{name: "raw and args", args: []string{"p1"}, raw: `[]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := callPayload(tt.args, tt.raw)
			if tt.wantErr {
				if !errors.Is(err, errors.InvalidArguments) {
					t.Fatalf("err = %v, want invalid_arguments", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("payload = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPrintEnvelope(t *testing.T) {
	env := operations.Envelope{Content: []operations.Item{
		{Type: "text", Text: "Branch deleted"},
		{Type: "text", Text: "{\n  \"id\": \"b1\"\n}"},
	}}

	var buf bytes.Buffer
	if err := printEnvelope(&buf, env, false); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "Branch deleted\n{\n  \"id\": \"b1\"\n}\n"; got != want {
		t.Errorf("text output = %q, want %q", got, want)
	}

	buf.Reset()
	if err := printEnvelope(&buf, operations.Text("ok"), true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"content"`) || !strings.Contains(buf.String(), `"type": "text"`) {
		t.Errorf("json output = %s", buf.String())
	}
}

func TestOperationTable(t *testing.T) {
	rows := operationTable([]entrypoint.Operation{
		{Name: "getBranch", Params: []entrypoint.Param{{Name: "projectId", Required: true}, {Name: "branchId", Required: true}}, Hints: entrypoint.Hints{ReadOnly: true}},
		{Name: "retrieveDatabaseSchema", Params: []entrypoint.Param{{Name: "projectId", Required: true}, {Name: "lsn"}}},
	})
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus 2", len(rows))
	}
	if rows[1][1] != "projectId branchId" {
		t.Errorf("params = %q", rows[1][1])
	}
	if rows[2][1] != "projectId [lsn]" {
		t.Errorf("params = %q", rows[2][1])
	}
	if rows[1][2] != "read-only" {
		t.Errorf("effect = %q", rows[1][2])
	}
}
