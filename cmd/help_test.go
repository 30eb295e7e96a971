package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"neonrpc/cli/internal/entrypoint"
	"neonrpc/cli/internal/operations"
)

func testRegistry() *entrypoint.Registry {
	return entrypoint.NewRegistry(entrypoint.NewWorker(operations.Env{}))
}

func TestCallExamplesBind(t *testing.T) {
	reg := testRegistry()
	found := 0
	for _, line := range strings.Split(callCmd.Long, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[0] != "neonrpc" || fields[1] != "call" {
			continue
		}
		op, ok := reg.Lookup(fields[2])
		if !ok {
			t.Errorf("example %q names an unknown operation", line)
			continue
		}
		var raw json.RawMessage
		if _, after, ok := strings.Cut(line, "--args '"); ok {
			raw = json.RawMessage(strings.TrimSuffix(after, "'"))
		} else {
			payload, err := callPayload(fields[3:], "")
			if err != nil {
				t.Errorf("example %q: %v", line, err)
				continue
			}
			raw = payload
		}
		if _, err := entrypoint.BindJSON(op.Params, raw); err != nil {
			t.Errorf("example %q does not bind: %v", line, err)
		}
		found++
	}
	if found == 0 {
		t.Fatal("no examples found in call help")
	}
}

func TestLSNHelpNamesRealParams(t *testing.T) {
	reg := testRegistry()
	has := func(opName, param string) bool {
		op, _ := reg.Lookup(opName)
		for _, p := range op.Params {
			if p.Name == param {
				return true
			}
		}
		return false
	}
	for _, c := range []struct{ op, param string }{
		{"restoreBranch", "source_lsn"},
		{"retrieveDatabaseSchema", "lsn"},
		{"compareSchemas", "lsn"},
	} {
		if !has(c.op, c.param) {
			t.Errorf("%s has no %s parameter", c.op, c.param)
		}
		if !strings.Contains(lsnCmd.Long, c.param) {
			t.Errorf("lsn help does not mention %s", c.param)
		}
	}
	if strings.Contains(lsnCmd.Long, "sourceLsn") {
		t.Error("lsn help names sourceLsn")
	}
}
