package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"neonrpc/cli/internal/auth"
	"neonrpc/cli/internal/entrypoint"
	"neonrpc/cli/internal/neonapi"
	"neonrpc/cli/internal/neonapi/neonapitest"
	"neonrpc/cli/internal/operations"
)

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(f *neonapitest.Fake) func(t *testing.T, method string, params any) rpcResponse {
	w := entrypoint.NewWorker(operations.Env{Credentials: auth.Static("napi_test"), NewClient: f.Factory()})
	s := New(entrypoint.NewRegistry(w), "test", nil)

	id := 0
	return func(t *testing.T, method string, params any) rpcResponse {
		t.Helper()
		id++
		req, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": id, "method": method, "params": params})
		if err != nil {
			t.Fatal(err)
		}
		msg := s.HandleMessage(context.Background(), req)
		raw, err := json.Marshal(msg)
		if err != nil {
			t.Fatal(err)
		}
		var resp rpcResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		return resp
	}
}

func TestToolsList(t *testing.T) {
	call := newTestServer(&neonapitest.Fake{})
	resp := call(t, "tools/list", map[string]any{})
	if resp.Error != nil {
		t.Fatalf("tools/list error: %+v", resp.Error)
	}

	var result struct {
		Tools []struct {
			Name        string `json:"name"`
			InputSchema struct {
				Required   []string                   `json:"required"`
				Properties map[string]json.RawMessage `json:"properties"`
			} `json:"inputSchema"`
			Annotations struct {
				ReadOnlyHint    *bool `json:"readOnlyHint"`
				DestructiveHint *bool `json:"destructiveHint"`
			} `json:"annotations"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Tools) != 8 {
		t.Fatalf("tools = %d, want 8", len(result.Tools))
	}

	byName := map[string]int{}
	for i, tool := range result.Tools {
		byName[tool.Name] = i
	}
	restore := result.Tools[byName["restoreBranch"]]
	if len(restore.InputSchema.Properties) != 6 {
		t.Errorf("restoreBranch properties = %d, want 6", len(restore.InputSchema.Properties))
	}
	if len(restore.InputSchema.Required) != 3 {
		t.Errorf("restoreBranch required = %v", restore.InputSchema.Required)
	}
	if h := restore.Annotations.DestructiveHint; h == nil || !*h {
		t.Error("restoreBranch should be marked destructive")
	}
	if h := result.Tools[byName["listProjects"]].Annotations.ReadOnlyHint; h == nil || !*h {
		t.Error("listProjects should be marked read-only")
	}
}

type toolResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	IsError bool `json:"isError"`
}

func callTool(t *testing.T, call func(*testing.T, string, any) rpcResponse, name string, args map[string]any) toolResult {
	t.Helper()
	resp := call(t, "tools/call", map[string]any{"name": name, "arguments": args})
	if resp.Error != nil {
		t.Fatalf("tools/call error: %+v", resp.Error)
	}
	var res toolResult
	if err := json.Unmarshal(resp.Result, &res); err != nil {
		t.Fatal(err)
	}
	return res
}

func TestToolsCall(t *testing.T) {
	f := &neonapitest.Fake{Body: json.RawMessage(`{"databases":[{"name":"neondb"}]}`)}
	call := newTestServer(f)

	res := callTool(t, call, "listDatabases", map[string]any{"projectId": "p1", "branchId": "b1"})
	if res.IsError || len(res.Content) != 1 || res.Content[0].Type != "text" {
		t.Fatalf("result = %+v", res)
	}
	want := "{\n  \"databases\": [\n    {\n      \"name\": \"neondb\"\n    }\n  ]\n}"
	if res.Content[0].Text != want {
		t.Errorf("text = %q", res.Content[0].Text)
	}

	res = callTool(t, call, "deleteBranch", map[string]any{"projectId": "p1", "branchId": "b1"})
	if res.IsError || res.Content[0].Text != operations.BranchDeleted {
		t.Errorf("delete result = %+v", res)
	}
}

func TestToolsCall_ErrorsBecomeToolErrors(t *testing.T) {
	f := &neonapitest.Fake{Err: &neonapi.APIError{StatusCode: 404, Message: "branch not found"}}
	call := newTestServer(f)

	res := callTool(t, call, "getBranch", map[string]any{"projectId": "p1", "branchId": "nope"})
	if !res.IsError || len(res.Content) == 0 || res.Content[0].Text != "neon API 404: branch not found" {
		t.Errorf("result = %+v", res)
	}

	res = callTool(t, call, "getBranch", map[string]any{"projectId": "p1"})
	if !res.IsError {
		t.Errorf("missing argument should be a tool error: %+v", res)
	}
}
