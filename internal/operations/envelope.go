// Package operations implements the Neon control-plane operations exposed
// over RPC. Each function resolves the API key, builds one client through
// the injected factory, performs exactly one upstream call and wraps the
// result in an Envelope. Upstream errors are returned unmodified.
package operations

import (
	"bytes"
	"context"
	"encoding/json"

	"neonrpc/cli/internal/auth"
	"neonrpc/cli/internal/neonapi"
)

// DefaultPageSize caps list calls when Env.PageSize is unset.
const DefaultPageSize = 100

// Fixed confirmation texts.
const (
	BranchDeleted     = "Branch deleted"
	BranchRestored    = "Branch restored"
	NoSchemaAvailable = "No schema available"
)

// Env carries the collaborators every operation needs.
type Env struct {
	Credentials auth.Provider
	NewClient   neonapi.Factory
	// PageSize is the limit sent on list calls. Only the first page is returned.
	PageSize int
}

func (e Env) client(ctx context.Context) (neonapi.API, error) {
	key, err := e.Credentials.APIKey(ctx)
	if err != nil {
		return nil, err
	}
	return e.NewClient(key), nil
}

func (e Env) pageSize() int {
	if e.PageSize <= 0 {
		return DefaultPageSize
	}
	return e.PageSize
}

// Item is one entry of an Envelope. An Item without a Type is a plain
// confirmation and encodes as a bare JSON string.
type Item struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type typedItem Item

func (it Item) MarshalJSON() ([]byte, error) {
	if it.Type == "" {
		return json.Marshal(it.Text)
	}
	return json.Marshal(typedItem(it))
}

func (it *Item) UnmarshalJSON(b []byte) error {
	if s := bytes.TrimSpace(b); len(s) > 0 && s[0] == '"' {
		*it = Item{}
		return json.Unmarshal(s, &it.Text)
	}
	return json.Unmarshal(b, (*typedItem)(it))
}

// Envelope is the uniform response shape of every operation.
type Envelope struct {
	Content []Item `json:"content"`
}

// Text wraps s as a single text item.
func Text(s string) Envelope {
	return Envelope{Content: []Item{{Type: "text", Text: s}}}
}

// Confirm wraps s as a single plain entry: {"content":["Branch deleted"]}.
func Confirm(s string) Envelope {
	return Envelope{Content: []Item{{Text: s}}}
}

// JSON wraps an upstream body re-indented with two spaces. Key order is kept.
func JSON(raw json.RawMessage) (Envelope, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Text("null"), nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return Envelope{}, err
	}
	return Text(buf.String()), nil
}

// Texts returns the text of each item in order.
func (e Envelope) Texts() []string {
	out := make([]string, 0, len(e.Content))
	for _, it := range e.Content {
		out = append(out, it.Text)
	}
	return out
}
