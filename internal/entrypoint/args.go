package entrypoint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"neonrpc/cli/internal/errors"
)

// Param describes one operation argument.
type Param struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Args holds bound arguments. A missing key or nil value means absent.
type Args map[string]*string

func (a Args) str(name string) string {
	if v := a[name]; v != nil {
		return *v
	}
	return ""
}

func (a Args) opt(name string) *string { return a[name] }

// BindJSON binds raw to params. raw may be a JSON array (positional, the
// order of params), a JSON object (by name), or empty/null.
func BindJSON(params []Param, raw json.RawMessage) (Args, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return BindNamed(params, nil)
	}
	switch raw[0] {
	case '[':
		var list []any
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, errors.Wrap(errors.InvalidArguments, "arguments are not a JSON array", err)
		}
		return BindPositional(params, list)
	case '{':
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, errors.Wrap(errors.InvalidArguments, "arguments are not a JSON object", err)
		}
		return BindNamed(params, m)
	default:
		return nil, errors.New(errors.InvalidArguments, "arguments must be a JSON array or object")
	}
}

// BindPositional binds values in parameter order.
func BindPositional(params []Param, values []any) (Args, error) {
	if len(values) > len(params) {
		return nil, errors.New(errors.InvalidArguments, fmt.Sprintf("got %d arguments, want at most %d", len(values), len(params)))
	}
	m := make(map[string]any, len(values))
	for i, v := range values {
		m[params[i].Name] = v
	}
	return BindNamed(params, m)
}

// BindNamed binds values by parameter name. Unknown names are rejected.
func BindNamed(params []Param, values map[string]any) (Args, error) {
	known := make(map[string]bool, len(params))
	for _, p := range params {
		known[p.Name] = true
	}
	for k := range values {
		if !known[k] {
			return nil, errors.New(errors.InvalidArguments, fmt.Sprintf("unknown argument %q", k))
		}
	}

	args := make(Args, len(params))
	for _, p := range params {
		v, ok := values[p.Name]
		if !ok || v == nil {
			if p.Required {
				return nil, errors.New(errors.InvalidArguments, fmt.Sprintf("missing required argument %q", p.Name))
			}
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, errors.New(errors.InvalidArguments, fmt.Sprintf("argument %q must be a string, got %T", p.Name, v))
		}
		if p.Required && strings.TrimSpace(s) == "" {
			return nil, errors.New(errors.InvalidArguments, fmt.Sprintf("argument %q must not be empty", p.Name))
		}
		args[p.Name] = &s
	}
	return args, nil
}
