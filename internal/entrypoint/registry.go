package entrypoint

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pterm/pterm"

	"neonrpc/cli/internal/errors"
	"neonrpc/cli/internal/operations"
)

// Hints describe an operation's side effects to tool clients.
type Hints struct {
	ReadOnly    bool `json:"readOnly"`
	Destructive bool `json:"destructive"`
}

type invoker func(ctx context.Context, w *Worker, a Args) (operations.Envelope, error)

// Operation is one registry entry.
type Operation struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params"`
	Hints       Hints   `json:"hints"`

	invoke invoker
}

// Registry dispatches calls by operation name to a Worker.
type Registry struct {
	worker *Worker
	ops    []Operation
	byName map[string]int
	log    *pterm.Logger
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithLogger logs each dispatched call at debug level.
func WithLogger(l *pterm.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

var (
	pProject = Param{Name: "projectId", Description: "The ID of the project.", Required: true}
	pBranch  = Param{Name: "branchId", Description: "The ID of the branch.", Required: true}
	pDB      = Param{Name: "db_name", Description: "The name of the database.", Required: true}
)

func catalog() []Operation {
	return []Operation{
		{
			Name:        "listProjects",
			Description: "List all projects.",
			Hints:       Hints{ReadOnly: true},
			invoke: func(ctx context.Context, w *Worker, _ Args) (operations.Envelope, error) {
				return w.ListProjects(ctx)
			},
		},
		{
			Name:        "listBranches",
			Description: "List all branches for a project.",
			Params:      []Param{{Name: "projectId", Description: "The ID of the project to list branches for.", Required: true}},
			Hints:       Hints{ReadOnly: true},
			invoke: func(ctx context.Context, w *Worker, a Args) (operations.Envelope, error) {
				return w.ListBranches(ctx, a.str("projectId"))
			},
		},
		{
			Name:        "getBranch",
			Description: "Get details of a specific branch.",
			Params:      []Param{pProject, {Name: "branchId", Description: "The ID of the branch to retrieve.", Required: true}},
			Hints:       Hints{ReadOnly: true},
			invoke: func(ctx context.Context, w *Worker, a Args) (operations.Envelope, error) {
				return w.GetBranch(ctx, a.str("projectId"), a.str("branchId"))
			},
		},
		{
			Name:        "deleteBranch",
			Description: "Delete a specific branch.",
			Params:      []Param{pProject, {Name: "branchId", Description: "The ID of the branch to delete.", Required: true}},
			Hints:       Hints{Destructive: true},
			invoke: func(ctx context.Context, w *Worker, a Args) (operations.Envelope, error) {
				return w.DeleteBranch(ctx, a.str("projectId"), a.str("branchId"))
			},
		},
		{
			Name:        "restoreBranch",
			Description: "Restore a branch to a specific point.",
			Params: []Param{
				pProject,
				{Name: "branchId", Description: "The ID of the branch to restore.", Required: true},
				{Name: "source_branch_id", Description: "The ID of the source branch.", Required: true},
				{Name: "source_lsn", Description: "The LSN to restore from."},
				{Name: "source_timestamp", Description: "The timestamp to restore from."},
				{Name: "preserve_under_name", Description: "Name to preserve the branch under."},
			},
			Hints: Hints{Destructive: true},
			invoke: func(ctx context.Context, w *Worker, a Args) (operations.Envelope, error) {
				return w.RestoreBranch(ctx, a.str("projectId"), a.str("branchId"), a.str("source_branch_id"),
					a.opt("source_lsn"), a.opt("source_timestamp"), a.opt("preserve_under_name"))
			},
		},
		{
			Name:        "compareSchemas",
			Description: "Compare schemas between branches.",
			Params: []Param{
				pProject, pBranch, pDB,
				{Name: "base_branch_id", Description: "The ID of the base branch to compare against."},
				{Name: "lsn", Description: "The LSN to compare at."},
				{Name: "timestamp", Description: "The timestamp to compare at."},
				{Name: "base_timestamp", Description: "The base timestamp to compare against."},
			},
			Hints: Hints{ReadOnly: true},
			invoke: func(ctx context.Context, w *Worker, a Args) (operations.Envelope, error) {
				return w.CompareSchemas(ctx, a.str("projectId"), a.str("branchId"), a.str("db_name"),
					a.opt("base_branch_id"), a.opt("lsn"), a.opt("timestamp"), a.opt("base_timestamp"))
			},
		},
		{
			Name:        "retrieveDatabaseSchema",
			Description: "Retrieve the schema of a database in SQL format.",
			Params: []Param{
				pProject, pBranch, pDB,
				{Name: "lsn", Description: "Log Sequence Number (LSN): retrieve the schema as it was at this LSN."},
				{Name: "timestamp", Description: `ISO timestamp (e.g. "2024-02-23T02:11:30Z"): retrieve the schema as it was at this point in time.`},
			},
			Hints: Hints{ReadOnly: true},
			invoke: func(ctx context.Context, w *Worker, a Args) (operations.Envelope, error) {
				return w.RetrieveDatabaseSchema(ctx, a.str("projectId"), a.str("branchId"), a.str("db_name"),
					a.opt("lsn"), a.opt("timestamp"))
			},
		},
		{
			Name:        "listDatabases",
			Description: "List all databases for a branch.",
			Params:      []Param{pProject, pBranch},
			Hints:       Hints{ReadOnly: true},
			invoke: func(ctx context.Context, w *Worker, a Args) (operations.Envelope, error) {
				return w.ListDatabases(ctx, a.str("projectId"), a.str("branchId"))
			},
		},
	}
}

// NewRegistry builds the registry of every operation on w.
func NewRegistry(w *Worker, opts ...RegistryOption) *Registry {
	r := &Registry{worker: w, ops: catalog()}
	r.byName = make(map[string]int, len(r.ops))
	for i, op := range r.ops {
		r.byName[op.Name] = i
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// List returns the operations in registration order.
func (r *Registry) List() []Operation {
	out := make([]Operation, len(r.ops))
	copy(out, r.ops)
	return out
}

// Lookup finds an operation by name.
func (r *Registry) Lookup(name string) (Operation, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Operation{}, false
	}
	return r.ops[i], true
}

// Call binds raw (array, object or empty) and invokes the named operation.
func (r *Registry) Call(ctx context.Context, name string, raw json.RawMessage) (operations.Envelope, error) {
	op, ok := r.Lookup(name)
	if !ok {
		return operations.Envelope{}, unknown(name)
	}
	args, err := BindJSON(op.Params, raw)
	if err != nil {
		return operations.Envelope{}, err
	}
	return r.invoke(ctx, op, args)
}

// CallNamed invokes the named operation with arguments keyed by parameter name.
func (r *Registry) CallNamed(ctx context.Context, name string, values map[string]any) (operations.Envelope, error) {
	op, ok := r.Lookup(name)
	if !ok {
		return operations.Envelope{}, unknown(name)
	}
	args, err := BindNamed(op.Params, values)
	if err != nil {
		return operations.Envelope{}, err
	}
	return r.invoke(ctx, op, args)
}

func (r *Registry) invoke(ctx context.Context, op Operation, args Args) (operations.Envelope, error) {
	start := time.Now()
	env, err := op.invoke(ctx, r.worker, args)
	if r.log != nil {
		if err != nil {
			r.log.Debug("operation failed", r.log.Args("operation", op.Name, "duration", time.Since(start), "error", err.Error()))
		} else {
			r.log.Debug("operation completed", r.log.Args("operation", op.Name, "duration", time.Since(start)))
		}
	}
	return env, err
}

func unknown(name string) error {
	return errors.New(errors.UnknownOperation, fmt.Sprintf("unknown operation %q", name))
}
