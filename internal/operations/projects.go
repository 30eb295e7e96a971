package operations

import (
	"context"

	"neonrpc/cli/internal/neonapi"
)

// ListProjectsParams has no arguments beyond the environment.
type ListProjectsParams struct {
	Env
}

// ListProjects returns the first page of projects as indented JSON.
func ListProjects(ctx context.Context, p ListProjectsParams) (Envelope, error) {
	api, err := p.client(ctx)
	if err != nil {
		return Envelope{}, err
	}
	body, err := api.ListProjects(ctx, neonapi.ListProjectsParams{Limit: p.pageSize()})
	if err != nil {
		return Envelope{}, err
	}
	return JSON(body)
}
