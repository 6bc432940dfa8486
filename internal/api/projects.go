package api

import (
	"context"

	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
)

// ProjectsService wraps the /projects endpoints.
type ProjectsService struct {
	c *Client
}

func (s *ProjectsService) List(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	if err := s.c.get(ctx, "/projects", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ProjectsService) Get(ctx context.Context, id string) (*model.Project, error) {
	var out model.Project
	if err := s.c.get(ctx, "/projects/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ProjectsService) Create(ctx context.Context, req model.CreateProjectRequest) (*model.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	var out model.Project
	if err := s.c.post(ctx, "/projects", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ProjectsService) Update(ctx context.Context, id string, req model.UpdateProjectRequest) (*model.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	var out model.Project
	if err := s.c.put(ctx, "/projects/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a project. The server refuses with a ConflictError when the
// project is still referenced (tasks, time entries); the detail message is
// the server's and is surfaced verbatim by callers.
func (s *ProjectsService) Delete(ctx context.Context, id string) error {
	return s.c.delete(ctx, "/projects/"+id)
}
