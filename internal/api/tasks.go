package api

import (
	"context"

	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
)

// TasksService wraps the /tasks endpoints. Task collections are scoped to a
// project.
type TasksService struct {
	c *Client
}

func (s *TasksService) ListByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	var out []model.Task
	if err := s.c.get(ctx, "/tasks/project/"+projectID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *TasksService) Get(ctx context.Context, id string) (*model.Task, error) {
	var out model.Task
	if err := s.c.get(ctx, "/tasks/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *TasksService) Create(ctx context.Context, projectID string, req model.CreateTaskRequest) (*model.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	var out model.Task
	if err := s.c.post(ctx, "/tasks/project/"+projectID, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *TasksService) Update(ctx context.Context, id string, req model.UpdateTaskRequest) (*model.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	var out model.Task
	if err := s.c.put(ctx, "/tasks/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *TasksService) Delete(ctx context.Context, id string) error {
	return s.c.delete(ctx, "/tasks/"+id)
}

// Active lists the current user's in-progress tasks across all projects.
func (s *TasksService) Active(ctx context.Context) ([]model.Task, error) {
	var out []model.Task
	if err := s.c.get(ctx, "/tasks/active", &out); err != nil {
		return nil, err
	}
	return out, nil
}
