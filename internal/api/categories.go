package api

import (
	"context"

	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
)

// CategoriesService wraps the /categories endpoints.
type CategoriesService struct {
	c *Client
}

func (s *CategoriesService) List(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if err := s.c.get(ctx, "/categories", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CategoriesService) Get(ctx context.Context, id string) (*model.Category, error) {
	var out model.Category
	if err := s.c.get(ctx, "/categories/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CategoriesService) Create(ctx context.Context, req model.CategoryRequest) (*model.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	var out model.Category
	if err := s.c.post(ctx, "/categories", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CategoriesService) Update(ctx context.Context, id string, req model.CategoryRequest) (*model.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	var out model.Category
	if err := s.c.put(ctx, "/categories/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CategoriesService) Delete(ctx context.Context, id string) error {
	return s.c.delete(ctx, "/categories/"+id)
}
