package api

import (
	"context"

	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
)

// TeamService wraps the /team-members endpoints. Memberships are scoped to a
// project.
type TeamService struct {
	c *Client
}

func (s *TeamService) ListByProject(ctx context.Context, projectID string) ([]model.TeamMember, error) {
	var out []model.TeamMember
	if err := s.c.get(ctx, "/team-members/project/"+projectID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *TeamService) Add(ctx context.Context, projectID string, req model.AddTeamMemberRequest) (*model.TeamMember, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	var out model.TeamMember
	if err := s.c.post(ctx, "/team-members/project/"+projectID, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *TeamService) Update(ctx context.Context, id string, req model.UpdateTeamMemberRequest) (*model.TeamMember, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	var out model.TeamMember
	if err := s.c.put(ctx, "/team-members/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *TeamService) Remove(ctx context.Context, id string) error {
	return s.c.delete(ctx, "/team-members/"+id)
}
