package api

import (
	"context"
	"io"

	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
)

// ClientsService wraps the /clients endpoints, including per-client file
// attachments.
type ClientsService struct {
	c *Client
}

func (s *ClientsService) List(ctx context.Context) ([]model.Client, error) {
	var out []model.Client
	if err := s.c.get(ctx, "/clients", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ClientsService) Get(ctx context.Context, id string) (*model.Client, error) {
	var out model.Client
	if err := s.c.get(ctx, "/clients/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ClientsService) Create(ctx context.Context, req model.CreateClientRequest) (*model.Client, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	var out model.Client
	if err := s.c.post(ctx, "/clients", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ClientsService) Update(ctx context.Context, id string, req model.UpdateClientRequest) (*model.Client, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	var out model.Client
	if err := s.c.put(ctx, "/clients/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ClientsService) Delete(ctx context.Context, id string) error {
	return s.c.delete(ctx, "/clients/"+id)
}

func (s *ClientsService) Files(ctx context.Context, id string) ([]model.FileAttachment, error) {
	var out []model.FileAttachment
	if err := s.c.get(ctx, "/clients/"+id+"/files", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadFile attaches a file to a client as multipart form data.
func (s *ClientsService) UploadFile(ctx context.Context, id, fileName string, r io.Reader) (*model.FileAttachment, error) {
	var out model.FileAttachment
	if err := s.c.upload(ctx, "/clients/"+id+"/files", fileName, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ClientsService) DeleteFile(ctx context.Context, id, fileID string) error {
	return s.c.delete(ctx, "/clients/"+id+"/files/"+fileID)
}
