package api

import (
	"context"
	"io"

	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
)

// TimeEntriesService wraps the /time-entries endpoints, including per-entry
// file attachments. Entry collections are scoped to a task.
type TimeEntriesService struct {
	c *Client
}

func (s *TimeEntriesService) ListByTask(ctx context.Context, taskID string) ([]model.TimeEntry, error) {
	var out []model.TimeEntry
	if err := s.c.get(ctx, "/time-entries/task/"+taskID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *TimeEntriesService) Get(ctx context.Context, id string) (*model.TimeEntry, error) {
	var out model.TimeEntry
	if err := s.c.get(ctx, "/time-entries/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *TimeEntriesService) Create(ctx context.Context, taskID string, req model.CreateTimeEntryRequest) (*model.TimeEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	var out model.TimeEntry
	if err := s.c.post(ctx, "/time-entries/task/"+taskID, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *TimeEntriesService) Update(ctx context.Context, id string, req model.UpdateTimeEntryRequest) (*model.TimeEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	var out model.TimeEntry
	if err := s.c.put(ctx, "/time-entries/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *TimeEntriesService) Delete(ctx context.Context, id string) error {
	return s.c.delete(ctx, "/time-entries/"+id)
}

func (s *TimeEntriesService) Files(ctx context.Context, id string) ([]model.FileAttachment, error) {
	var out []model.FileAttachment
	if err := s.c.get(ctx, "/time-entries/"+id+"/files", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadFile attaches a file to a time entry as multipart form data.
func (s *TimeEntriesService) UploadFile(ctx context.Context, id, fileName string, r io.Reader) (*model.FileAttachment, error) {
	var out model.FileAttachment
	if err := s.c.upload(ctx, "/time-entries/"+id+"/files", fileName, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *TimeEntriesService) DeleteFile(ctx context.Context, id, fileID string) error {
	return s.c.delete(ctx, "/time-entries/"+id+"/files/"+fileID)
}
