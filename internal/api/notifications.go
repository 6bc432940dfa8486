package api

import (
	"context"

	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
)

// NotificationsService wraps the /notifications endpoints.
type NotificationsService struct {
	c *Client
}

func (s *NotificationsService) List(ctx context.Context) ([]model.Notification, error) {
	var out []model.Notification
	if err := s.c.get(ctx, "/notifications", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead marks the given notifications read; an empty list marks all.
func (s *NotificationsService) MarkRead(ctx context.Context, ids []string) error {
	return s.c.post(ctx, "/notifications/mark-read", model.NotificationIDs{NotificationIDs: ids}, nil)
}

// Archive archives the given notifications; an empty list archives all.
func (s *NotificationsService) Archive(ctx context.Context, ids []string) error {
	return s.c.post(ctx, "/notifications/archive", model.NotificationIDs{NotificationIDs: ids}, nil)
}

func (s *NotificationsService) Preferences(ctx context.Context) (*model.NotificationPreferences, error) {
	var out model.NotificationPreferences
	if err := s.c.get(ctx, "/notifications/preferences", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *NotificationsService) UpdatePreferences(ctx context.Context, req model.UpdatePreferencesRequest) (*model.NotificationPreferences, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	var out model.NotificationPreferences
	if err := s.c.put(ctx, "/notifications/preferences", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
