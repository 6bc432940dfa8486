package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Request payloads are validated at the gateway boundary: a malformed payload
// is rejected before any network call is issued. Update payloads use pointer
// fields with omitempty so only supplied fields are sent; unset fields are
// left unchanged server-side.

func validStatus(s string, allowed ...string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

// RegisterRequest creates a new account via POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (r RegisterRequest) Validate() error {
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("invalid email %q", r.Email)
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	if r.FullName == "" {
		return errors.New("full name is required")
	}
	return nil
}

type CreateClientRequest struct {
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

func (r CreateClientRequest) Validate() error {
	if r.Name == "" {
		return errors.New("client name is required")
	}
	return nil
}

type UpdateClientRequest struct {
	Name    *string `json:"name,omitempty"`
	Company *string `json:"company,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

func (r UpdateClientRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return errors.New("client name cannot be empty")
	}
	return nil
}

type CreateProjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	ClientID    string     `json:"client_id"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

func (r CreateProjectRequest) Validate() error {
	if r.Name == "" {
		return errors.New("project name is required")
	}
	if r.ClientID == "" {
		return errors.New("client id is required")
	}
	if !validStatus(r.Status, ProjectActive, ProjectPaused, ProjectCompleted) {
		return fmt.Errorf("invalid project status %q", r.Status)
	}
	// end-before-start is deliberately not rejected here; whether the server
	// enforces date ordering is an unconfirmed part of its contract.
	return nil
}

type UpdateProjectRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

func (r UpdateProjectRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return errors.New("project name cannot be empty")
	}
	if r.Status != nil && !validStatus(*r.Status, ProjectActive, ProjectPaused, ProjectCompleted) {
		return fmt.Errorf("invalid project status %q", *r.Status)
	}
	return nil
}

type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssignedTo  *string    `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

func (r CreateTaskRequest) Validate() error {
	if r.Title == "" {
		return errors.New("task title is required")
	}
	if !validStatus(r.Status, TaskTodo, TaskInProgress, TaskCompleted) {
		return fmt.Errorf("invalid task status %q", r.Status)
	}
	if !validStatus(r.Priority, PriorityLow, PriorityMedium, PriorityHigh) {
		return fmt.Errorf("invalid task priority %q", r.Priority)
	}
	return nil
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	AssignedTo  *string    `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

func (r UpdateTaskRequest) Validate() error {
	if r.Title != nil && *r.Title == "" {
		return errors.New("task title cannot be empty")
	}
	if r.Status != nil && !validStatus(*r.Status, TaskTodo, TaskInProgress, TaskCompleted) {
		return fmt.Errorf("invalid task status %q", *r.Status)
	}
	if r.Priority != nil && !validStatus(*r.Priority, PriorityLow, PriorityMedium, PriorityHigh) {
		return fmt.Errorf("invalid task priority %q", *r.Priority)
	}
	return nil
}

type CreateTimeEntryRequest struct {
	Description string     `json:"description,omitempty"`
	Date        string     `json:"date"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Duration    float64    `json:"duration"`
}

func (r CreateTimeEntryRequest) Validate() error {
	if r.Date == "" {
		return errors.New("date is required")
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", r.Date)
	}
	if r.Duration < 0 {
		return errors.New("duration cannot be negative")
	}
	return nil
}

type UpdateTimeEntryRequest struct {
	Description *string    `json:"description,omitempty"`
	Date        *string    `json:"date,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Duration    *float64   `json:"duration,omitempty"`
}

func (r UpdateTimeEntryRequest) Validate() error {
	if r.Date != nil {
		if _, err := time.Parse("2006-01-02", *r.Date); err != nil {
			return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", *r.Date)
		}
	}
	if r.Duration != nil && *r.Duration < 0 {
		return errors.New("duration cannot be negative")
	}
	return nil
}

type AddTeamMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (r AddTeamMemberRequest) Validate() error {
	if r.UserID == "" {
		return errors.New("user id is required")
	}
	if !validStatus(r.Role, RoleAdmin, RoleManager, RoleMember, RoleViewer) {
		return fmt.Errorf("invalid team role %q", r.Role)
	}
	return nil
}

type UpdateTeamMemberRequest struct {
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (r UpdateTeamMemberRequest) Validate() error {
	if r.Role != nil && !validStatus(*r.Role, RoleAdmin, RoleManager, RoleMember, RoleViewer) {
		return fmt.Errorf("invalid team role %q", *r.Role)
	}
	return nil
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (r CategoryRequest) Validate() error {
	if r.Name == "" {
		return errors.New("category name is required")
	}
	return nil
}

// CreateReportRequest stores a report document directly via POST /reports,
// bypassing server-side generation.
type CreateReportRequest struct {
	Title string         `json:"title"`
	Type  string         `json:"type"`
	Data  map[string]any `json:"data,omitempty"`
}

func (r CreateReportRequest) Validate() error {
	if r.Title == "" {
		return errors.New("report title is required")
	}
	if !validStatus(r.Type, ReportTimeTracking, ReportProjectStats, ReportTeamProductivity, ReportClientBilling) {
		return fmt.Errorf("invalid report type %q", r.Type)
	}
	return nil
}

// ReportCriteria is the filter payload for the report generation endpoints.
// Every field is optional; the server applies its own defaults.
type ReportCriteria struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	ProjectID string     `json:"project_id,omitempty"`
	ClientID  string     `json:"client_id,omitempty"`
}

func (r ReportCriteria) Validate() error { return nil }

type UpdateReportRequest struct {
	Title *string `json:"title,omitempty"`
}

func (r UpdateReportRequest) Validate() error {
	if r.Title != nil && *r.Title == "" {
		return errors.New("report title cannot be empty")
	}
	return nil
}

// NotificationIDs selects notifications for mark-read / archive. An empty
// list means "all of them" (server contract).
type NotificationIDs struct {
	NotificationIDs []string `json:"notification_ids,omitempty"`
}

func (r NotificationIDs) Validate() error { return nil }

type UpdatePreferencesRequest struct {
	EmailEnabled  *bool `json:"email_enabled,omitempty"`
	TaskReminders *bool `json:"task_reminders,omitempty"`
	WeeklySummary *bool `json:"weekly_summary,omitempty"`
}

func (r UpdatePreferencesRequest) Validate() error { return nil }
