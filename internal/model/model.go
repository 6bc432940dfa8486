package model

import "time"

// User is the authenticated account as returned by GET /auth/me.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Client represents a business client of the freelancer/agency.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Project status values.
const (
	ProjectActive    = "active"
	ProjectPaused    = "paused"
	ProjectCompleted = "completed"
)

// Project belongs to exactly one client.
type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	ClientID    string     `json:"client_id"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Task status values.
const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
)

// Task priority values.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task belongs to exactly one project.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	ProjectID   string     `json:"project_id"`
	AssignedTo  *string    `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TimeEntry belongs to exactly one task. Duration is hours as a float and is
// derived client-side from start/end when both are present, but stored as an
// independent field the server treats as authoritative.
type TimeEntry struct {
	ID          string     `json:"id"`
	TaskID      string     `json:"task_id"`
	UserID      string     `json:"user_id"`
	Description string     `json:"description"`
	Date        string     `json:"date"` // YYYY-MM-DD
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Duration    float64    `json:"duration"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Team member roles.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleMember  = "MEMBER"
	RoleViewer  = "VIEWER"
)

// TeamMember associates a user with a project.
type TeamMember struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ProjectID string `json:"project_id"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
}

// Category is a user-defined label for grouping work.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FileAttachment is attached to either a client or a time entry.
type FileAttachment struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	FileURL  string `json:"file_url"`
}

// Report types accepted by POST /reports/generate/{type}.
const (
	ReportTimeTracking     = "time-tracking"
	ReportProjectStats     = "project-stats"
	ReportTeamProductivity = "team-productivity"
	ReportClientBilling    = "client-billing"
)

// Report is a server-generated aggregate view. Data is an opaque
// server-composed document rendered as-is.
type Report struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}

// Notification is a server-side event addressed to the current user.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationPreferences as returned by GET /notifications/preferences.
type NotificationPreferences struct {
	EmailEnabled  bool `json:"email_enabled"`
	TaskReminders bool `json:"task_reminders"`
	WeeklySummary bool `json:"weekly_summary"`
}
