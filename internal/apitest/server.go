// Package apitest provides an in-memory fake of the Work Tracker REST API
// for tests: the full route surface, bearer-token auth, dependency-conflict
// responses, and multipart file uploads, backed by plain maps. Handlers can
// be slowed down to make in-flight overlap observable.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
)

// Server is the fake API. It implements http.Handler; wrap it in
// httptest.NewServer for transport-level tests.
type Server struct {
	router chi.Router

	// Delay is applied to every authenticated request before handling, so
	// tests can hold responses open and overlap fetches.
	Delay time.Duration

	mu        sync.Mutex
	seq       int
	order     map[string]int // entity ID -> creation order, for stable listings
	users     map[string]model.User
	passwords map[string]string // email -> password
	emails    map[string]string // email -> user ID
	tokens    map[string]string // bearer token -> user ID

	clients       map[string]model.Client
	projects      map[string]model.Project
	tasks         map[string]model.Task
	entries       map[string]model.TimeEntry
	clientFiles   map[string][]model.FileAttachment
	entryFiles    map[string][]model.FileAttachment
	team          map[string]model.TeamMember
	categories    map[string]model.Category
	reports       map[string]model.Report
	notifications map[string]model.Notification
	prefs         model.NotificationPreferences

	counts map[string]int // "METHOD /path" -> request count
}

// New creates an empty fake API.
func New() *Server {
	s := &Server{
		order:         make(map[string]int),
		users:         make(map[string]model.User),
		passwords:     make(map[string]string),
		emails:        make(map[string]string),
		tokens:        make(map[string]string),
		clients:       make(map[string]model.Client),
		projects:      make(map[string]model.Project),
		tasks:         make(map[string]model.Task),
		entries:       make(map[string]model.TimeEntry),
		clientFiles:   make(map[string][]model.FileAttachment),
		entryFiles:    make(map[string][]model.FileAttachment),
		team:          make(map[string]model.TeamMember),
		categories:    make(map[string]model.Category),
		reports:       make(map[string]model.Report),
		notifications: make(map[string]model.Notification),
		prefs:         model.NotificationPreferences{EmailEnabled: true, TaskReminders: true},
		counts:        make(map[string]int),
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.countRequests)

	r.Post("/auth/token", s.handleToken)
	r.Post("/auth/register", s.handleRegister)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Get("/auth/me", s.handleMe)

		r.Get("/clients", s.listClients)
		r.Post("/clients", s.createClient)
		r.Get("/clients/{id}", s.getClient)
		r.Put("/clients/{id}", s.updateClient)
		r.Delete("/clients/{id}", s.deleteClient)
		r.Get("/clients/{id}/files", s.listClientFiles)
		r.Post("/clients/{id}/files", s.uploadClientFile)
		r.Delete("/clients/{id}/files/{fileID}", s.deleteClientFile)

		r.Get("/projects", s.listProjects)
		r.Post("/projects", s.createProject)
		r.Get("/projects/{id}", s.getProject)
		r.Put("/projects/{id}", s.updateProject)
		r.Delete("/projects/{id}", s.deleteProject)

		r.Get("/tasks/active", s.listActiveTasks)
		r.Get("/tasks/project/{projectID}", s.listTasks)
		r.Post("/tasks/project/{projectID}", s.createTask)
		r.Get("/tasks/{id}", s.getTask)
		r.Put("/tasks/{id}", s.updateTask)
		r.Delete("/tasks/{id}", s.deleteTask)

		r.Get("/time-entries/task/{taskID}", s.listEntries)
		r.Post("/time-entries/task/{taskID}", s.createEntry)
		r.Get("/time-entries/{id}", s.getEntry)
		r.Put("/time-entries/{id}", s.updateEntry)
		r.Delete("/time-entries/{id}", s.deleteEntry)
		r.Get("/time-entries/{id}/files", s.listEntryFiles)
		r.Post("/time-entries/{id}/files", s.uploadEntryFile)
		r.Delete("/time-entries/{id}/files/{fileID}", s.deleteEntryFile)

		r.Get("/team-members/project/{projectID}", s.listTeam)
		r.Post("/team-members/project/{projectID}", s.addTeamMember)
		r.Put("/team-members/{id}", s.updateTeamMember)
		r.Delete("/team-members/{id}", s.removeTeamMember)

		r.Get("/categories", s.listCategories)
		r.Post("/categories", s.createCategory)
		r.Get("/categories/{id}", s.getCategory)
		r.Put("/categories/{id}", s.updateCategory)
		r.Delete("/categories/{id}", s.deleteCategory)

		r.Get("/reports", s.listReports)
		r.Post("/reports", s.createReport)
		r.Get("/reports/clients-full-report", s.clientsFullReport)
		r.Post("/reports/generate/{reportType}", s.generateReport)
		r.Get("/reports/{id}", s.getReport)
		r.Put("/reports/{id}", s.updateReport)
		r.Delete("/reports/{id}", s.deleteReport)

		r.Get("/notifications", s.listNotifications)
		r.Post("/notifications/mark-read", s.markNotificationsRead)
		r.Post("/notifications/archive", s.archiveNotifications)
		r.Get("/notifications/preferences", s.getPreferences)
		r.Put("/notifications/preferences", s.updatePreferences)
	})

	return r
}

// ---------------------------------------------------------------------------
// Middleware and helpers
// ---------------------------------------------------------------------------

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.counts[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Delay > 0 {
			time.Sleep(s.Delay)
		}
		const prefix = "Bearer "
		header := r.Header.Get("Authorization")
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		s.mu.Lock()
		_, ok := s.tokens[header[len(prefix):]]
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestCount returns how many requests hit "METHOD path".
func (s *Server) RequestCount(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[method+" "+path]
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, detail string) {
	writeJSON(w, statusCode, map[string]string{"detail": detail})
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) nextOrder(id string) {
	s.seq++
	s.order[id] = s.seq
}

// sortByOrder sorts ids by creation order.
func (s *Server) sortByOrder(ids []string) {
	sort.Slice(ids, func(i, j int) bool { return s.order[ids[i]] < s.order[ids[j]] })
}

// ---------------------------------------------------------------------------
// Seeding
// ---------------------------------------------------------------------------

// SeedUser registers a user with the given credentials and returns it.
func (s *Server) SeedUser(email, password, fullName string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := model.User{ID: uuid.NewString(), Email: email, FullName: fullName, Role: "user"}
	s.users[u.ID] = u
	s.emails[email] = u.ID
	s.passwords[email] = password
	return u
}

// IssueToken mints a valid bearer token for the given user.
func (s *Server) IssueToken(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok := "tok-" + uuid.NewString()
	s.tokens[tok] = userID
	return tok
}

// RevokeTokens invalidates every issued token, so the next authenticated
// request is rejected with a 401.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

// SeedClient stores a client record.
func (s *Server) SeedClient(name string) model.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := model.Client{ID: uuid.NewString(), Name: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.clients[c.ID] = c
	s.nextOrder(c.ID)
	return c
}

// SeedProject stores a project belonging to clientID.
func (s *Server) SeedProject(clientID, name string) model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := model.Project{
		ID: uuid.NewString(), Name: name, Status: model.ProjectActive,
		ClientID: clientID, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	s.projects[p.ID] = p
	s.nextOrder(p.ID)
	return p
}

// SeedTask stores a task belonging to projectID.
func (s *Server) SeedTask(projectID, title string) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := model.Task{
		ID: uuid.NewString(), Title: title, Status: model.TaskTodo,
		Priority: model.PriorityMedium, ProjectID: projectID,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	s.tasks[t.ID] = t
	s.nextOrder(t.ID)
	return t
}

// SeedNotification stores a notification.
func (s *Server) SeedNotification(title string) model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := model.Notification{ID: uuid.NewString(), Title: title, CreatedAt: time.Now()}
	s.notifications[n.ID] = n
	s.nextOrder(n.ID)
	return n
}

// ---------------------------------------------------------------------------
// Auth handlers
// ---------------------------------------------------------------------------

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form body")
		return
	}
	email := r.PostFormValue("username")
	password := r.PostFormValue("password")

	s.mu.Lock()
	stored, ok := s.passwords[email]
	userID := s.emails[email]
	s.mu.Unlock()

	if !ok || stored != password {
		writeError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	tok := s.IssueToken(userID)
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": tok,
		"token_type":   "bearer",
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	s.mu.Lock()
	if _, exists := s.emails[req.Email]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	}
	u := model.User{ID: uuid.NewString(), Email: req.Email, FullName: req.FullName, Role: "user"}
	s.users[u.ID] = u
	s.emails[u.Email] = u.ID
	s.passwords[u.Email] = req.Password
	s.mu.Unlock()

	tok := s.IssueToken(u.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": tok,
		"token_type":   "bearer",
		"user":         u,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	tok := r.Header.Get("Authorization")[len("Bearer "):]
	s.mu.Lock()
	u, ok := s.users[s.tokens[tok]]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// ---------------------------------------------------------------------------
// Client handlers
// ---------------------------------------------------------------------------

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.clients))
	for id := range s.clients {
		ids = append(ids, id)
	}
	s.sortByOrder(ids)
	out := make([]model.Client, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.clients[id])
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
	var req model.CreateClientRequest
	if err := readJSON(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	s.mu.Lock()
	c := model.Client{
		ID: uuid.NewString(), Name: req.Name, Company: req.Company,
		Email: req.Email, Phone: req.Phone, Address: req.Address, Notes: req.Notes,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	s.clients[c.ID] = c
	s.nextOrder(c.ID)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) getClient(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	c, ok := s.clients[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Client not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) updateClient(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateClientRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Client not found")
		return
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Company != nil {
		c.Company = *req.Company
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.Address != nil {
		c.Address = *req.Address
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}
	c.UpdatedAt = time.Now()
	s.clients[c.ID] = c
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		writeError(w, http.StatusNotFound, "Client not found")
		return
	}
	n := 0
	for _, p := range s.projects {
		if p.ClientID == id {
			n++
		}
	}
	if n > 0 {
		writeError(w, http.StatusConflict, fmt.Sprintf("Client has %d project(s) and cannot be deleted", n))
		return
	}
	delete(s.clients, id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) listClientFiles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	files := append([]model.FileAttachment(nil), s.clientFiles[chi.URLParam(r, "id")]...)
	s.mu.Unlock()
	if files == nil {
		files = []model.FileAttachment{}
	}
	writeJSON(w, http.StatusOK, files)
}

func (s *Server) uploadClientFile(w http.ResponseWriter, r *http.Request) {
	s.uploadFile(w, r, s.clientFiles, chi.URLParam(r, "id"))
}

func (s *Server) deleteClientFile(w http.ResponseWriter, r *http.Request) {
	s.deleteFile(w, s.clientFiles, chi.URLParam(r, "id"), chi.URLParam(r, "fileID"))
}

func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request, files map[string][]model.FileAttachment, parentID string) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "malformed multipart body")
		return
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer f.Close()
	if _, err := io.Copy(io.Discard, f); err != nil {
		writeError(w, http.StatusBadRequest, "unreadable file content")
		return
	}

	s.mu.Lock()
	att := model.FileAttachment{
		ID:       uuid.NewString(),
		FileName: header.Filename,
		FileURL:  "https://files.example/" + uuid.NewString(),
	}
	files[parentID] = append(files[parentID], att)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, att)
}

func (s *Server) deleteFile(w http.ResponseWriter, files map[string][]model.FileAttachment, parentID, fileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range files[parentID] {
		if f.ID == fileID {
			files[parentID] = append(files[parentID][:i], files[parentID][i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "File not found")
}

// ---------------------------------------------------------------------------
// Project handlers
// ---------------------------------------------------------------------------

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.projects))
	for id := range s.projects {
		ids = append(ids, id)
	}
	s.sortByOrder(ids)
	out := make([]model.Project, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.projects[id])
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProjectRequest
	if err := readJSON(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	s.mu.Lock()
	p := model.Project{
		ID: uuid.NewString(), Name: req.Name, Description: req.Description,
		Status: req.Status, ClientID: req.ClientID,
		StartDate: req.StartDate, EndDate: req.EndDate,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	s.projects[p.ID] = p
	s.nextOrder(p.ID)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p, ok := s.projects[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateProjectRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.StartDate != nil {
		p.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		p.EndDate = req.EndDate
	}
	p.UpdatedAt = time.Now()
	s.projects[p.ID] = p
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	n := 0
	for _, t := range s.tasks {
		if t.ProjectID == id {
			n++
		}
	}
	if n > 0 {
		writeError(w, http.StatusConflict, fmt.Sprintf("Project has %d task(s) and cannot be deleted", n))
		return
	}
	delete(s.projects, id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ---------------------------------------------------------------------------
// Task handlers
// ---------------------------------------------------------------------------

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	s.mu.Lock()
	ids := make([]string, 0)
	for id, t := range s.tasks {
		if t.ProjectID == projectID {
			ids = append(ids, id)
		}
	}
	s.sortByOrder(ids)
	out := make([]model.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.tasks[id])
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listActiveTasks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ids := make([]string, 0)
	for id, t := range s.tasks {
		if t.Status == model.TaskInProgress {
			ids = append(ids, id)
		}
	}
	s.sortByOrder(ids)
	out := make([]model.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.tasks[id])
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	var req model.CreateTaskRequest
	if err := readJSON(r, &req); err != nil || req.Title == "" {
		writeError(w, http.StatusUnprocessableEntity, "title is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[projectID]; !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	t := model.Task{
		ID: uuid.NewString(), Title: req.Title, Description: req.Description,
		Status: req.Status, Priority: req.Priority, ProjectID: projectID,
		AssignedTo: req.AssignedTo, DueDate: req.DueDate,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	s.tasks[t.ID] = t
	s.nextOrder(t.ID)
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	t, ok := s.tasks[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateTaskRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.AssignedTo != nil {
		t.AssignedTo = req.AssignedTo
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	}
	t.UpdatedAt = time.Now()
	s.tasks[t.ID] = t
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	n := 0
	for _, e := range s.entries {
		if e.TaskID == id {
			n++
		}
	}
	if n > 0 {
		writeError(w, http.StatusConflict, fmt.Sprintf("Task has %d time entr(ies) and cannot be deleted", n))
		return
	}
	delete(s.tasks, id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ---------------------------------------------------------------------------
// Time entry handlers
// ---------------------------------------------------------------------------

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	s.mu.Lock()
	ids := make([]string, 0)
	for id, e := range s.entries {
		if e.TaskID == taskID {
			ids = append(ids, id)
		}
	}
	s.sortByOrder(ids)
	out := make([]model.TimeEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.entries[id])
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	var req model.CreateTimeEntryRequest
	if err := readJSON(r, &req); err != nil || req.Date == "" {
		writeError(w, http.StatusUnprocessableEntity, "date is required")
		return
	}
	tok := r.Header.Get("Authorization")[len("Bearer "):]
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[taskID]; !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	e := model.TimeEntry{
		ID: uuid.NewString(), TaskID: taskID, UserID: s.tokens[tok],
		Description: req.Description, Date: req.Date,
		StartTime: req.StartTime, EndTime: req.EndTime, Duration: req.Duration,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	s.entries[e.ID] = e
	s.nextOrder(e.ID)
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	e, ok := s.entries[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Time entry not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateTimeEntryRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Time entry not found")
		return
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Date != nil {
		e.Date = *req.Date
	}
	if req.StartTime != nil {
		e.StartTime = req.StartTime
	}
	if req.EndTime != nil {
		e.EndTime = req.EndTime
	}
	if req.Duration != nil {
		e.Duration = *req.Duration
	}
	e.UpdatedAt = time.Now()
	s.entries[e.ID] = e
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		writeError(w, http.StatusNotFound, "Time entry not found")
		return
	}
	delete(s.entries, id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) listEntryFiles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	files := append([]model.FileAttachment(nil), s.entryFiles[chi.URLParam(r, "id")]...)
	s.mu.Unlock()
	if files == nil {
		files = []model.FileAttachment{}
	}
	writeJSON(w, http.StatusOK, files)
}

func (s *Server) uploadEntryFile(w http.ResponseWriter, r *http.Request) {
	s.uploadFile(w, r, s.entryFiles, chi.URLParam(r, "id"))
}

func (s *Server) deleteEntryFile(w http.ResponseWriter, r *http.Request) {
	s.deleteFile(w, s.entryFiles, chi.URLParam(r, "id"), chi.URLParam(r, "fileID"))
}

// ---------------------------------------------------------------------------
// Team handlers
// ---------------------------------------------------------------------------

func (s *Server) listTeam(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	s.mu.Lock()
	ids := make([]string, 0)
	for id, m := range s.team {
		if m.ProjectID == projectID {
			ids = append(ids, id)
		}
	}
	s.sortByOrder(ids)
	out := make([]model.TeamMember, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.team[id])
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) addTeamMember(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	var req model.AddTeamMemberRequest
	if err := readJSON(r, &req); err != nil || req.UserID == "" {
		writeError(w, http.StatusUnprocessableEntity, "user_id is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m := model.TeamMember{
		ID: uuid.NewString(), UserID: req.UserID, ProjectID: projectID,
		Role: req.Role, IsActive: true,
	}
	s.team[m.ID] = m
	s.nextOrder(m.ID)
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) updateTeamMember(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateTeamMemberRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.team[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Team member not found")
		return
	}
	if req.Role != nil {
		m.Role = *req.Role
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}
	s.team[m.ID] = m
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) removeTeamMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.team[id]; !ok {
		writeError(w, http.StatusNotFound, "Team member not found")
		return
	}
	delete(s.team, id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ---------------------------------------------------------------------------
// Category handlers
// ---------------------------------------------------------------------------

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.categories))
	for id := range s.categories {
		ids = append(ids, id)
	}
	s.sortByOrder(ids)
	out := make([]model.Category, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.categories[id])
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req model.CategoryRequest
	if err := readJSON(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	s.mu.Lock()
	c := model.Category{
		ID: uuid.NewString(), Name: req.Name, Description: req.Description,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	s.categories[c.ID] = c
	s.nextOrder(c.ID)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	c, ok := s.categories[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req model.CategoryRequest
	if err := readJSON(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	c.Name = req.Name
	c.Description = req.Description
	c.UpdatedAt = time.Now()
	s.categories[c.ID] = c
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	delete(s.categories, id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ---------------------------------------------------------------------------
// Report handlers
// ---------------------------------------------------------------------------

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.reports))
	for id := range s.reports {
		ids = append(ids, id)
	}
	s.sortByOrder(ids)
	out := make([]model.Report, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.reports[id])
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request) {
	var req model.CreateReportRequest
	if err := readJSON(r, &req); err != nil || req.Title == "" {
		writeError(w, http.StatusUnprocessableEntity, "title is required")
		return
	}
	s.mu.Lock()
	rep := model.Report{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Type:      req.Type,
		Data:      req.Data,
		CreatedAt: time.Now(),
	}
	s.reports[rep.ID] = rep
	s.nextOrder(rep.ID)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) generateReport(w http.ResponseWriter, r *http.Request) {
	reportType := chi.URLParam(r, "reportType")
	switch reportType {
	case model.ReportTimeTracking, model.ReportProjectStats,
		model.ReportTeamProductivity, model.ReportClientBilling:
	default:
		writeError(w, http.StatusNotFound, "Unknown report type")
		return
	}
	var criteria model.ReportCriteria
	_ = readJSON(r, &criteria)

	// Each generation call creates a new report row; repeated submission
	// creates duplicates, matching the real backend.
	s.mu.Lock()
	rep := model.Report{
		ID:        uuid.NewString(),
		Title:     reportType + " report",
		Type:      reportType,
		Data:      map[string]any{"total_hours": 8.5},
		CreatedAt: time.Now(),
	}
	s.reports[rep.ID] = rep
	s.nextOrder(rep.ID)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rep, ok := s.reports[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Report not found")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) updateReport(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateReportRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rep, ok := s.reports[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Report not found")
		return
	}
	if req.Title != nil {
		rep.Title = *req.Title
	}
	s.reports[rep.ID] = rep
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) deleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[id]; !ok {
		writeError(w, http.StatusNotFound, "Report not found")
		return
	}
	delete(s.reports, id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) clientsFullReport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	clients := make([]map[string]any, 0, len(s.clients))
	for _, c := range s.clients {
		projects := 0
		for _, p := range s.projects {
			if p.ClientID == c.ID {
				projects++
			}
		}
		clients = append(clients, map[string]any{
			"client":        c,
			"project_count": projects,
		})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"clients": clients})
}

// ---------------------------------------------------------------------------
// Notification handlers
// ---------------------------------------------------------------------------

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.notifications))
	for id, n := range s.notifications {
		if !n.Archived {
			ids = append(ids, id)
		}
	}
	s.sortByOrder(ids)
	out := make([]model.Notification, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.notifications[id])
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) markNotificationsRead(w http.ResponseWriter, r *http.Request) {
	var req model.NotificationIDs
	_ = readJSON(r, &req)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.notifications {
		if len(req.NotificationIDs) == 0 || contains(req.NotificationIDs, id) {
			n.Read = true
			s.notifications[id] = n
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) archiveNotifications(w http.ResponseWriter, r *http.Request) {
	var req model.NotificationIDs
	_ = readJSON(r, &req)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.notifications {
		if len(req.NotificationIDs) == 0 || contains(req.NotificationIDs, id) {
			n.Archived = true
			s.notifications[id] = n
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getPreferences(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	prefs := s.prefs
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) updatePreferences(w http.ResponseWriter, r *http.Request) {
	var req model.UpdatePreferencesRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.EmailEnabled != nil {
		s.prefs.EmailEnabled = *req.EmailEnabled
	}
	if req.TaskReminders != nil {
		s.prefs.TaskReminders = *req.TaskReminders
	}
	if req.WeeklySummary != nil {
		s.prefs.WeeklySummary = *req.WeeklySummary
	}
	writeJSON(w, http.StatusOK, s.prefs)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
