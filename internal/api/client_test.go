package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rananjaysingh20/work-tracker-cli/internal/api"
	"github.com/rananjaysingh20/work-tracker-cli/internal/apitest"
	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
	"github.com/rananjaysingh20/work-tracker-cli/internal/query"
)

// staticToken is a fixed TokenSource for tests that bypass the session store.
type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func newTestClient(t *testing.T) (*apitest.Server, *api.Client) {
	t.Helper()
	fake := apitest.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := api.New(srv.URL)
	u := fake.SeedUser("dev@example.com", "hunter2", "Dev Eloper")
	client.SetTokenSource(staticToken(fake.IssueToken(u.ID)))
	return fake, client
}

func TestNotFoundMapsToNotFoundError(t *testing.T) {
	_, client := newTestClient(t)

	_, err := client.Clients.Get(context.Background(), "no-such-id")
	if !api.IsNotFound(err) {
		t.Fatalf("err = %v, want a not-found error", err)
	}
	if got, want := api.Detail(err, ""), "Client not found"; got != want {
		t.Errorf("detail = %q, want %q", got, want)
	}
}

func TestUnauthorizedInvokesGlobalHandler(t *testing.T) {
	fake := apitest.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := api.New(srv.URL)
	client.SetTokenSource(staticToken("bogus"))
	expired := false
	client.OnUnauthorized(func() { expired = true })

	_, err := client.Projects.List(context.Background())
	if !api.IsAuth(err) {
		t.Fatalf("err = %v, want an auth error", err)
	}
	if !expired {
		t.Error("401 did not invoke the OnUnauthorized handler")
	}
	if got, want := api.Detail(err, ""), "Could not validate credentials"; got != want {
		t.Errorf("detail = %q, want %q", got, want)
	}
}

func TestConflictDetailSurfacedVerbatim(t *testing.T) {
	fake, client := newTestClient(t)
	c := fake.SeedClient("Acme")
	fake.SeedProject(c.ID, "Website")

	err := client.Clients.Delete(context.Background(), c.ID)
	if !api.IsConflict(err) {
		t.Fatalf("err = %v, want a conflict error", err)
	}
	want := "Client has 1 project(s) and cannot be deleted"
	if got := api.Detail(err, ""); got != want {
		t.Errorf("detail = %q, want %q", got, want)
	}

	// The failed delete must not have removed anything.
	clients, listErr := client.Clients.List(context.Background())
	if listErr != nil {
		t.Fatalf("List after failed delete: %v", listErr)
	}
	if len(clients) != 1 || clients[0].ID != c.ID {
		t.Errorf("clients after failed delete = %+v, want the original record", clients)
	}
}

func TestValidationRejectedBeforeNetwork(t *testing.T) {
	fake, client := newTestClient(t)

	_, err := client.Clients.Create(context.Background(), model.CreateClientRequest{})
	var verr *api.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want a validation error", err)
	}
	if n := fake.RequestCount("POST", "/clients"); n != 0 {
		t.Errorf("POST /clients requests = %d, want 0 for a locally rejected payload", n)
	}
}

func TestCreateAndListProjects(t *testing.T) {
	fake, client := newTestClient(t)
	c := fake.SeedClient("Acme")

	p, err := client.Projects.Create(context.Background(), model.CreateProjectRequest{
		Name:     "Website",
		Status:   model.ProjectActive,
		ClientID: c.ID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == "" || p.ClientID != c.ID {
		t.Errorf("created project = %+v, want a server-assigned ID for client %s", p, c.ID)
	}

	projects, err := client.Projects.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(projects) != 1 || projects[0].Name != "Website" {
		t.Errorf("projects = %+v, want the one created project", projects)
	}
}

func TestTasksScopedToProject(t *testing.T) {
	fake, client := newTestClient(t)
	c := fake.SeedClient("Acme")
	p1 := fake.SeedProject(c.ID, "Website")
	p2 := fake.SeedProject(c.ID, "App")
	fake.SeedTask(p1.ID, "Design")
	fake.SeedTask(p1.ID, "Build")
	fake.SeedTask(p2.ID, "Prototype")

	tasks, err := client.Tasks.ListByProject(context.Background(), p1.ID)
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("tasks = %d, want 2 scoped to the project", len(tasks))
	}
	for _, task := range tasks {
		if task.ProjectID != p1.ID {
			t.Errorf("task %s belongs to %s, want %s", task.ID, task.ProjectID, p1.ID)
		}
	}
}

func TestTimeEntryRoundTrip(t *testing.T) {
	fake, client := newTestClient(t)
	c := fake.SeedClient("Acme")
	p := fake.SeedProject(c.ID, "Website")
	task := fake.SeedTask(p.ID, "Design")

	e, err := client.TimeEntries.Create(context.Background(), task.ID, model.CreateTimeEntryRequest{
		Description: "wireframes",
		Date:        "2026-08-28",
		Duration:    8.5,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.Duration != 8.5 || e.TaskID != task.ID {
		t.Errorf("entry = %+v, want duration 8.5 on task %s", e, task.ID)
	}

	entries, err := client.TimeEntries.ListByTask(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("ListByTask: %v", err)
	}
	if len(entries) != 1 || entries[0].Description != "wireframes" {
		t.Errorf("entries = %+v, want the one created entry", entries)
	}
}

func TestFileUploadMultipart(t *testing.T) {
	fake, client := newTestClient(t)
	c := fake.SeedClient("Acme")

	att, err := client.Clients.UploadFile(context.Background(), c.ID, "contract.pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if att.FileName != "contract.pdf" {
		t.Errorf("file name = %q, want %q", att.FileName, "contract.pdf")
	}
	if att.FileURL == "" {
		t.Error("file URL missing from upload response")
	}

	files, err := client.Clients.Files(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 1 || files[0].ID != att.ID {
		t.Errorf("files = %+v, want the uploaded attachment", files)
	}

	if err := client.Clients.DeleteFile(context.Background(), c.ID, att.ID); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	files, err = client.Clients.Files(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Files after delete: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("files after delete = %d, want 0", len(files))
	}
}

func TestCreateReportStoresDocument(t *testing.T) {
	_, client := newTestClient(t)

	r, err := client.Reports.Create(context.Background(), model.CreateReportRequest{
		Title: "August billing",
		Type:  model.ReportClientBilling,
		Data:  map[string]any{"total_hours": 12.5},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.ID == "" || r.Title != "August billing" {
		t.Errorf("created report = %+v, want a server-assigned ID and the given title", r)
	}

	got, err := client.Reports.Get(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Type != model.ReportClientBilling {
		t.Errorf("type = %q, want %q", got.Type, model.ReportClientBilling)
	}
	if v, ok := got.Data["total_hours"].(float64); !ok || v != 12.5 {
		t.Errorf("data = %+v, want total_hours 12.5", got.Data)
	}
}

func TestCreateReportRejectsInvalidPayload(t *testing.T) {
	fake, client := newTestClient(t)

	tests := []model.CreateReportRequest{
		{Type: model.ReportTimeTracking},            // missing title
		{Title: "Untitled", Type: "quarterly-vibe"}, // unknown type
	}
	for _, req := range tests {
		_, err := client.Reports.Create(context.Background(), req)
		var verr *api.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Create(%+v) err = %v, want a validation error", req, err)
		}
	}
	if n := fake.RequestCount("POST", "/reports"); n != 0 {
		t.Errorf("POST /reports requests = %d, want 0 for locally rejected payloads", n)
	}
}

func TestConcurrentReadsShareOneRequest(t *testing.T) {
	fake, client := newTestClient(t)
	c := fake.SeedClient("Acme")
	fake.SeedProject(c.ID, "Website")

	// Hold responses open so the fetches genuinely overlap in flight.
	fake.Delay = 50 * time.Millisecond

	cache := query.New()
	key := query.Key{Resource: "projects"}

	const workers = 5
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = query.Fetch(context.Background(), cache, key, client.Projects.List)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: %v", i, err)
		}
	}
	if n := fake.RequestCount("GET", "/projects"); n != 1 {
		t.Errorf("GET /projects requests = %d, want 1 for overlapping reads", n)
	}
}

func TestGenerateReportCreatesNewRowEachTime(t *testing.T) {
	_, client := newTestClient(t)

	for i := 0; i < 2; i++ {
		if _, err := client.Reports.Generate(context.Background(), model.ReportTimeTracking, model.ReportCriteria{}); err != nil {
			t.Fatalf("Generate #%d: %v", i, err)
		}
	}

	reports, err := client.Reports.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(reports) != 2 {
		t.Errorf("reports = %d, want 2 (generation is not idempotent)", len(reports))
	}
}

func TestGenerateReportRejectsUnknownType(t *testing.T) {
	fake, client := newTestClient(t)

	_, err := client.Reports.Generate(context.Background(), "bogus-type", model.ReportCriteria{})
	var verr *api.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want a validation error", err)
	}
	if n := fake.RequestCount("POST", "/reports/generate/bogus-type"); n != 0 {
		t.Errorf("generate requests = %d, want 0 for an unknown type", n)
	}
}

func TestServerErrorMapsToServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "database unavailable"}`))
	}))
	t.Cleanup(srv.Close)

	client := api.New(srv.URL)
	_, err := client.Clients.List(context.Background())
	var serr *api.ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want a server error", err)
	}
	if serr.Status != http.StatusInternalServerError || serr.Detail != "database unavailable" {
		t.Errorf("server error = %+v, want status 500 with the body detail", serr)
	}
}

func TestUnreachableHostMapsToNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := api.New(url)
	_, err := client.Clients.List(context.Background())
	var nerr *api.NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("err = %v, want a network error", err)
	}
}

func TestNotificationsMarkReadAll(t *testing.T) {
	fake, client := newTestClient(t)
	fake.SeedNotification("Task due")
	fake.SeedNotification("Weekly summary")

	if err := client.Notifications.MarkRead(context.Background(), nil); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	notes, err := client.Notifications.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("notifications = %d, want 2", len(notes))
	}
	for _, n := range notes {
		if !n.Read {
			t.Errorf("notification %s unread after mark-read all", n.ID)
		}
	}
}
