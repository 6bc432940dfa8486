package session_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rananjaysingh20/work-tracker-cli/internal/api"
	"github.com/rananjaysingh20/work-tracker-cli/internal/apitest"
	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
	"github.com/rananjaysingh20/work-tracker-cli/internal/session"
)

func registerReq(email, password, name string) model.RegisterRequest {
	return model.RegisterRequest{Email: email, Password: password, FullName: name}
}

func newTestStore(t *testing.T) (*apitest.Server, *api.Client, *session.Store, string) {
	t.Helper()
	fake := apitest.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := api.New(srv.URL)
	tokenPath := filepath.Join(t.TempDir(), "auth", "token.json")
	store := session.NewStore(tokenPath, client)
	return fake, client, store, tokenPath
}

func TestCheckWithoutTokenSkipsNetwork(t *testing.T) {
	fake, _, store, _ := newTestStore(t)

	store.Check(context.Background())

	if got := store.State(); got != session.StateLoggedOut {
		t.Errorf("state = %v, want logged out", got)
	}
	if n := fake.RequestCount("GET", "/auth/me"); n != 0 {
		t.Errorf("GET /auth/me requests = %d, want 0 with no token", n)
	}
}

func TestLoginResolvesProfileAndPersistsToken(t *testing.T) {
	fake, _, store, tokenPath := newTestStore(t)
	fake.SeedUser("dev@example.com", "hunter2", "Dev Eloper")

	if err := store.Login(context.Background(), "dev@example.com", "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if got := store.State(); got != session.StateLoggedIn {
		t.Errorf("state = %v, want logged in", got)
	}
	u := store.User()
	if u == nil || u.Email != "dev@example.com" {
		t.Errorf("user = %+v, want dev@example.com", u)
	}
	if n := fake.RequestCount("GET", "/auth/me"); n != 1 {
		t.Errorf("GET /auth/me requests = %d, want 1", n)
	}
	if _, err := os.Stat(tokenPath); err != nil {
		t.Errorf("token file not persisted: %v", err)
	}
}

func TestPersistedTokenResumesSession(t *testing.T) {
	fake, client, store, tokenPath := newTestStore(t)
	fake.SeedUser("dev@example.com", "hunter2", "Dev Eloper")
	if err := store.Login(context.Background(), "dev@example.com", "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// A fresh store against the same token file picks the session back up.
	resumed := session.NewStore(tokenPath, client)
	resumed.Check(context.Background())

	if got := resumed.State(); got != session.StateLoggedIn {
		t.Errorf("resumed state = %v, want logged in", got)
	}
	if u := resumed.User(); u == nil || u.Email != "dev@example.com" {
		t.Errorf("resumed user = %+v, want dev@example.com", u)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	fake, _, store, _ := newTestStore(t)
	fake.SeedUser("dev@example.com", "hunter2", "Dev Eloper")

	err := store.Login(context.Background(), "dev@example.com", "wrong")
	if !api.IsAuth(err) {
		t.Fatalf("Login err = %v, want an auth error", err)
	}
	if got, want := api.Detail(err, ""), "Incorrect email or password"; got != want {
		t.Errorf("detail = %q, want %q", got, want)
	}
	if store.State() == session.StateLoggedIn {
		t.Error("state = logged in after a failed login")
	}
}

func TestUnauthorizedResponseExpiresSession(t *testing.T) {
	fake, client, store, tokenPath := newTestStore(t)
	fake.SeedUser("dev@example.com", "hunter2", "Dev Eloper")
	if err := store.Login(context.Background(), "dev@example.com", "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	fake.RevokeTokens()

	_, err := client.Clients.List(context.Background())
	if !api.IsAuth(err) {
		t.Fatalf("List err = %v, want an auth error", err)
	}
	if got := store.State(); got != session.StateLoggedOut {
		t.Errorf("state = %v, want logged out after a 401", got)
	}
	if store.AccessToken() != "" {
		t.Error("token still present after a 401")
	}
	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Errorf("token file still on disk after a 401 (stat err = %v)", err)
	}
}

func TestLogoutClearsLocalState(t *testing.T) {
	fake, _, store, tokenPath := newTestStore(t)
	fake.SeedUser("dev@example.com", "hunter2", "Dev Eloper")
	if err := store.Login(context.Background(), "dev@example.com", "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	store.Logout(context.Background())

	if got := store.State(); got != session.StateLoggedOut {
		t.Errorf("state = %v, want logged out", got)
	}
	if store.User() != nil {
		t.Error("user still present after logout")
	}
	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Errorf("token file still on disk after logout (stat err = %v)", err)
	}
}

func TestRegisterLogsIn(t *testing.T) {
	fake, _, store, _ := newTestStore(t)

	err := store.Register(context.Background(), registerReq("new@example.com", "s3cret", "New User"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got := store.State(); got != session.StateLoggedIn {
		t.Errorf("state = %v, want logged in", got)
	}
	if u := store.User(); u == nil || u.Email != "new@example.com" {
		t.Errorf("user = %+v, want new@example.com", u)
	}
	// Registration returns the profile inline; no extra fetch happens.
	if n := fake.RequestCount("GET", "/auth/me"); n != 0 {
		t.Errorf("GET /auth/me requests = %d, want 0", n)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	fake, _, store, _ := newTestStore(t)
	fake.SeedUser("dev@example.com", "hunter2", "Dev Eloper")

	err := store.Register(context.Background(), registerReq("dev@example.com", "pw", "Dup"))
	if !api.IsAuth(err) {
		t.Fatalf("Register err = %v, want an auth error", err)
	}
	if got, want := api.Detail(err, ""), "Email already registered"; got != want {
		t.Errorf("detail = %q, want %q", got, want)
	}
}

func TestCorruptTokenFileTreatedAsAbsent(t *testing.T) {
	fake := apitest.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	tokenPath := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(tokenPath, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	client := api.New(srv.URL)
	store := session.NewStore(tokenPath, client)
	store.Check(context.Background())

	if got := store.State(); got != session.StateLoggedOut {
		t.Errorf("state = %v, want logged out", got)
	}
	if n := fake.RequestCount("GET", "/auth/me"); n != 0 {
		t.Errorf("GET /auth/me requests = %d, want 0 with a corrupt token", n)
	}
}
