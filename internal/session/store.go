package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"

	"github.com/rananjaysingh20/work-tracker-cli/internal/api"
	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
)

// State is the session lifecycle state. The only valid transitions are:
// Unknown → LoggedOut (no token, or profile fetch failed), Unknown →
// LoggedIn (token resolved), LoggedOut → LoggedIn (login/register), and
// LoggedIn → LoggedOut (logout, or any 401 observed by the transport).
type State int

const (
	StateUnknown State = iota
	StateLoggedOut
	StateLoggedIn
)

func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged out"
	case StateLoggedIn:
		return "logged in"
	default:
		return "unknown"
	}
}

// Store is the single source of truth for "who is logged in". It holds the
// current user and bearer token in memory and persists only the token
// across runs. It implements api.TokenSource and registers itself as the
// transport's 401 handler, so an authorization failure anywhere signs the
// whole process out.
type Store struct {
	tokenPath string
	client    *api.Client

	mu    sync.Mutex
	token *oauth2.Token
	user  *model.User
	state State
}

// NewStore creates a session store persisting its token at tokenPath and
// wires itself into the client's request/response hooks. A previously saved
// token is loaded but not validated; call Check to resolve it into a
// session.
func NewStore(tokenPath string, client *api.Client) *Store {
	s := &Store{
		tokenPath: tokenPath,
		client:    client,
		state:     StateUnknown,
	}
	tok, err := loadToken(tokenPath)
	if err != nil {
		// Corrupt token file: warn and treat as absent.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	s.token = tok

	client.SetTokenSource(s)
	client.OnUnauthorized(s.Expire)
	return s
}

// AccessToken returns the current bearer token, or "" when signed out.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the current user, or nil when not logged in.
func (s *Store) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Check resolves the persisted token into a session. With no token it goes
// straight to LoggedOut without touching the network. With a token it
// fetches the profile; any failure clears the token silently and the store
// proceeds as logged out.
func (s *Store) Check(ctx context.Context) {
	s.mu.Lock()
	tok := s.token
	s.mu.Unlock()

	if tok == nil || tok.AccessToken == "" {
		s.clear()
		return
	}

	user, err := s.client.Auth.Me(ctx)
	if err != nil {
		// The 401 path has already cleared us via Expire; any other failure
		// clears here.
		s.clear()
		return
	}

	s.mu.Lock()
	s.user = user
	s.state = StateLoggedIn
	s.mu.Unlock()
}

// oauthConfig returns the OAuth2 password-grant config for the API's token
// endpoint. The grant posts form-encoded username/password to /auth/token
// and receives {access_token, ...}.
func (s *Store) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  s.client.BaseURL() + "/auth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Login exchanges credentials for a token, persists it, and fetches the
// profile. Invalid credentials surface as an AuthError carrying the
// server's detail message when present.
func (s *Store) Login(ctx context.Context, email, password string) error {
	tok, err := s.oauthConfig().PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		return &api.AuthError{Detail: grantErrorDetail(err, "Login failed")}
	}

	s.setToken(tok)

	user, err := s.client.Auth.Me(ctx)
	if err != nil {
		s.clear()
		return err
	}

	s.mu.Lock()
	s.user = user
	s.state = StateLoggedIn
	s.mu.Unlock()
	return nil
}

// Register creates an account. Token and user come straight from the
// response; no extra profile fetch.
func (s *Store) Register(ctx context.Context, req model.RegisterRequest) error {
	resp, err := s.client.Auth.Register(ctx, req)
	if err != nil {
		return &api.AuthError{Detail: api.Detail(err, "Registration failed")}
	}

	s.setToken(&oauth2.Token{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
	})

	s.mu.Lock()
	s.user = &resp.User
	s.state = StateLoggedIn
	s.mu.Unlock()
	return nil
}

// Logout invalidates the session server-side on a best-effort basis (a
// network failure there is non-fatal) and unconditionally clears local
// state.
func (s *Store) Logout(ctx context.Context) {
	if err := s.client.Auth.Logout(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: server-side logout failed: %v\n", err)
	}
	s.clear()
}

// Expire clears the session locally. The transport calls this on any 401;
// nothing else should.
func (s *Store) Expire() {
	s.clear()
}

func (s *Store) setToken(tok *oauth2.Token) {
	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
	if err := saveToken(s.tokenPath, tok); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save token: %v\n", err)
	}
}

func (s *Store) clear() {
	s.mu.Lock()
	s.token = nil
	s.user = nil
	s.state = StateLoggedOut
	s.mu.Unlock()
	if err := os.Remove(s.tokenPath); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not remove token file: %v\n", err)
	}
}

// grantErrorDetail extracts the server's detail message from a failed token
// grant, falling back to the given generic message.
func grantErrorDetail(err error, fallback string) string {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && len(rerr.Body) > 0 {
		var body struct {
			Detail string `json:"detail"`
		}
		if jsonErr := json.Unmarshal(rerr.Body, &body); jsonErr == nil && body.Detail != "" {
			return body.Detail
		}
	}
	return fallback
}

// loadToken loads a previously saved token from disk.
func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", path, err)
	}
	return &tok, nil
}

// saveToken persists a token to disk atomically.
func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}
