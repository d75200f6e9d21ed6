// Package session owns the authenticated identity and its bearer token. The
// pair lives in memory for the current process and in local storage between
// runs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/apiclient"
	"github.com/frahmantamala/timesheet-management/internal/session/storage"
)

// Identity is the signed-in user as reported by the server at login.
type Identity struct {
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Role  internal.Role `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == internal.RoleAdmin
}

type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Store is created once per process and passed to whatever needs the session.
type Store struct {
	mu       sync.RWMutex
	storage  storage.Storage
	api      apiclient.Requester
	logger   *slog.Logger
	identity *Identity
	token    string
}

func NewStore(s storage.Storage, api apiclient.Requester, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{storage: s, api: api, logger: logger}
}

// PersistedToken reads the token straight from storage, so the API client
// can be built before the Store that writes it.
func PersistedToken(s storage.Storage) apiclient.TokenSource {
	return apiclient.TokenSourceFunc(func() string {
		token, err := s.Get(storage.KeyToken)
		if err != nil {
			return ""
		}
		return token
	})
}

// Restore adopts a previously persisted session without contacting the
// server. Missing or unreadable entries leave the store anonymous.
func (s *Store) Restore(ctx context.Context) {
	rawUser, err := s.storage.Get(storage.KeyUser)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to read persisted user", "error", err)
		}
		return
	}
	token, err := s.storage.Get(storage.KeyToken)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to read persisted token", "error", err)
		}
		return
	}
	if token == "" {
		return
	}

	var persisted *Identity
	if err := json.Unmarshal([]byte(rawUser), &persisted); err != nil {
		s.logger.WarnContext(ctx, "ignoring malformed persisted user", "error", err)
		return
	}
	if persisted == nil || persisted.Email == "" {
		s.logger.WarnContext(ctx, "ignoring empty persisted user")
		return
	}
	identity := *persisted
	identity.Role = internal.NormalizeRole(string(identity.Role))

	s.mu.Lock()
	s.identity = &identity
	s.token = token
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "session restored", "email", identity.Email, "role", identity.Role)
}

func (s *Store) Login(ctx context.Context, email, password string) (Identity, error) {
	dto := LoginDTO{Email: email, Password: password}
	if err := dto.Validate(); err != nil {
		return Identity{}, err
	}

	var resp loginResponse
	if err := s.api.Do(ctx, http.MethodPost, "/auth/login", nil, dto, &resp); err != nil {
		s.logger.WarnContext(ctx, "login failed", "email", email, "error", err)
		return Identity{}, internal.Wrap(internal.ErrCodeLoginFailed, "Login failed", err)
	}
	if resp.Token == "" {
		return Identity{}, internal.Wrap(internal.ErrCodeLoginFailed, "Login failed",
			internal.NewServerRejection(http.StatusBadGateway, "login response did not include a token"))
	}

	identity := Identity{
		Name:  resp.User.Name,
		Email: resp.User.Email,
		Role:  internal.NormalizeRole(string(resp.User.Role)),
	}

	if err := s.persist(identity, resp.Token); err != nil {
		return Identity{}, internal.Wrap(internal.ErrCodeLoginFailed, "Login failed: could not save session", err)
	}

	s.mu.Lock()
	s.identity = &identity
	s.token = resp.Token
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "logged in", "email", identity.Email, "role", identity.Role)
	return identity, nil
}

// Register creates an account. It does not sign in.
func (s *Store) Register(ctx context.Context, dto RegisterDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	dto.normalize()

	if err := s.api.Do(ctx, http.MethodPost, "/auth/register", nil, dto, nil); err != nil {
		s.logger.WarnContext(ctx, "registration failed", "email", dto.Email, "error", err)
		return internal.Wrap(internal.ErrCodeRegistrationFailed, "Registration failed", err)
	}

	s.logger.InfoContext(ctx, "registered", "email", dto.Email, "role", dto.Role)
	return nil
}

// Logout forgets the session locally. The server is not told.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.identity = nil
	s.token = ""
	s.mu.Unlock()

	var errs []error
	if err := s.storage.Remove(storage.KeyToken); err != nil {
		errs = append(errs, err)
	}
	if err := s.storage.Remove(storage.KeyUser); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Store) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

func (s *Store) State() State {
	if _, ok := s.Current(); ok {
		return Authenticated
	}
	return Anonymous
}

// Token returns the persisted token, which is what the API client sends.
func (s *Store) Token() string {
	token, err := s.storage.Get(storage.KeyToken)
	if err != nil {
		return ""
	}
	return token
}

// RequireAuthenticated returns the identity or ErrNotAuthenticated.
func (s *Store) RequireAuthenticated() (Identity, error) {
	identity, ok := s.Current()
	if !ok {
		return Identity{}, internal.ErrNotAuthenticated
	}
	return identity, nil
}

// persist writes token before user so a crash in between never leaves a user
// without a token.
func (s *Store) persist(identity Identity, token string) error {
	rawUser, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	if err := s.storage.Set(storage.KeyToken, token); err != nil {
		return err
	}
	return s.storage.Set(storage.KeyUser, string(rawUser))
}
