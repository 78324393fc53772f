package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"zerobin/client/internal/api"
	"zerobin/client/internal/models"
	"zerobin/client/internal/notify"
)

type State string

const (
	StateUninitialized State = "uninitialized"
	StateHydrating     State = "hydrating"
	StateAuthenticated State = "authenticated"
	StateAnonymous     State = "anonymous"
)

// Navigation targets the auth verbs hand back to the caller.
const (
	RouteHome          = "/"
	RouteLogin         = "/login"
	RouteLocationSetup = "/collector/location-setup"
)

// Manager owns the {user, token} pair. It is the only writer: everything
// else reads a snapshot and re-renders when it changes.
type Manager struct {
	client *api.Client
	store  Store
	toasts *notify.Center
	log    zerolog.Logger

	mu      sync.RWMutex
	state   State
	user    *models.User
	token   string
	lastErr string
}

func NewManager(client *api.Client, store Store, toasts *notify.Center, logger zerolog.Logger) *Manager {
	return &Manager{
		client: client,
		store:  store,
		toasts: toasts,
		log:    logger,
		state:  StateUninitialized,
	}
}

// Snapshot is a point-in-time read of the session for gates and handlers.
type Snapshot struct {
	State State
	User  *models.User
	Token string
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var user *models.User
	if m.user != nil {
		u := *m.user
		user = &u
	}
	return Snapshot{State: m.state, User: user, Token: m.token}
}

// Token returns the current bearer token, empty when anonymous.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// LastError exposes the shared error slot the auth verbs write into.
func (m *Manager) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Hydrate restores a persisted session. It runs exactly once, at startup:
// one read, then the manager settles into authenticated or anonymous and
// stays there until a verb is invoked.
func (m *Manager) Hydrate(ctx context.Context) {
	m.mu.Lock()
	m.state = StateHydrating
	m.mu.Unlock()

	rec, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("session load failed")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if rec == nil || rec.Token == "" || rec.User.ID == "" || tokenExpired(rec.Token) {
		m.state = StateAnonymous
		return
	}

	user := rec.User
	m.user = &user
	m.token = rec.Token
	m.state = StateAuthenticated
	m.log.Info().Str("user_id", user.ID).Msg("session restored")
}

// tokenExpired peeks at the backend token's exp claim without verifying the
// signature; verification is the backend's job. Opaque tokens pass.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// Login authenticates against the backend. On success it persists the pair
// atomically and returns the post-login navigation target: collectors who
// have not set a location go to location setup, everyone else goes home.
// On failure the session is left exactly as it was.
func (m *Manager) Login(ctx context.Context, email, password string) (string, bool) {
	resp, err := api.Do[models.LoginResponse](ctx, m.client, "/auth/login", api.Options{
		Method: http.MethodPost,
		Body:   map[string]string{"email": email, "password": password},
	})
	if err != nil {
		m.fail(err)
		return "", false
	}

	user := resp.User

	m.mu.Lock()
	m.user = &user
	m.token = resp.AccessToken
	m.state = StateAuthenticated
	m.lastErr = ""
	m.mu.Unlock()

	if err := m.store.Save(ctx, Record{Token: resp.AccessToken, User: user}); err != nil {
		m.log.Error().Err(err).Msg("session persist failed")
	}

	m.toasts.Success("Welcome back, " + user.FullName)

	if user.UserType == models.UserTypeCollector && user.Location == nil {
		return RouteLocationSetup, true
	}
	return RouteHome, true
}

// Register creates an account but never authenticates: on success the user
// is told to log in. Asymmetric with Login on purpose.
func (m *Manager) Register(ctx context.Context, input models.RegisterInput) bool {
	_, err := api.Do[models.User](ctx, m.client, "/auth/register", api.Options{
		Method: http.MethodPost,
		Body:   input,
	})
	if err != nil {
		m.fail(err)
		return false
	}

	m.toasts.Success("Registration successful. Please log in.")
	return true
}

// Logout clears the session no matter what. The backend call is best
// effort: its failure is swallowed without even a toast, because local
// clearing must never be blocked by the network.
func (m *Manager) Logout(ctx context.Context) string {
	token := m.Token()
	if token != "" {
		if err := m.client.Discard(ctx, "/auth/logout", api.Options{
			Method: http.MethodPost,
			Auth:   true,
			Token:  token,
		}); err != nil {
			m.log.Debug().Err(err).Msg("backend logout failed, clearing anyway")
		}
	}

	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.state = StateAnonymous
	m.lastErr = ""
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn().Err(err).Msg("session clear failed")
	}

	m.toasts.Info("You have been logged out.")
	return RouteLogin
}

// RefreshUser re-reads /auth/me and updates the cached user copy. Used by
// the background profile-refresh job; a failure keeps the cached copy.
func (m *Manager) RefreshUser(ctx context.Context) {
	token := m.Token()
	if token == "" {
		return
	}

	user, err := api.Do[models.User](ctx, m.client, "/auth/me", api.Options{
		Auth:  true,
		Token: token,
	})
	if err != nil {
		m.log.Debug().Err(err).Msg("profile refresh failed")
		return
	}
	if user.ID == "" {
		return
	}

	m.mu.Lock()
	if m.state != StateAuthenticated || m.token != token {
		// Session changed under us; drop the stale read.
		m.mu.Unlock()
		return
	}
	m.user = &user
	m.mu.Unlock()

	if err := m.store.Save(ctx, Record{Token: token, User: user}); err != nil {
		m.log.Debug().Err(err).Msg("profile persist failed")
	}
}

func (m *Manager) fail(err error) {
	message := err.Error()
	if apiErr, ok := err.(*api.Error); ok {
		message = apiErr.Message
	}

	m.mu.Lock()
	m.lastErr = message
	m.mu.Unlock()

	m.toasts.Error(message)
}
