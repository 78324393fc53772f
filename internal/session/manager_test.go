package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"zerobin/client/internal/api"
	"zerobin/client/internal/config"
	"zerobin/client/internal/models"
	"zerobin/client/internal/notify"
)

func userJSON(id, userType, location string) string {
	loc := "null"
	if location != "" {
		loc = location
	}
	return fmt.Sprintf(`{
		"id": %q,
		"email": "u@example.com",
		"full_name": "Test User",
		"phone_number": "+8801700000000",
		"user_type": %q,
		"is_active": true,
		"is_verified": true,
		"location": %s
	}`, id, userType, loc)
}

func loginOK(id, userType, location string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%s","token_type":"bearer","user":%s}`, id, userJSON(id, userType, location))
	}
}

func newTestManager(t *testing.T, handler http.Handler) (*Manager, *FileStore, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := api.NewClient(config.BackendConfig{BaseURL: srv.URL}, zerolog.Nop())
	store := NewFileStore(t.TempDir())
	m := NewManager(client, store, notify.NewCenter(), zerolog.Nop())
	return m, store, srv
}

func TestLoginRedirectPolicy(t *testing.T) {
	cases := []struct {
		name     string
		userType string
		location string
		want     string
	}{
		{"collector without location goes to location setup", "collector", "", RouteLocationSetup},
		{"collector with location goes home", "collector", `{"type":"Point","coordinates":[90.41,23.81]}`, RouteHome},
		{"citizen goes home regardless of location", "citizen", "", RouteHome},
		{"kabadiwala goes home regardless of location", "kabadiwala", "", RouteHome},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/auth/login", loginOK("u1", tc.userType, tc.location))
			m, _, _ := newTestManager(t, mux)

			redirect, ok := m.Login(context.Background(), "u@example.com", "pw")
			if !ok {
				t.Fatal("login should succeed")
			}
			if redirect != tc.want {
				t.Errorf("redirect = %q, want %q", redirect, tc.want)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	t.Run("success persists token and user atomically", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/auth/login", loginOK("u7", "citizen", ""))
		m, store, _ := newTestManager(t, mux)

		if _, ok := m.Login(context.Background(), "u@example.com", "pw"); !ok {
			t.Fatal("login should succeed")
		}

		snap := m.Snapshot()
		if snap.State != StateAuthenticated {
			t.Errorf("state = %s, want authenticated", snap.State)
		}
		if snap.User == nil || snap.User.ID != "u7" {
			t.Errorf("user = %+v, want id u7", snap.User)
		}
		if snap.Token != "tok-u7" {
			t.Errorf("token = %q, want tok-u7", snap.Token)
		}

		rec, err := store.Load(context.Background())
		if err != nil || rec == nil {
			t.Fatalf("persisted slot missing: rec=%v err=%v", rec, err)
		}
		if rec.Token != "tok-u7" || rec.User.ID != "u7" {
			t.Errorf("persisted pair = {%q, %q}", rec.Token, rec.User.ID)
		}
	})

	t.Run("failure keeps an anonymous session anonymous", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Invalid credentials"}`))
		})
		m, _, _ := newTestManager(t, mux)
		m.Hydrate(context.Background())

		if _, ok := m.Login(context.Background(), "u@example.com", "bad"); ok {
			t.Fatal("login should fail")
		}
		if snap := m.Snapshot(); snap.State != StateAnonymous || snap.User != nil || snap.Token != "" {
			t.Errorf("session changed on failed login: %+v", snap)
		}
		if m.LastError() != "Invalid credentials" {
			t.Errorf("error slot = %q, want backend message", m.LastError())
		}
	})

	t.Run("failure does not clear an existing session", func(t *testing.T) {
		var fail bool
		mux := http.NewServeMux()
		mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			if fail {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail":"Invalid credentials"}`))
				return
			}
			loginOK("u1", "citizen", "")(w, r)
		})
		m, _, _ := newTestManager(t, mux)

		if _, ok := m.Login(context.Background(), "u@example.com", "pw"); !ok {
			t.Fatal("first login should succeed")
		}

		fail = true
		if _, ok := m.Login(context.Background(), "u@example.com", "typo"); ok {
			t.Fatal("second login should fail")
		}

		snap := m.Snapshot()
		if snap.State != StateAuthenticated || snap.User == nil || snap.User.ID != "u1" {
			t.Errorf("existing session was disturbed: %+v", snap)
		}
	})
}

func TestRegister(t *testing.T) {
	input := models.RegisterInput{
		Email:       "new@example.com",
		FullName:    "New User",
		Password:    "password123",
		PhoneNumber: "+8801700000001",
		UserType:    models.UserTypeCitizen,
	}

	t.Run("success never authenticates", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(userJSON("u9", "citizen", "")))
		})
		m, store, _ := newTestManager(t, mux)
		m.Hydrate(context.Background())

		if !m.Register(context.Background(), input) {
			t.Fatal("register should succeed")
		}

		if snap := m.Snapshot(); snap.State != StateAnonymous || snap.Token != "" {
			t.Errorf("register must not authenticate, got %+v", snap)
		}
		if rec, _ := store.Load(context.Background()); rec != nil {
			t.Error("register must not persist a session")
		}
	})

	t.Run("failure reports and never authenticates", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"email already registered"}`))
		})
		m, _, _ := newTestManager(t, mux)
		m.Hydrate(context.Background())

		if m.Register(context.Background(), input) {
			t.Fatal("register should fail")
		}
		if snap := m.Snapshot(); snap.State != StateAnonymous {
			t.Errorf("state = %s, want anonymous", snap.State)
		}
		if m.LastError() != "email already registered" {
			t.Errorf("error slot = %q", m.LastError())
		}
	})
}

func TestLogout(t *testing.T) {
	t.Run("clears session even when the backend call fails", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/auth/login", loginOK("u1", "citizen", ""))
		mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		m, store, _ := newTestManager(t, mux)

		if _, ok := m.Login(context.Background(), "u@example.com", "pw"); !ok {
			t.Fatal("login should succeed")
		}

		redirect := m.Logout(context.Background())
		if redirect != RouteLogin {
			t.Errorf("redirect = %q, want %q", redirect, RouteLogin)
		}

		snap := m.Snapshot()
		if snap.State != StateAnonymous || snap.User != nil || snap.Token != "" {
			t.Errorf("logout left session populated: %+v", snap)
		}
		if rec, _ := store.Load(context.Background()); rec != nil {
			t.Error("persisted slot should be cleared")
		}
	})
}

func TestHydrate(t *testing.T) {
	t.Run("round trips a session persisted by login", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/auth/login", loginOK("u4", "citizen", ""))
		m, store, srv := newTestManager(t, mux)

		if _, ok := m.Login(context.Background(), "u@example.com", "pw"); !ok {
			t.Fatal("login should succeed")
		}

		client := api.NewClient(config.BackendConfig{BaseURL: srv.URL}, zerolog.Nop())
		fresh := NewManager(client, store, notify.NewCenter(), zerolog.Nop())
		fresh.Hydrate(context.Background())

		snap := fresh.Snapshot()
		if snap.State != StateAuthenticated {
			t.Fatalf("state = %s, want authenticated", snap.State)
		}
		if snap.User.ID != "u4" || snap.Token != "tok-u4" {
			t.Errorf("restored pair = {%q, %q}", snap.User.ID, snap.Token)
		}
	})

	t.Run("empty store hydrates to anonymous", func(t *testing.T) {
		m, _, _ := newTestManager(t, http.NewServeMux())
		m.Hydrate(context.Background())
		if snap := m.Snapshot(); snap.State != StateAnonymous {
			t.Errorf("state = %s, want anonymous", snap.State)
		}
	})

	t.Run("corrupt slot hydrates to anonymous", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "auth.json"), []byte("{broken"), 0o600); err != nil {
			t.Fatal(err)
		}

		client := api.NewClient(config.BackendConfig{BaseURL: "http://127.0.0.1:1"}, zerolog.Nop())
		m := NewManager(client, NewFileStore(dir), notify.NewCenter(), zerolog.Nop())
		m.Hydrate(context.Background())

		if snap := m.Snapshot(); snap.State != StateAnonymous {
			t.Errorf("state = %s, want anonymous", snap.State)
		}
	})

	t.Run("expired JWT is discarded", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "u1",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte("whatever"))
		if err != nil {
			t.Fatal(err)
		}

		store := NewFileStore(t.TempDir())
		if err := store.Save(context.Background(), Record{
			Token: signed,
			User:  models.User{ID: "u1", UserType: models.UserTypeCitizen},
		}); err != nil {
			t.Fatal(err)
		}

		client := api.NewClient(config.BackendConfig{BaseURL: "http://127.0.0.1:1"}, zerolog.Nop())
		m := NewManager(client, store, notify.NewCenter(), zerolog.Nop())
		m.Hydrate(context.Background())

		if snap := m.Snapshot(); snap.State != StateAnonymous {
			t.Errorf("state = %s, want anonymous for an expired token", snap.State)
		}
	})

	t.Run("opaque tokens are accepted as-is", func(t *testing.T) {
		store := NewFileStore(t.TempDir())
		if err := store.Save(context.Background(), Record{
			Token: "opaque-token",
			User:  models.User{ID: "u2", UserType: models.UserTypeCitizen},
		}); err != nil {
			t.Fatal(err)
		}

		client := api.NewClient(config.BackendConfig{BaseURL: "http://127.0.0.1:1"}, zerolog.Nop())
		m := NewManager(client, store, notify.NewCenter(), zerolog.Nop())
		m.Hydrate(context.Background())

		if snap := m.Snapshot(); snap.State != StateAuthenticated {
			t.Errorf("state = %s, want authenticated", snap.State)
		}
	})
}
