package gate

import (
	"testing"

	"zerobin/client/internal/models"
	"zerobin/client/internal/session"
)

func snap(state session.State, user *models.User) session.Snapshot {
	return session.Snapshot{State: state, User: user}
}

func TestDecide(t *testing.T) {
	citizen := &models.User{ID: "u1", UserType: models.UserTypeCitizen}
	collector := &models.User{ID: "u2", UserType: models.UserTypeCollector}

	t.Run("hydrating waits, no navigation", func(t *testing.T) {
		if got := Decide(snap(session.StateHydrating, nil)); got != Wait {
			t.Errorf("got %s, want wait", got)
		}
		if got := Decide(snap(session.StateUninitialized, nil)); got != Wait {
			t.Errorf("got %s, want wait for uninitialized", got)
		}
	})

	t.Run("anonymous redirects to login", func(t *testing.T) {
		if got := Decide(snap(session.StateAnonymous, nil)); got != RedirectLogin {
			t.Errorf("got %s, want redirect_login", got)
		}
	})

	t.Run("authenticated with no restriction is allowed", func(t *testing.T) {
		if got := Decide(snap(session.StateAuthenticated, citizen)); got != Allow {
			t.Errorf("got %s, want allow", got)
		}
	})

	t.Run("role outside the allow-list redirects home", func(t *testing.T) {
		got := Decide(snap(session.StateAuthenticated, citizen), models.UserTypeCollector, models.UserTypeAdmin)
		if got != RedirectHome {
			t.Errorf("got %s, want redirect_home", got)
		}
	})

	t.Run("role inside the allow-list is allowed", func(t *testing.T) {
		got := Decide(snap(session.StateAuthenticated, collector), models.UserTypeCollector)
		if got != Allow {
			t.Errorf("got %s, want allow", got)
		}
	})
}
