// Package gate decides whether a protected route may render for the
// current session, without ever flashing protected content.
package gate

import (
	"zerobin/client/internal/models"
	"zerobin/client/internal/session"
)

type Decision string

const (
	// Wait means the session is still hydrating: render nothing, issue no
	// navigation. Deliberately not a spinner.
	Wait          Decision = "wait"
	RedirectLogin Decision = "redirect_login"
	RedirectHome  Decision = "redirect_home"
	Allow         Decision = "allow"
)

// Decide evaluates one gate pass. An empty allowed list means any
// authenticated user passes.
func Decide(snap session.Snapshot, allowed ...models.UserType) Decision {
	switch snap.State {
	case session.StateUninitialized, session.StateHydrating:
		return Wait
	}

	if snap.User == nil {
		return RedirectLogin
	}

	if len(allowed) > 0 {
		for _, role := range allowed {
			if snap.User.UserType == role {
				return Allow
			}
		}
		return RedirectHome
	}

	return Allow
}
