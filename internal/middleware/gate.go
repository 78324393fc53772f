package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zerobin/client/internal/gate"
	"zerobin/client/internal/models"
	"zerobin/client/internal/session"
)

// Gate guards a protected route against the current session. While the
// session is still hydrating it answers an empty 204 with no navigation;
// once settled it redirects anonymous visitors to login and role-mismatched
// users home. Content is never flashed before a redirect.
func Gate(sessions *session.Manager, allowed ...models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch gate.Decide(sessions.Snapshot(), allowed...) {
		case gate.Wait:
			c.AbortWithStatus(http.StatusNoContent)
		case gate.RedirectLogin:
			c.Redirect(http.StatusSeeOther, session.RouteLogin)
			c.Abort()
		case gate.RedirectHome:
			c.Redirect(http.StatusSeeOther, session.RouteHome)
			c.Abort()
		default:
			c.Next()
		}
	}
}
