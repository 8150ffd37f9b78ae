package provision

import (
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/medsta/portal/internal/platform/authx"
)

// Middleware provisions starter data the first time an authenticated
// user hits the API. EnsureDefaults is idempotent, but a per-process
// set keeps the marker check off the hot path after the first request.
func (p *Provisioner) Middleware() echo.MiddlewareFunc {
	var seen sync.Map
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := authx.UserFromContext(c.Request().Context())
			if user != nil {
				if _, done := seen.LoadOrStore(user.UID, struct{}{}); !done {
					if _, err := p.EnsureDefaults(c.Request().Context(), user.UID); err != nil {
						p.log.Warn().Err(err).Str("uid", user.UID).Msg("provisioning failed")
						// Retry on the next request from this user.
						seen.Delete(user.UID)
					}
				}
			}
			return next(c)
		}
	}
}
