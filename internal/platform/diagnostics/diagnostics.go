// Package diagnostics implements a connectivity self-check: it verifies
// the current identity, writes a ping marker to the user's profile row,
// and reads it back. The probe never fails; every problem lands in the
// result so support staff can read the whole picture at once.
package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medsta/portal/internal/domain/profile"
	"github.com/medsta/portal/internal/platform/authx"
)

const (
	StepOK       = "ok"
	StepFail     = "fail"
	StepNotFound = "not-found"
)

// Result records the outcome of each probe step. A step left empty was
// never attempted.
type Result struct {
	AuthUser     string   `json:"auth_user,omitempty"`
	WriteUserRow string   `json:"write_user_row,omitempty"`
	ReadUserRow  string   `json:"read_user_row,omitempty"`
	Errors       []string `json:"errors"`
}

// Healthy reports whether every attempted step succeeded.
func (r *Result) Healthy() bool {
	return len(r.Errors) == 0
}

type Probe struct {
	profiles profile.Repository
	log      zerolog.Logger
}

func NewProbe(profiles profile.Repository, log zerolog.Logger) *Probe {
	return &Probe{profiles: profiles, log: log}
}

// Run executes the probe for the given identity. A nil user means no one
// is signed in; the storage steps are skipped and the result says so.
func (p *Probe) Run(ctx context.Context, user *authx.User) *Result {
	res := &Result{Errors: []string{}}

	if user == nil {
		res.Errors = append(res.Errors, "no signed-in user")
		return res
	}
	res.AuthUser = StepOK

	var email *string
	if user.Email != "" {
		e := user.Email
		email = &e
	}
	now := time.Now().UTC()

	if err := p.profiles.MergePing(ctx, user.UID, email, now); err != nil {
		res.WriteUserRow = StepFail
		res.Errors = append(res.Errors, fmt.Sprintf("write user row: %v", err))
		p.log.Warn().Err(err).Str("uid", user.UID).Msg("diagnostics write failed")
	} else {
		res.WriteUserRow = StepOK
	}

	prof, err := p.profiles.GetByUID(ctx, user.UID)
	switch {
	case errors.Is(err, profile.ErrNotFound):
		res.ReadUserRow = StepNotFound
		res.Errors = append(res.Errors, "read user row: row absent after write")
	case err != nil:
		res.ReadUserRow = StepFail
		res.Errors = append(res.Errors, fmt.Sprintf("read user row: %v", err))
		p.log.Warn().Err(err).Str("uid", user.UID).Msg("diagnostics read failed")
	default:
		res.ReadUserRow = StepOK
		if prof.DiagPingAt == nil {
			res.Errors = append(res.Errors, "read user row: ping marker missing")
		}
	}

	return res
}

type Handler struct {
	probe *Probe
}

func NewHandler(probe *Probe) *Handler {
	return &Handler{probe: probe}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/diagnostics", h.Run)
}

// Run handles GET /diagnostics. It always answers 200; the body carries
// the per-step outcomes.
func (h *Handler) Run(c echo.Context) error {
	user := authx.UserFromContext(c.Request().Context())
	res := h.probe.Run(c.Request().Context(), user)
	return c.JSON(http.StatusOK, res)
}
