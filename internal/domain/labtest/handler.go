package labtest

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medsta/portal/internal/platform/authx"
	"github.com/medsta/portal/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/lab-tests/upcoming", h.ListUpcoming)
}

// ListUpcoming handles GET /lab-tests/upcoming?limit=&cursor=
func (h *Handler) ListUpcoming(c echo.Context) error {
	user := authx.UserFromContext(c.Request().Context())
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	params := pagination.FromContext(c)
	tests, next, hasMore, err := h.svc.Upcoming(c.Request().Context(), user.UID, params.Cursor, params.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list lab tests")
	}
	if tests == nil {
		tests = []LabTest{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(tests, next, hasMore))
}
