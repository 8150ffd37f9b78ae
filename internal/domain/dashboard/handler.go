package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medsta/portal/internal/platform/authx"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/dashboard", h.GetView)
	api.POST("/dashboard/lab-tests/more", h.MoreLabTests)
	api.POST("/dashboard/reports/more", h.MoreReports)
	api.POST("/dashboard/signout", h.SignOut)
}

func (h *Handler) GetView(c echo.Context) error {
	user := authx.UserFromContext(c.Request().Context())
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	view, err := h.svc.View(c.Request().Context(), user.UID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load dashboard")
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) MoreLabTests(c echo.Context) error {
	user := authx.UserFromContext(c.Request().Context())
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	view, err := h.svc.LoadMoreLabTests(c.Request().Context(), user.UID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load dashboard")
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) MoreReports(c echo.Context) error {
	user := authx.UserFromContext(c.Request().Context())
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	view, err := h.svc.LoadMoreReports(c.Request().Context(), user.UID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load dashboard")
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) SignOut(c echo.Context) error {
	user := authx.UserFromContext(c.Request().Context())
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	h.svc.SignOut(user.UID)
	return c.NoContent(http.StatusNoContent)
}
