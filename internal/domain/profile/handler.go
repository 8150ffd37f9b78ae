package profile

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
	api.GET("/me", h.GetMe)
}

func (h *Handler) GetMe(c echo.Context) error {
	user := authx.UserFromContext(c.Request().Context())
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	p, err := h.svc.Get(c.Request().Context(), user.UID, user.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}
