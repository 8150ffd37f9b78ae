package cart

import (
	"errors"
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
	api.GET("/cart", h.Get)
	api.PUT("/cart", h.Put)
	api.DELETE("/cart", h.Clear)
}

func (h *Handler) Get(c echo.Context) error {
	user := authx.UserFromContext(c.Request().Context())
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	crt, err := h.svc.Get(c.Request().Context(), user.UID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load cart")
	}
	return c.JSON(http.StatusOK, crt)
}

type putCartRequest struct {
	Items []Item `json:"items"`
}

func (h *Handler) Put(c echo.Context) error {
	user := authx.UserFromContext(c.Request().Context())
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req putCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid cart payload")
	}

	crt, err := h.svc.Save(c.Request().Context(), user.UID, req.Items)
	if err != nil {
		if errors.Is(err, ErrTooManyItems) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save cart")
	}
	return c.JSON(http.StatusOK, crt)
}

func (h *Handler) Clear(c echo.Context) error {
	user := authx.UserFromContext(c.Request().Context())
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	if err := h.svc.Clear(c.Request().Context(), user.UID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to clear cart")
	}
	return c.NoContent(http.StatusNoContent)
}
