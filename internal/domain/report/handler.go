package report

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medsta/portal/internal/platform/authx"
	"github.com/medsta/portal/internal/platform/filestore"
	"github.com/medsta/portal/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/reports", h.List)
	api.GET("/reports/:id/download", h.Download)
}

// List handles GET /reports?limit=&cursor=
func (h *Handler) List(c echo.Context) error {
	user := authx.UserFromContext(c.Request().Context())
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	params := pagination.FromContext(c)
	reports, next, hasMore, err := h.svc.List(c.Request().Context(), user.UID, params.Cursor, params.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list reports")
	}
	if reports == nil {
		reports = []Report{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(reports, next, hasMore))
}

// Download handles GET /reports/:id/download and returns a short-lived
// URL rather than streaming the file through the API.
func (h *Handler) Download(c echo.Context) error {
	user := authx.UserFromContext(c.Request().Context())
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	url, err := h.svc.DownloadURL(c.Request().Context(), user.UID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, filestore.ErrFileNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "report not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve download")
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
