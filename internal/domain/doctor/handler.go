package doctor

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/helplink/helplink/internal/platform/auth"
	"github.com/helplink/helplink/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "doctor", "patient"))
	readGroup.GET("/doctors", h.List)
	readGroup.GET("/doctors/:id", h.Get)
	readGroup.GET("/doctors/available", h.Available)

	adminGroup := api.Group("", auth.RequireRole("admin"))
	adminGroup.POST("/doctors", h.Create)

	doctorGroup := api.Group("", auth.RequireRole("admin", "doctor"))
	doctorGroup.PUT("/doctors/:id/availability", h.SetAvailability)
}

func (h *Handler) Create(c echo.Context) error {
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.Create(c.Request().Context(), &d)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Available(c echo.Context) error {
	region := c.QueryParam("region")
	items, err := h.svc.AvailableInRegion(c.Request().Context(), region)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, items)
}

type availabilityBody struct {
	Available bool `json:"available"`
}

func (h *Handler) SetAvailability(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body availabilityBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SetAvailability(c.Request().Context(), id, body.Available); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func mapError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrInvalidDoctor):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
