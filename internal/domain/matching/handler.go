package matching

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/helplink/helplink/internal/domain/request"
	"github.com/helplink/helplink/internal/platform/auth"
)

type Handler struct {
	assigner *Assigner
	matcher  *Matcher
}

func NewHandler(assigner *Assigner, matcher *Matcher) *Handler {
	return &Handler{assigner: assigner, matcher: matcher}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "doctor", "coordinator"))
	g.POST("/requests/:id/assign", h.Assign)
	g.GET("/matches/donors", h.FindDonors)
}

func (h *Handler) Assign(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	assignment, err := h.assigner.Assign(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	if assignment == nil {
		// No doctor reachable: the request stays pending and someone has to
		// escalate by hand.
		return c.JSON(http.StatusOK, map[string]interface{}{
			"assigned": false,
			"message":  "no doctor available, request remains pending",
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"assigned":   true,
		"assignment": assignment,
	})
}

func (h *Handler) FindDonors(c echo.Context) error {
	units := 1
	if raw := c.QueryParam("units"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid units")
		}
		units = n
	}
	matches, err := h.matcher.FindMatches(
		c.Request().Context(),
		c.QueryParam("blood_type"),
		c.QueryParam("region"),
		request.Priority(c.QueryParam("urgency")),
		units,
	)
	if err != nil {
		return mapError(err)
	}
	if matches == nil {
		matches = []*DonorMatch{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":   len(matches),
		"matches": matches,
	})
}

func mapError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrInvalidQuery):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, request.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrStaleCandidate):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
