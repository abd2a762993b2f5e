package donor

import (
	"errors"
	"net/http"
	"strconv"

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
	readGroup := api.Group("", auth.RequireRole("admin", "doctor", "coordinator"))
	readGroup.GET("/donors", h.Search)
	readGroup.GET("/donors/stats", h.Statistics)
	readGroup.GET("/donors/top", h.TopDonors)
	readGroup.GET("/donors/followup", h.NeedingFollowup)
	readGroup.GET("/donors/:id", h.Get)
	readGroup.GET("/donors/:id/donations", h.Donations)
	readGroup.GET("/donors/:id/prediction", h.Prediction)

	writeGroup := api.Group("", auth.RequireRole("admin", "coordinator"))
	writeGroup.POST("/donors", h.Register)
	writeGroup.PUT("/donors/:id/availability", h.SetAvailability)
	writeGroup.POST("/donors/:id/donations", h.RecordDonation)
}

func (h *Handler) Register(c echo.Context) error {
	var d Donor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.Register(c.Request().Context(), &d)
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

func (h *Handler) Search(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := SearchFilter{
		BloodType:    c.QueryParam("blood_type"),
		Region:       c.QueryParam("region"),
		Tier:         Tier(c.QueryParam("tier")),
		Availability: Availability(c.QueryParam("availability")),
		VerifiedOnly: c.QueryParam("verified") == "true",
		Limit:        pg.Limit,
		Offset:       pg.Offset,
	}
	items, total, err := h.svc.Search(c.Request().Context(), f)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type availabilityBody struct {
	Availability Availability `json:"availability"`
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
	if err := h.svc.SetAvailability(c.Request().Context(), id, body.Availability); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RecordDonation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var rec DonationRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec.DonorID = id
	created, err := h.svc.RecordDonation(c.Request().Context(), &rec)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Donations(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.Donations(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Statistics(c echo.Context) error {
	stats, err := h.svc.Statistics(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) TopDonors(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	items, err := h.svc.TopDonors(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) NeedingFollowup(c echo.Context) error {
	items, err := h.svc.NeedingFollowup(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Prediction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pred, err := h.svc.PredictAvailability(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pred)
}

func mapError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrInvalidDonor):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotEligible):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
