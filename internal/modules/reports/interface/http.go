package transport

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"mesaOps/internal/modules/reports/application/usecase"
	"mesaOps/internal/shared/clock"
	"mesaOps/internal/shared/httputil"
)

type Handler struct {
	aggregator *usecase.Aggregator
	location   *time.Location
	errors     *httputil.ErrorMapper
}

func NewHandler(aggregator *usecase.Aggregator, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{aggregator: aggregator, location: loc, errors: httputil.DomainErrors()}
}

// Register mounts the routes on a group already scoped to /restaurants/:restaurant.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/reports/daily", h.generate)
	g.GET("/reports", h.list)
	g.GET("/reports/revenue", h.revenue)
}

func (h *Handler) day(c echo.Context) (time.Time, error) {
	day, err := clock.ParseDay(c.QueryParam("date"), h.location)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	return day, nil
}

func (h *Handler) generate(c echo.Context) error {
	day, err := h.day(c)
	if err != nil {
		return err
	}
	id, err := h.aggregator.GenerateDailyReport(c.Request().Context(), c.Param("restaurant"), day)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) list(c echo.Context) error {
	reports, err := h.aggregator.ListByRestaurant(c.Request().Context(), c.Param("restaurant"))
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, reports)
}

type revenueResponse struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

func (h *Handler) revenue(c echo.Context) error {
	day, err := h.day(c)
	if err != nil {
		return err
	}
	revenue, err := h.aggregator.DailyRevenue(c.Request().Context(), c.Param("restaurant"), day)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, revenueResponse{Date: day.Format(time.DateOnly), Revenue: revenue})
}
