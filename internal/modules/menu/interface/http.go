package transport

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"mesaOps/internal/modules/menu/application/usecase"
	"mesaOps/internal/modules/menu/domain"
	"mesaOps/internal/shared/apperr"
	"mesaOps/internal/shared/httputil"
)

type Handler struct {
	catalog *usecase.Catalog
	errors  *httputil.ErrorMapper
}

func NewHandler(catalog *usecase.Catalog) *Handler {
	return &Handler{catalog: catalog, errors: httputil.DomainErrors()}
}

// Register mounts the routes on a group already scoped to /restaurants/:restaurant.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/menu", h.addItem)
	g.GET("/menu", h.list)
	g.PUT("/menu/availability", h.setAvailability)
	g.PUT("/menu/:id/availability", h.toggle)
	g.POST("/menu/categories", h.addCategory)
	g.GET("/menu/categories", h.categories)
}

func (h *Handler) addItem(c echo.Context) error {
	var item domain.Item
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	item.RestaurantID = c.Param("restaurant")
	id, err := h.catalog.AddItem(c.Request().Context(), item)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

// list returns the available menu, narrowed by ?category or ?q.
func (h *Handler) list(c echo.Context) error {
	ctx := c.Request().Context()
	restaurantID := c.Param("restaurant")
	var (
		items []domain.Item
		err   error
	)
	switch {
	case strings.TrimSpace(c.QueryParam("q")) != "":
		items, err = h.catalog.Search(ctx, restaurantID, c.QueryParam("q"))
	case strings.TrimSpace(c.QueryParam("category")) != "":
		items, err = h.catalog.GetByCategory(ctx, restaurantID, strings.TrimSpace(c.QueryParam("category")))
	default:
		items, err = h.catalog.GetByRestaurant(ctx, restaurantID)
	}
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) toggle(c echo.Context) error {
	var req struct {
		Available *bool `json:"available"`
	}
	if err := c.Bind(&req); err != nil || req.Available == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "available is required")
	}
	id := c.Param("id")
	item, err := h.catalog.Items().GetByID(c.Request().Context(), id)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	if item == nil || item.RestaurantID != c.Param("restaurant") {
		return h.errors.Respond(c, apperr.NotFound("menu item", id))
	}
	if err := h.catalog.ToggleAvailability(c.Request().Context(), id, *req.Available); err != nil {
		return h.errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) setAvailability(c echo.Context) error {
	var req struct {
		IDs       []string `json:"ids"`
		Available *bool    `json:"available"`
	}
	if err := c.Bind(&req); err != nil || req.Available == nil || len(req.IDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "ids and available are required")
	}
	if err := h.catalog.SetAvailability(c.Request().Context(), c.Param("restaurant"), req.IDs, *req.Available); err != nil {
		return h.errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) addCategory(c echo.Context) error {
	var category domain.Category
	if err := c.Bind(&category); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	category.RestaurantID = c.Param("restaurant")
	id, err := h.catalog.AddCategory(c.Request().Context(), category)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) categories(c echo.Context) error {
	categories, err := h.catalog.Categories(c.Request().Context(), c.Param("restaurant"))
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}
