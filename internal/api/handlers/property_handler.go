package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inaciosamuel465/estateflow/internal/api/middleware"
	"github.com/inaciosamuel465/estateflow/internal/models"
	"github.com/inaciosamuel465/estateflow/internal/services"
	"github.com/inaciosamuel465/estateflow/internal/state"
)

// PropertyHandler handles the property catalogue: public browsing, favorite
// toggling, and the admin mutation surface.
type PropertyHandler struct {
	controller *state.Controller
}

func NewPropertyHandler(controller *state.Controller) *PropertyHandler {
	return &PropertyHandler{controller: controller}
}

// ListProperties handles GET /v1/properties. Reads come from the in-memory
// store, which the subscription bridge keeps fresh.
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	var filter models.PropertyFilter
	if raw := c.Query("status"); raw != "" {
		status := models.PropertyStatus(raw)
		switch status {
		case models.PropertyAvailable, models.PropertyRented, models.PropertySold:
			filter.Status = &status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
	}
	filter.Location = c.Query("location")
	if raw := c.Query("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_price"})
			return
		}
		filter.MinPrice = &v
	}
	if raw := c.Query("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_price"})
			return
		}
		filter.MaxPrice = &v
	}

	c.JSON(http.StatusOK, gin.H{"properties": h.controller.Store().FilterProperties(filter)})
}

// GetPropertyByID handles GET /v1/properties/:id.
func (h *PropertyHandler) GetPropertyByID(c *gin.Context) {
	p, ok := h.controller.Store().PropertyByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

type createPropertyRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Location    string  `json:"location" binding:"required"`
	OwnerID     string  `json:"owner_id"`
	Image       string  `json:"image"`
	Bedrooms    int     `json:"bedrooms"`
	Bathrooms   int     `json:"bathrooms"`
	AreaSqM     float64 `json:"area_sqm"`
}

// CreateProperty handles POST /v1/admin/properties.
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.controller.AddProperty(c.Request.Context(), models.Property{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Location:    req.Location,
		OwnerID:     req.OwnerID,
		Image:       req.Image,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		AreaSqM:     req.AreaSqM,
	})
	if err != nil {
		// The local copy is in place; surface the persistence failure anyway.
		c.JSON(http.StatusBadGateway, gin.H{"error": "property accepted locally, persistence failed", "property": p})
		return
	}
	c.JSON(http.StatusCreated, p)
}

type updatePropertyRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	Price       *float64 `json:"price"`
	Location    *string  `json:"location"`
	Image       *string  `json:"image"`
	Bedrooms    *int     `json:"bedrooms"`
	Bathrooms   *int     `json:"bathrooms"`
	AreaSqM     *float64 `json:"area_sqm"`
}

// UpdateProperty handles PATCH /v1/admin/properties/:id.
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	var req updatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := state.PropertyUpdate{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Location:    req.Location,
		Image:       req.Image,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		AreaSqM:     req.AreaSqM,
	}
	if req.Status != nil {
		status := models.PropertyStatus(*req.Status)
		switch status {
		case models.PropertyAvailable, models.PropertyRented, models.PropertySold:
			upd.Status = &status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
	}

	if err := h.controller.UpdateProperty(c.Request.Context(), c.Param("id"), upd); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "update accepted locally, persistence failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DeleteProperty handles DELETE /v1/admin/properties/:id.
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	if err := h.controller.DeleteProperty(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "delete accepted locally, persistence failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ToggleFavorite handles POST /v1/properties/:id/favorite. Requires auth;
// the toggle goes through the controller so the store's user snapshot picks
// up the new set and the change republishes to peer instances.
func (h *PropertyHandler) ToggleFavorite(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	favorites, err := h.controller.ToggleFavorite(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle favorite"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}
