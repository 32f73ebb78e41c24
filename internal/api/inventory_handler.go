package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/techblueera/be-health-service-sub001/internal/interfaces"
	"github.com/techblueera/be-health-service-sub001/internal/models"
)

// InventoryHandler handles HTTP requests for inventory records
type InventoryHandler struct {
	inventoryService interfaces.InventoryService
}

// NewInventoryHandler creates a new inventory API handler
func NewInventoryHandler(inventoryService interfaces.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// RegisterRoutes attaches the inventory routes to an authenticated group
func (h *InventoryHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/inventories", h.createInventory)
	group.GET("/inventories/:id/availability", h.getAvailability)
}

// createInventory registers stock for a seller, variant and location
func (h *InventoryHandler) createInventory(c *gin.Context) {
	var req models.CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug().Err(err).Msg("Failed to bind create inventory request")
		respondError(c, bindError(err))
		return
	}

	inventory, err := h.inventoryService.CreateInventory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(201, inventory)
}

// getAvailability returns the (possibly cached) stock level
func (h *InventoryHandler) getAvailability(c *gin.Context) {
	inventoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, models.NewValidationError("id", "invalid inventory id", c.Param("id")))
		return
	}

	availability, err := h.inventoryService.GetAvailability(c.Request.Context(), inventoryID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(200, availability)
}
