package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/techblueera/be-health-service-sub001/internal/interfaces"
	"github.com/techblueera/be-health-service-sub001/internal/models"
)

// OrderHandler handles HTTP requests for orders and alternatives
type OrderHandler struct {
	orderService interfaces.OrderService
	alternatives interfaces.AlternativesService
}

// NewOrderHandler creates a new order API handler
func NewOrderHandler(orderService interfaces.OrderService, alternatives interfaces.AlternativesService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		alternatives: alternatives,
	}
}

// RegisterRoutes attaches the order routes to an authenticated group
func (h *OrderHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/orders", h.createOrder)
	group.GET("/orders", h.listOrders)
	group.GET("/orders/ongoing", h.getOngoingOrder)
	group.PATCH("/orders/:id", h.updateOrder)
	group.GET("/orders/:id/alternatives", h.findAlternatives)
}

// createOrder handles order placement
func (h *OrderHandler) createOrder(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		c.AbortWithStatusJSON(401, models.NewProblemDetails(401, "Unauthorized", "Missing session"))
		return
	}

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug().Err(err).Msg("Failed to bind create order request")
		respondError(c, bindError(err))
		return
	}

	response, err := h.orderService.CreateOrder(c.Request.Context(), session.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(201, response)
}

// updateOrder handles status transitions and rider assignment
func (h *OrderHandler) updateOrder(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		c.AbortWithStatusJSON(401, models.NewProblemDetails(401, "Unauthorized", "Missing session"))
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, models.NewValidationError("id", "invalid order id", c.Param("id")))
		return
	}

	var req models.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), orderID, session, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(200, order)
}

// getOngoingOrder returns the buyer's open order, if any
func (h *OrderHandler) getOngoingOrder(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		c.AbortWithStatusJSON(401, models.NewProblemDetails(401, "Unauthorized", "Missing session"))
		return
	}

	response, err := h.orderService.GetOngoingOrder(c.Request.Context(), session.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(200, response)
}

// listOrders returns the buyer's order history, paginated
func (h *OrderHandler) listOrders(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		c.AbortWithStatusJSON(401, models.NewProblemDetails(401, "Unauthorized", "Missing session"))
		return
	}

	query, err := parseListQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	response, err := h.orderService.ListOrders(c.Request.Context(), session.UserID, query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(200, response)
}

// findAlternatives returns ranked alternative sellers for an order
func (h *OrderHandler) findAlternatives(c *gin.Context) {
	query, err := parseAlternativesQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	results, err := h.alternatives.FindAlternativeSellers(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(200, gin.H{"alternatives": results})
}

// Query parsing helpers

func parseListQuery(c *gin.Context) (*models.ListOrdersQuery, error) {
	query := &models.ListOrdersQuery{Page: 1, Limit: 20, SortDesc: true}

	if raw := c.Query("status"); raw != "" {
		status := models.OrderStatus(raw)
		if !models.IsValidOrderStatus(status) {
			return nil, models.NewValidationError("status", "unknown order status", raw)
		}
		query.Status = &status
	}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return nil, models.NewValidationError("page", "page must be a positive integer", raw)
		}
		query.Page = page
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return nil, models.NewValidationError("limit", "limit must be a positive integer", raw)
		}
		query.Limit = limit
	}

	return query, nil
}

func parseAlternativesQuery(c *gin.Context) (*models.AlternativesQuery, error) {
	query := &models.AlternativesQuery{
		Filter: models.RankingFilter(c.DefaultQuery("filter", string(models.RankingSuggested))),
	}

	if raw := c.Query("latitude"); raw != "" {
		lat, err := strconv.ParseFloat(raw, 64)
		if err != nil || lat < -90 || lat > 90 {
			return nil, models.NewValidationError("latitude", "latitude must be between -90 and 90", raw)
		}
		query.Latitude = &lat
	}
	if raw := c.Query("longitude"); raw != "" {
		lon, err := strconv.ParseFloat(raw, 64)
		if err != nil || lon < -180 || lon > 180 {
			return nil, models.NewValidationError("longitude", "longitude must be between -180 and 180", raw)
		}
		query.Longitude = &lon
	}
	if (query.Latitude == nil) != (query.Longitude == nil) {
		return nil, models.NewValidationError("latitude", "latitude and longitude must be provided together", nil)
	}

	return query, nil
}
