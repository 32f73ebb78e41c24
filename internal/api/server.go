package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/techblueera/be-health-service-sub001/internal/interfaces"
)

// Server bundles the HTTP handlers and the router
type Server struct {
	orders          *OrderHandler
	inventories     *InventoryHandler
	sessions        interfaces.SessionValidator
	db              *sqlx.DB
	serviceName     string
	exposeErrDetail bool
}

// NewServer creates a new HTTP server wrapper. exposeErrDetail lets
// non-production deployments see internal error messages in problem
// responses.
func NewServer(
	orders *OrderHandler,
	inventories *InventoryHandler,
	sessions interfaces.SessionValidator,
	db *sqlx.DB,
	serviceName string,
	exposeErrDetail bool,
) *Server {
	return &Server{
		orders:          orders,
		inventories:     inventories,
		sessions:        sessions,
		db:              db,
		serviceName:     serviceName,
		exposeErrDetail: exposeErrDetail,
	}
}

// SetupRoutes builds the gin engine with middleware and all routes
func (s *Server) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(ErrorDetailMiddleware(s.exposeErrDetail))
	r.Use(CORSMiddleware())

	r.GET("/health", s.healthCheck)

	api := r.Group("/api/v1")
	api.Use(AuthMiddleware(s.sessions))
	{
		s.orders.RegisterRoutes(api)
		s.inventories.RegisterRoutes(api)
	}

	return r
}

// healthCheck reports service and database health
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		c.JSON(503, gin.H{
			"status":  "unhealthy",
			"service": s.serviceName,
			"error":   "database unreachable",
		})
		return
	}

	c.JSON(200, gin.H{
		"status":  "healthy",
		"service": s.serviceName,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
