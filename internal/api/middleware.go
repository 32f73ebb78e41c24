package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/techblueera/be-health-service-sub001/internal/interfaces"
	"github.com/techblueera/be-health-service-sub001/internal/models"
)

const (
	ctxKeyRequestID   = "request_id"
	ctxKeySession     = "session"
	ctxKeyErrorDetail = "error_detail"
)

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Header("X-Request-ID", requestID)
		c.Set(ctxKeyRequestID, requestID)
		c.Next()
	}
}

// AuthMiddleware validates the bearer token against the users service
// and stores the resulting session in the request context. Validation
// results are cached process-wide by the session validator itself.
func AuthMiddleware(sessions interfaces.SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			problem := models.NewProblemDetails(401, "Unauthorized", "Missing bearer token")
			c.AbortWithStatusJSON(401, problem)
			return
		}

		session, err := sessions.ValidateSession(c.Request.Context(), token)
		if err != nil {
			log.Warn().Err(err).
				Str("request_id", getRequestID(c)).
				Msg("Session validation failed")
			respondError(c, err)
			c.Abort()
			return
		}
		if session == nil || !session.Valid {
			problem := models.NewProblemDetails(401, "Unauthorized", "Invalid or expired session")
			c.AbortWithStatusJSON(401, problem)
			return
		}

		c.Set(ctxKeySession, session)
		c.Next()
	}
}

// ErrorDetailMiddleware records whether error responses may carry
// internal detail. Production deployments pass false so internals are
// never exposed to clients.
func ErrorDetailMiddleware(include bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxKeyErrorDetail, include)
		c.Next()
	}
}

// CORSMiddleware sets permissive CORS headers
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// Helper functions

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(ctxKeyRequestID); exists {
		return requestID.(string)
	}
	return ""
}

func sessionFromContext(c *gin.Context) *models.Session {
	if value, exists := c.Get(ctxKeySession); exists {
		if session, ok := value.(*models.Session); ok {
			return session
		}
	}
	return nil
}

// bindError converts a gin binding failure into a typed validation
// error, surfacing the first violated field when the binding library
// reports one.
func bindError(err error) error {
	var violations validator.ValidationErrors
	if errors.As(err, &violations) && len(violations) > 0 {
		first := violations[0]
		return models.NewValidationError(strings.ToLower(first.Field()),
			"failed on '"+first.Tag()+"' validation", nil)
	}
	return models.NewValidationError("request", "invalid request body", nil)
}

// respondError maps a typed service error to its problem response.
// Internal error details are always logged; they appear in the
// response only when the deployment opted in via
// ErrorDetailMiddleware.
func respondError(c *gin.Context, err error) {
	problem := models.ProblemFromError(err, c.GetBool(ctxKeyErrorDetail))
	if problem.Status >= 500 {
		log.Error().Err(err).
			Str("request_id", getRequestID(c)).
			Str("path", c.FullPath()).
			Msg("Request failed")
	}
	c.JSON(problem.Status, problem)
}
