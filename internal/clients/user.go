package clients

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/techblueera/be-health-service-sub001/internal/models"
	"github.com/techblueera/be-health-service-sub001/internal/remote"
)

type sessionValidateRequest struct {
	Token string `json:"token"`
}

// UserClient resolves users and validates sessions against the user
// directory service.
type UserClient struct {
	byID     *remote.Operation[string, *models.User]
	validate *remote.Operation[string, *models.Session]
	cache    *SessionCache
}

// NewUserClient builds the facade over the given transport. Session
// validation results are served from a read-through TTL cache; only
// positive results are cached.
func NewUserClient(caller remote.Caller, cfg remote.BreakerConfig, cacheTTL time.Duration) *UserClient {
	return &UserClient{
		byID: remote.NewOperation("user.getUserById", cfg,
			func(ctx context.Context, id string) (*models.User, error) {
				var user models.User
				if err := caller.DoJSON(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &user); err != nil {
					return nil, err
				}
				return &user, nil
			}),
		validate: remote.NewOperation("user.validateSession", cfg,
			func(ctx context.Context, token string) (*models.Session, error) {
				var session models.Session
				req := sessionValidateRequest{Token: token}
				if err := caller.DoJSON(ctx, http.MethodPost, "/sessions/validate", req, &session); err != nil {
					return nil, err
				}
				return &session, nil
			}),
		cache: NewSessionCache(cacheTTL),
	}
}

// GetUserByID looks a user up by id.
func (c *UserClient) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return c.byID.Invoke(ctx, userID)
}

// ValidateSession checks a session token. A cache hit within the TTL
// skips the remote call entirely; misses call through the breaker and
// populate the cache only on a successful, valid result.
func (c *UserClient) ValidateSession(ctx context.Context, token string) (*models.Session, error) {
	if session, ok := c.cache.Get(token); ok {
		return session, nil
	}

	session, err := c.validate.Invoke(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.Valid {
		c.cache.Set(token, session)
	} else {
		log.Debug().Msg("Session validation negative, not caching")
	}
	return session, nil
}

// ClearSessionCache drops every cached validation result.
func (c *UserClient) ClearSessionCache() {
	c.cache.Clear()
}
