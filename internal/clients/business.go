// Package clients holds the typed facades over the external
// directory services. Each facade method is backed by one
// breaker-bound remote operation.
package clients

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/techblueera/be-health-service-sub001/internal/models"
	"github.com/techblueera/be-health-service-sub001/internal/remote"
)

// BusinessClient resolves sellers against the business directory.
type BusinessClient struct {
	byID    *remote.Operation[string, *models.Seller]
	byOwner *remote.Operation[string, *models.Seller]
}

// NewBusinessClient builds the facade over the given transport.
func NewBusinessClient(caller remote.Caller, cfg remote.BreakerConfig) *BusinessClient {
	return &BusinessClient{
		byID: remote.NewOperation("business.getSellerById", cfg,
			func(ctx context.Context, id string) (*models.Seller, error) {
				var seller models.Seller
				if err := caller.DoJSON(ctx, http.MethodGet, "/businesses/"+url.PathEscape(id), nil, &seller); err != nil {
					return nil, err
				}
				return &seller, nil
			}),
		byOwner: remote.NewOperation("business.getSellerByOwnerUserId", cfg,
			func(ctx context.Context, userID string) (*models.Seller, error) {
				var seller models.Seller
				if err := caller.DoJSON(ctx, http.MethodGet, "/businesses/by-owner/"+url.PathEscape(userID), nil, &seller); err != nil {
					return nil, err
				}
				return &seller, nil
			}),
	}
}

// GetSellerByID looks a seller up by its business id.
func (c *BusinessClient) GetSellerByID(ctx context.Context, sellerID string) (*models.Seller, error) {
	return c.byID.Invoke(ctx, sellerID)
}

// GetSellerByOwnerUserID looks a seller up by its owning user id.
func (c *BusinessClient) GetSellerByOwnerUserID(ctx context.Context, userID string) (*models.Seller, error) {
	return c.byOwner.Invoke(ctx, userID)
}

// ResolveSeller tries the lookup strategies in fixed priority order:
// by seller id first, then by owning-user id. Only when every strategy
// fails is the last error surfaced.
func (c *BusinessClient) ResolveSeller(ctx context.Context, id string) (*models.Seller, error) {
	seller, err := c.byID.Invoke(ctx, id)
	if err == nil {
		return seller, nil
	}

	log.Debug().
		Err(err).
		Str("seller_id", id).
		Msg("Seller lookup by id failed, falling back to owner lookup")

	seller, err = c.byOwner.Invoke(ctx, id)
	if err != nil {
		return nil, err
	}
	return seller, nil
}
