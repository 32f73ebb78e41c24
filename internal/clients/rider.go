package clients

import (
	"context"
	"net/http"
	"net/url"

	"github.com/techblueera/be-health-service-sub001/internal/models"
	"github.com/techblueera/be-health-service-sub001/internal/remote"
)

// RiderClient resolves couriers against the rider directory.
type RiderClient struct {
	byID     *remote.Operation[string, *models.Rider]
	byUserID *remote.Operation[string, *models.Rider]
}

// NewRiderClient builds the facade over the given transport.
func NewRiderClient(caller remote.Caller, cfg remote.BreakerConfig) *RiderClient {
	return &RiderClient{
		byID: remote.NewOperation("rider.getRiderById", cfg,
			func(ctx context.Context, id string) (*models.Rider, error) {
				var rider models.Rider
				if err := caller.DoJSON(ctx, http.MethodGet, "/riders/"+url.PathEscape(id), nil, &rider); err != nil {
					return nil, err
				}
				return &rider, nil
			}),
		byUserID: remote.NewOperation("rider.getRiderByUserId", cfg,
			func(ctx context.Context, userID string) (*models.Rider, error) {
				var rider models.Rider
				if err := caller.DoJSON(ctx, http.MethodGet, "/riders/by-user/"+url.PathEscape(userID), nil, &rider); err != nil {
					return nil, err
				}
				return &rider, nil
			}),
	}
}

// GetRiderByID looks a rider up by rider id.
func (c *RiderClient) GetRiderByID(ctx context.Context, riderID string) (*models.Rider, error) {
	return c.byID.Invoke(ctx, riderID)
}

// GetRiderByUserID looks a rider up by its user id.
func (c *RiderClient) GetRiderByUserID(ctx context.Context, userID string) (*models.Rider, error) {
	return c.byUserID.Invoke(ctx, userID)
}
