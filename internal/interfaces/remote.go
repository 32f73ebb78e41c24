package interfaces

import (
	"context"

	"github.com/techblueera/be-health-service-sub001/internal/models"
)

// SellerResolver resolves a seller identity through the fallback
// lookup chain (by seller id, then by owning-user id).
type SellerResolver interface {
	ResolveSeller(ctx context.Context, id string) (*models.Seller, error)
}

// UserDirectory resolves buyer identities.
type UserDirectory interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

// RiderDirectory resolves courier identities.
type RiderDirectory interface {
	GetRiderByID(ctx context.Context, riderID string) (*models.Rider, error)
}

// SessionValidator validates session tokens, serving cached results
// within the TTL.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*models.Session, error)
}
