package clients

import (
	"time"

	"github.com/techblueera/be-health-service-sub001/internal/remote"
)

// RegistryConfig holds the remote endpoints and breaker tuning shared
// by every facade.
type RegistryConfig struct {
	UsersServiceURL      string
	BusinessesServiceURL string
	RidersServiceURL     string
	Breaker              remote.BreakerConfig
	SessionCacheTTL      time.Duration
}

// Registry owns one facade per remote domain. It is constructed once
// at process start and passed to services by reference, so breaker and
// cache state stay inside the registry instead of module globals and
// tests can build isolated instances.
type Registry struct {
	Businesses *BusinessClient
	Users      *UserClient
	Riders     *RiderClient
}

// NewRegistry wires the facades to their HTTP transports.
func NewRegistry(cfg RegistryConfig) *Registry {
	return &Registry{
		Businesses: NewBusinessClient(remote.NewHTTPCaller(cfg.BusinessesServiceURL), cfg.Breaker),
		Users:      NewUserClient(remote.NewHTTPCaller(cfg.UsersServiceURL), cfg.Breaker, cfg.SessionCacheTTL),
		Riders:     NewRiderClient(remote.NewHTTPCaller(cfg.RidersServiceURL), cfg.Breaker),
	}
}
