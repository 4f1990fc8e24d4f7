package redis

import (
	"github.com/getevo/evo/v2/lib/application"
	"github.com/getevo/evo/v2/lib/log"
)

// App wires Redis-backed request rate limiting into the planner API.
type App struct{}

func (App) Register() error {
	return nil
}

// Router registers no routes; the rate limit admin endpoints live in the
// system app to keep this package free of an auth dependency.
func (App) Router() error {
	return nil
}

// WhenReady connects to Redis and loads the per-endpoint limits. Runs after
// the models app so the settings table is migrated.
func (App) WhenReady() error {
	if err := Initialize(); err != nil {
		log.Error("Redis initialization failed: %v", err)
		return err
	}

	LoadRateLimitSettings()
	SubscribeToRateLimitReload()
	return nil
}

func (App) Name() string {
	return "redis"
}

func (App) Shutdown() error {
	return Close()
}

var _ application.Application = (*App)(nil)
