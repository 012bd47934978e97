package identity

import (
	persistence "github.com/goliatone/go-persistence-bun"

	"github.com/goliatone/go-identity/activity"
	"github.com/goliatone/go-identity/confirmations"
	"github.com/goliatone/go-identity/identities"
	"github.com/goliatone/go-identity/service"
)

// Re-export the service entry point so consumers can do `identity.New(...)`
// without importing internal wiring helpers.
type (
	Service  = service.Service
	Config   = service.Config
	Commands = service.Commands
	Queries  = service.Queries
)

// New constructs the go-identity runtime using the provided configuration.
func New(cfg Config) (*Service, error) {
	return service.New(cfg)
}

// RegisterModels registers the module's bun models with go-persistence-bun so
// hosts that rely on model-driven fixtures or schema tooling see them.
func RegisterModels() {
	persistence.RegisterModel((*identities.Record)(nil))
	persistence.RegisterModel((*confirmations.Record)(nil))
	persistence.RegisterModel((*activity.LogEntry)(nil))
}
