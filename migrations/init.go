package migrations

import (
	identity "github.com/goliatone/go-identity"
)

func init() {
	Register(identity.GetMigrationsFS())
}
