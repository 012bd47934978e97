package identities

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the persisted identities row.
type Record struct {
	bun.BaseModel `bun:"table:identities"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	AccountID uuid.UUID `bun:"account_id,notnull,type:uuid"`
	Address   string    `bun:"address,notnull"`
	Verified  bool      `bun:"verified,notnull"`
	Primary   bool      `bun:"is_primary,notnull"`
	TenantID  uuid.UUID `bun:"tenant_id,type:uuid,nullzero"`
	OrgID     uuid.UUID `bun:"org_id,type:uuid,nullzero"`
	CreatedAt time.Time `bun:"created_at"`
	UpdatedAt time.Time `bun:"updated_at"`
}
