package confirmations

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the persisted email_confirmations row. SentAt is null until
// the coordinator hands the message to the mail scheduler.
type Record struct {
	bun.BaseModel `bun:"table:email_confirmations"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid"`
	IdentityID uuid.UUID  `bun:"identity_id,notnull,type:uuid"`
	Key        string     `bun:"key,notnull,unique"`
	CreatedAt  time.Time  `bun:"created_at"`
	SentAt     *time.Time `bun:"sent_at,nullzero"`
	UpdatedAt  time.Time  `bun:"updated_at"`
}
