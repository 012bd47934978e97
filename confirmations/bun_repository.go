package confirmations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-identity/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed confirmation repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
	IDGen      types.IDGenerator
	// KeyGen overrides key generation, used by tests for determinism.
	KeyGen func() (string, error)
}

type confirmationStore interface {
	repository.Repository[*Record]
}

// Repository implements types.ConfirmationRepository using Bun.
type Repository struct {
	confirmationStore
	db     *bun.DB
	clock  types.Clock
	idGen  types.IDGenerator
	keyGen func() (string, error)
}

// NewRepository constructs the default confirmation repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("confirmations: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Record]{
			NewRecord: func() *Record { return &Record{} },
			GetID: func(rec *Record) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *Record, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
		})
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}
	keyGen := cfg.KeyGen
	if keyGen == nil {
		keyGen = NewKey
	}
	db := cfg.DB
	if db == nil {
		if withDB, ok := repo.(interface{ DB() *bun.DB }); ok {
			db = withDB.DB()
		}
	}
	return &Repository{
		confirmationStore: repo,
		db:                db,
		clock:             clock,
		idGen:             idGen,
		keyGen:            keyGen,
	}, nil
}

var _ types.ConfirmationRepository = (*Repository)(nil)

// Create purges the identity's prior confirmations and inserts a fresh unsent
// one, ordered delete-then-insert inside a single transaction so a reader can
// never observe two live keys for the same identity. A prior confirmation
// sent inside the cooldown window aborts with ErrCooldownActive.
func (r *Repository) Create(ctx context.Context, identityID uuid.UUID, cooldown time.Duration) (*types.Confirmation, error) {
	if identityID == uuid.Nil {
		return nil, errors.New("confirmations: identity id required")
	}
	key, err := r.keyGen()
	if err != nil {
		return nil, err
	}
	now := r.clock.Now()
	rec := &Record{
		ID:         r.idGen.UUID(),
		IdentityID: identityID,
		Key:        key,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err = r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if cooldown > 0 {
			threshold := now.Add(-cooldown)
			count, err := tx.NewSelect().Model((*Record)(nil)).
				Where("identity_id = ?", identityID).
				Where("sent_at IS NOT NULL").
				Where("sent_at > ?", threshold).
				Count(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				return types.ErrCooldownActive
			}
		}
		if _, err := tx.NewDelete().Model((*Record)(nil)).
			Where("identity_id = ?", identityID).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(rec).Exec(ctx)
		return err
	})
	if err != nil {
		if errors.Is(err, types.ErrCooldownActive) {
			return nil, types.ErrCooldownActive
		}
		return nil, repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	return toDomain(rec), nil
}

// GetByKey returns the confirmation matching the key, nil when absent.
func (r *Repository) GetByKey(ctx context.Context, key string) (*types.Confirmation, error) {
	normalized := strings.TrimSpace(key)
	if normalized == "" {
		return nil, nil
	}
	rec, err := r.Get(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("key = ?", normalized)
	})
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(rec), nil
}

// LatestSent returns the identity's most recently sent confirmation, nil when
// nothing was handed off for delivery yet.
func (r *Repository) LatestSent(ctx context.Context, identityID uuid.UUID) (*types.Confirmation, error) {
	rows, _, err := r.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("identity_id = ?", identityID).
			Where("sent_at IS NOT NULL").
			OrderExpr("sent_at DESC").
			Limit(1)
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toDomain(rows[0]), nil
}

// MarkSent stamps SentAt with a conditional update. It succeeds only while
// SentAt is unset and no sibling confirmation for the same identity was sent
// inside the cooldown window, so two concurrent resends cannot both slip
// through the check-then-send gap.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, cooldown time.Duration) error {
	if r.db == nil {
		return errors.New("confirmations: db required for updates")
	}
	now := r.clock.Now()
	threshold := now.Add(-cooldown)
	res, err := r.db.NewUpdate().Model((*Record)(nil)).
		Set("sent_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Where("sent_at IS NULL").
		Where("NOT EXISTS (SELECT 1 FROM email_confirmations AS sibling"+
			" WHERE sibling.identity_id = ?TableAlias.identity_id"+
			" AND sibling.sent_at IS NOT NULL AND sibling.sent_at > ?)", threshold).
		Exec(ctx)
	if err != nil {
		return repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	if err := repository.SQLExpectedCount(res, 1); err != nil {
		return types.ErrCooldownActive
	}
	return nil
}

// DeleteForIdentity purges every confirmation belonging to the identity. Old
// keys become unusable the moment a newer one is requested.
func (r *Repository) DeleteForIdentity(ctx context.Context, identityID uuid.UUID) error {
	_, err := r.db.NewDelete().Model((*Record)(nil)).
		Where("identity_id = ?", identityID).
		Exec(ctx)
	if err != nil {
		return repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	return nil
}

func toDomain(rec *Record) *types.Confirmation {
	if rec == nil {
		return nil
	}
	out := &types.Confirmation{
		ID:         rec.ID,
		IdentityID: rec.IdentityID,
		Key:        rec.Key,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
	if rec.SentAt != nil {
		out.SentAt = *rec.SentAt
	}
	return out
}
