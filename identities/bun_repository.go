package identities

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-identity/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	defaultAccountsTable      = "users"
	defaultAccountEmailColumn = "email"
)

// RepositoryConfig wires the Bun-backed identity repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
	IDGen      types.IDGenerator
	// UniqueEmail enforces global address uniqueness across accounts. When
	// false an address is only unique within one account.
	UniqueEmail bool
	// AccountsTable and AccountEmailColumn locate the host user table so the
	// primary-address promotion can propagate the confirmed address.
	AccountsTable      string
	AccountEmailColumn string
}

type identityStore interface {
	repository.Repository[*Record]
}

// Repository implements types.IdentityRepository using Bun.
type Repository struct {
	identityStore
	db            *bun.DB
	clock         types.Clock
	idGen         types.IDGenerator
	uniqueEmail   bool
	accountsTable string
	emailColumn   string
}

// NewRepository constructs the default identity repository.
func NewRepository(cfg RepositoryConfig, options ...RepositoryOption) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("identities: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, recordHandlers())
	}
	repo = maybeWrapCache(repo, applyRepositoryOptions(options))
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}
	db := cfg.DB
	if db == nil {
		if withDB, ok := repo.(interface{ DB() *bun.DB }); ok {
			db = withDB.DB()
		}
	}
	table := strings.TrimSpace(cfg.AccountsTable)
	if table == "" {
		table = defaultAccountsTable
	}
	column := strings.TrimSpace(cfg.AccountEmailColumn)
	if column == "" {
		column = defaultAccountEmailColumn
	}
	return &Repository{
		identityStore: repo,
		db:            db,
		clock:         clock,
		idGen:         idGen,
		uniqueEmail:   cfg.UniqueEmail,
		accountsTable: table,
		emailColumn:   column,
	}, nil
}

func recordHandlers() repository.ModelHandlers[*Record] {
	return repository.ModelHandlers[*Record]{
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
	}
}

var _ types.IdentityRepository = (*Repository)(nil)

// GetOrCreate returns the identity for (account, address), creating it when
// absent. Creating a new record first purges the account's abandoned
// non-primary identities so at most one address change is pending.
func (r *Repository) GetOrCreate(ctx context.Context, account *types.Account, address string) (*types.EmailIdentity, error) {
	if account == nil || account.ID == uuid.Nil {
		return nil, types.ErrAccountIDRequired
	}
	normalized := types.NormalizeAddress(address)
	if normalized == "" {
		normalized = types.NormalizeAddress(account.Email)
	}
	if normalized == "" {
		return nil, goerrors.New("identities: address required", goerrors.CategoryValidation)
	}

	existing, err := r.getByAccountAddress(ctx, account.ID, normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return toDomain(existing), nil
	}

	if r.uniqueEmail {
		taken, err := r.FindByAddress(ctx, normalized)
		if err != nil {
			return nil, err
		}
		if taken != nil && taken.AccountID != account.ID {
			return nil, goerrors.New("identities: address already claimed", goerrors.CategoryConflict)
		}
	}

	now := r.clock.Now()
	rec := &Record{
		ID:        r.idGen.UUID(),
		AccountID: account.ID,
		Address:   normalized,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*Record)(nil)).
			Where("account_id = ?", account.ID).
			Where("is_primary = ?", false).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(rec).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	return toDomain(rec), nil
}

// GetByID returns the identity or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*types.EmailIdentity, error) {
	rec, err := r.Get(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("id = ?", id)
	})
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(rec), nil
}

// FindByAddress returns the oldest identity holding the address, nil when absent.
func (r *Repository) FindByAddress(ctx context.Context, address string) (*types.EmailIdentity, error) {
	normalized := types.NormalizeAddress(address)
	if normalized == "" {
		return nil, nil
	}
	rows, _, err := r.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("address = ?", normalized).
			OrderExpr("created_at ASC").
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

// GetPrimary returns the account's primary identity or nil.
func (r *Repository) GetPrimary(ctx context.Context, accountID uuid.UUID) (*types.EmailIdentity, error) {
	rows, _, err := r.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("account_id = ?", accountID).
			Where("is_primary = ?", true).
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

// GetNotPrimary returns a pending identity for the account. When several
// exist, addresses matching the account's own email field are excluded
// before picking the oldest, keeping the tie-break deterministic.
func (r *Repository) GetNotPrimary(ctx context.Context, account *types.Account) (*types.EmailIdentity, error) {
	if account == nil || account.ID == uuid.Nil {
		return nil, types.ErrAccountIDRequired
	}
	rows, _, err := r.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("account_id = ?", account.ID).
			Where("is_primary = ?", false).
			OrderExpr("created_at ASC")
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) > 1 {
		own := types.NormalizeAddress(account.Email)
		for _, rec := range rows {
			if rec.Address != own {
				return toDomain(rec), nil
			}
		}
	}
	return toDomain(rows[0]), nil
}

// SetAsPrimary promotes the identity to the account's primary address. The
// old primary row is deleted, not demoted, and the account email field is
// updated in the same transaction so a crash cannot leave zero or two
// primaries.
func (r *Repository) SetAsPrimary(ctx context.Context, id uuid.UUID, conditional bool) (bool, error) {
	if r.db == nil {
		return false, errors.New("identities: db required for updates")
	}
	promoted := false
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		rec := &Record{}
		if err := tx.NewSelect().Model(rec).Where("id = ?", id).Scan(ctx); err != nil {
			return err
		}
		ok, err := r.promoteTx(ctx, tx, rec, conditional)
		if err != nil {
			return err
		}
		promoted = ok
		return nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, goerrors.New("identities: identity not found", goerrors.CategoryNotFound)
		}
		return false, repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	return promoted, nil
}

// Confirm marks the identity verified and promotes it to primary in one
// transaction, returning the updated identity.
func (r *Repository) Confirm(ctx context.Context, id uuid.UUID) (*types.EmailIdentity, error) {
	if r.db == nil {
		return nil, errors.New("identities: db required for updates")
	}
	rec := &Record{}
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(rec).Where("id = ?", id).Scan(ctx); err != nil {
			return err
		}
		rec.Verified = true
		rec.UpdatedAt = r.clock.Now()
		if _, err := tx.NewUpdate().Model(rec).
			Column("verified", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return err
		}
		_, err := r.promoteTx(ctx, tx, rec, false)
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerrors.New("identities: identity not found", goerrors.CategoryNotFound)
		}
		return nil, repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	return toDomain(rec), nil
}

// DeletePending removes the account's non-primary identities. Confirmation
// rows cascade through the schema's foreign key.
func (r *Repository) DeletePending(ctx context.Context, accountID uuid.UUID) error {
	if accountID == uuid.Nil {
		return types.ErrAccountIDRequired
	}
	_, err := r.db.NewDelete().Model((*Record)(nil)).
		Where("account_id = ?", accountID).
		Where("is_primary = ?", false).
		Exec(ctx)
	if err != nil {
		return repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	return nil
}

// promoteTx applies the delete-old / promote-new / propagate-email sequence
// inside the caller's transaction.
func (r *Repository) promoteTx(ctx context.Context, tx bun.Tx, rec *Record, conditional bool) (bool, error) {
	current := &Record{}
	err := tx.NewSelect().Model(current).
		Where("account_id = ?", rec.AccountID).
		Where("is_primary = ?", true).
		Limit(1).
		Scan(ctx)
	switch {
	case err == nil:
		if current.ID != rec.ID {
			if conditional {
				return false, nil
			}
			if _, err := tx.NewDelete().Model((*Record)(nil)).
				Where("id = ?", current.ID).
				Exec(ctx); err != nil {
				return false, err
			}
		}
	case errors.Is(err, sql.ErrNoRows):
	default:
		return false, err
	}

	rec.Primary = true
	rec.UpdatedAt = r.clock.Now()
	if _, err := tx.NewUpdate().Model(rec).
		Column("is_primary", "updated_at").
		WherePK().
		Exec(ctx); err != nil {
		return false, err
	}

	_, err = tx.NewUpdate().Table(r.accountsTable).
		Set(r.emailColumn+" = ?", rec.Address).
		Where("id = ?", rec.AccountID).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) getByAccountAddress(ctx context.Context, accountID uuid.UUID, address string) (*Record, error) {
	rec, err := r.Get(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("account_id = ?", accountID).
			Where("address = ?", address)
	})
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func toDomain(rec *Record) *types.EmailIdentity {
	if rec == nil {
		return nil
	}
	return &types.EmailIdentity{
		ID:        rec.ID,
		AccountID: rec.AccountID,
		Address:   rec.Address,
		Verified:  rec.Verified,
		Primary:   rec.Primary,
		Scope: types.ScopeFilter{
			TenantID: rec.TenantID,
			OrgID:    rec.OrgID,
		},
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
