package activity

import (
	"context"
	"errors"

	"github.com/goliatone/go-identity/pkg/types"
	masker "github.com/goliatone/go-masker"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed activity repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*LogEntry]
	Clock      types.Clock
	IDGen      types.IDGenerator
	Masker     *masker.Masker
}

type activityStore interface {
	repository.Repository[*LogEntry]
}

// Repository persists the identity activity trail and exposes feed reads.
// It implements both ActivitySink and ActivityRepository.
type Repository struct {
	activityStore
	clock types.Clock
	idGen types.IDGenerator
	mask  *masker.Masker
}

// NewRepository constructs the activity repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("activity: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*LogEntry]{
			NewRecord: func() *LogEntry { return &LogEntry{} },
			GetID: func(entry *LogEntry) uuid.UUID {
				if entry == nil {
					return uuid.Nil
				}
				return entry.ID
			},
			SetID: func(entry *LogEntry, id uuid.UUID) {
				if entry != nil {
					entry.ID = id
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
	mask := cfg.Masker
	if mask == nil {
		mask = DefaultMasker()
	}
	return &Repository{
		activityStore: repo,
		clock:         clock,
		idGen:         idGen,
		mask:          mask,
	}, nil
}

var (
	_ types.ActivitySink       = (*Repository)(nil)
	_ types.ActivityRepository = (*Repository)(nil)
)

// Log masks and persists an activity record.
func (r *Repository) Log(ctx context.Context, record types.ActivityRecord) error {
	sanitized := SanitizeRecord(r.mask, record)
	entry := toLogEntry(sanitized)
	if entry.ID == uuid.Nil {
		entry.ID = r.idGen.UUID()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = r.clock.Now()
	}
	_, err := r.Create(ctx, entry)
	return err
}

// ListActivity returns a paginated feed filtered by the supplied criteria.
func (r *Repository) ListActivity(ctx context.Context, filter types.ActivityFilter) (types.ActivityPage, error) {
	pagination := normalizePagination(filter.Pagination, 50, 200)
	rows, total, err := r.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.OrderExpr("occurred_at DESC").
			Limit(pagination.Limit).
			Offset(pagination.Offset)
		if filter.AccountID != uuid.Nil {
			q = q.Where("account_id = ?", filter.AccountID)
		}
		if filter.Scope.TenantID != uuid.Nil {
			q = q.Where("tenant_id = ?", filter.Scope.TenantID)
		}
		if filter.Scope.OrgID != uuid.Nil {
			q = q.Where("org_id = ?", filter.Scope.OrgID)
		}
		if filter.Channel != "" {
			q = q.Where("channel = ?", filter.Channel)
		}
		if len(filter.Verbs) > 0 {
			q = q.Where("verb IN (?)", bun.In(filter.Verbs))
		}
		return q
	})
	if err != nil {
		return types.ActivityPage{}, err
	}

	records := make([]types.ActivityRecord, 0, len(rows))
	for _, entry := range rows {
		records = append(records, fromLogEntry(entry))
	}
	nextOffset := pagination.Offset + len(records)
	return types.ActivityPage{
		Records:    records,
		Total:      total,
		NextOffset: nextOffset,
		HasMore:    nextOffset < total,
	}, nil
}

func toLogEntry(record types.ActivityRecord) *LogEntry {
	return &LogEntry{
		ID:         record.ID,
		AccountID:  record.AccountID,
		ActorID:    record.ActorID,
		TenantID:   record.TenantID,
		OrgID:      record.OrgID,
		Verb:       record.Verb,
		ObjectType: record.ObjectType,
		ObjectID:   record.ObjectID,
		Channel:    record.Channel,
		IP:         record.IP,
		Data:       record.Data,
		OccurredAt: record.OccurredAt,
	}
}

func fromLogEntry(entry *LogEntry) types.ActivityRecord {
	if entry == nil {
		return types.ActivityRecord{}
	}
	return types.ActivityRecord{
		ID:         entry.ID,
		AccountID:  entry.AccountID,
		ActorID:    entry.ActorID,
		TenantID:   entry.TenantID,
		OrgID:      entry.OrgID,
		Verb:       entry.Verb,
		ObjectType: entry.ObjectType,
		ObjectID:   entry.ObjectID,
		Channel:    entry.Channel,
		IP:         entry.IP,
		Data:       entry.Data,
		OccurredAt: entry.OccurredAt,
	}
}

func normalizePagination(p types.Pagination, def, max int) types.Pagination {
	out := p
	if out.Limit <= 0 {
		out.Limit = def
	}
	if out.Limit > max {
		out.Limit = max
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	return out
}
