package types

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScopeFilter carries tenant/org scoping fields used by commands/queries.
type ScopeFilter struct {
	TenantID uuid.UUID
	OrgID    uuid.UUID
}

// Clone returns a copy of the scope filter.
func (s ScopeFilter) Clone() ScopeFilter {
	return ScopeFilter{TenantID: s.TenantID, OrgID: s.OrgID}
}

// IsZero reports whether no scope identifiers are set.
func (s ScopeFilter) IsZero() bool {
	return s.TenantID == uuid.Nil && s.OrgID == uuid.Nil
}

// ActorRef identifies who or what is initiating an identity mutation.
type ActorRef struct {
	ID   uuid.UUID
	Type string
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used by the service.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID implements IDGenerator.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

// ActivityRecord describes sink inputs shared across sink and query layers.
type ActivityRecord struct {
	ID         uuid.UUID
	AccountID  uuid.UUID
	ActorID    uuid.UUID
	Verb       string
	ObjectType string
	ObjectID   string
	Channel    string
	IP         string
	TenantID   uuid.UUID
	OrgID      uuid.UUID
	Data       map[string]any
	OccurredAt time.Time
}

// ActivitySink is the minimal DI contract for emitting activity. Keep it
// stable and limited to Log so hosts can swap sinks without breaking changes.
type ActivitySink interface {
	Log(context.Context, ActivityRecord) error
}

// ActivityFilter narrows activity feed reads.
type ActivityFilter struct {
	AccountID  uuid.UUID
	Scope      ScopeFilter
	Verbs      []string
	Channel    string
	Pagination Pagination
}

// ActivityPage represents a paginated activity feed.
type ActivityPage struct {
	Records    []ActivityRecord
	Total      int
	NextOffset int
	HasMore    bool
}

// ActivityRepository exposes read-side access to activity logs.
type ActivityRepository interface {
	ListActivity(ctx context.Context, filter ActivityFilter) (ActivityPage, error)
}

// Pagination supports feed pagination.
type Pagination struct {
	Limit  int
	Offset int
}

// ConfirmationEvent is emitted after a confirmation key is issued or consumed.
type ConfirmationEvent struct {
	AccountID  uuid.UUID
	IdentityID uuid.UUID
	Address    string
	Verb       string
	Scope      ScopeFilter
	OccurredAt time.Time
}

// ResetEvent is emitted after password reset or change flows complete.
type ResetEvent struct {
	AccountID  uuid.UUID
	Email      string
	Verb       string
	Scope      ScopeFilter
	OccurredAt time.Time
}

// Hooks groups optional callbacks invoked after key workflows complete.
type Hooks struct {
	AfterConfirmation func(context.Context, ConfirmationEvent)
	AfterReset        func(context.Context, ResetEvent)
	AfterActivity     func(context.Context, ActivityRecord)
}

// NormalizeAddress lowercases and trims an email address so lookups stay
// consistent across transports.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
