package activity

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-identity/pkg/types"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestRepository_LogAndList(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	accountID := uuid.New()
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	verbs := []string{
		"identity.confirmation.requested",
		"identity.email.confirmed",
		"account.password.reset.requested",
	}
	for i, verb := range verbs {
		require.NoError(t, repo.Log(ctx, types.ActivityRecord{
			AccountID:  accountID,
			ActorID:    accountID,
			Verb:       verb,
			Channel:    "confirmation",
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
			Data: map[string]any{
				"key": "secret-confirmation-key",
			},
		}))
	}
	require.NoError(t, repo.Log(ctx, types.ActivityRecord{
		AccountID: uuid.New(),
		Verb:      "identity.email.confirmed",
		Channel:   "confirmation",
	}))

	page, err := repo.ListActivity(ctx, types.ActivityFilter{AccountID: accountID})
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Len(t, page.Records, 3)
	// Newest first.
	require.Equal(t, "account.password.reset.requested", page.Records[0].Verb)
	// Sensitive payload fields are masked before persistence.
	require.NotEqual(t, "secret-confirmation-key", page.Records[0].Data["key"])
}

func TestRepository_ListFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	accountID := uuid.New()
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		verb := "identity.confirmation.requested"
		if i%2 == 1 {
			verb = "identity.email.confirmed"
		}
		require.NoError(t, repo.Log(ctx, types.ActivityRecord{
			AccountID:  accountID,
			Verb:       verb,
			Channel:    "confirmation",
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	page, err := repo.ListActivity(ctx, types.ActivityFilter{
		AccountID: accountID,
		Verbs:     []string{"identity.email.confirmed"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)

	paged, err := repo.ListActivity(ctx, types.ActivityFilter{
		AccountID:  accountID,
		Pagination: types.Pagination{Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, paged.Records, 2)
	require.Equal(t, 5, paged.Total)
	require.True(t, paged.HasMore)
	require.Equal(t, 2, paged.NextOffset)
}

func newTestDB(t *testing.T) *bun.DB {
	sqldb, err := sql.Open("sqlite3", ":memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})
	return db
}

func applyDDL(t *testing.T, db *bun.DB) {
	t.Helper()
	content, err := os.ReadFile("../data/sql/migrations/sqlite/20250901000001_identity_core.up.sql")
	require.NoError(t, err)
	for _, stmt := range splitStatements(string(content)) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

func splitStatements(sql string) []string {
	lines := strings.Split(sql, "\n")
	var builder strings.Builder
	var statements []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		builder.WriteString(line)
		if strings.HasSuffix(line, ";") {
			statements = append(statements, strings.TrimSuffix(builder.String(), ";"))
			builder.Reset()
		} else {
			builder.WriteString(" ")
		}
	}
	if builder.Len() > 0 {
		statements = append(statements, builder.String())
	}
	return statements
}
