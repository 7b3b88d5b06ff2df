package sessionindex

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/codeready-toolchain/aav3/pkg/session"
	"github.com/codeready-toolchain/aav3/pkg/sessionstore"
)

// newTestStore connects to CI_DATABASE_URL when set, or spins up a
// throwaway postgres testcontainer otherwise. Mirrors the
// NewTestClient dual-mode fallback.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	dsn := os.Getenv("CI_DATABASE_URL")
	if dsn == "" {
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("aav3_test"),
			tcpostgres.WithUsername("aav3"),
			tcpostgres.WithPassword("aav3"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			t.Skipf("could not start postgres testcontainer: %v", err)
		}
		t.Cleanup(func() {
			if err := testcontainers.TerminateContainer(container); err != nil {
				t.Logf("failed to terminate container: %v", err)
			}
		})
		dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
	}

	store, err := Open(ctx, Config{DSN: dsn, MaxOpenConns: 5})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_RecordThenRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	v := sessionstore.Verdict{
		SessionID:          "abc123",
		Status:             "done",
		Approved:           true,
		ApprovalRate:       1.0,
		ConsensusThreshold: 0.67,
		RoundsUsed:         0,
		ReviewVerdict:      session.ReviewApproved,
		DurationSec:        12.5,
	}
	require.NoError(t, store.Record(ctx, v))

	summaries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "abc123", summaries[0].SessionID)
	assert.True(t, summaries[0].Approved)
	assert.Equal(t, "approved", summaries[0].ReviewVerdict)
}

func TestStore_RecordUpsertsOnSameSessionID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := sessionstore.Verdict{SessionID: "dup1", Status: "error", ApprovalRate: 0, ReviewVerdict: session.ReviewRejected}
	require.NoError(t, store.Record(ctx, base))

	updated := base
	updated.Status = "done"
	updated.Approved = true
	updated.ApprovalRate = 1.0
	updated.ReviewVerdict = session.ReviewApproved
	require.NoError(t, store.Record(ctx, updated))

	summaries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "done", summaries[0].Status)
	assert.True(t, summaries[0].Approved)
}

func TestStore_RecentOrdersNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, sessionstore.Verdict{SessionID: "first", Status: "done"}))
	require.NoError(t, store.Record(ctx, sessionstore.Verdict{SessionID: "second", Status: "done"}))

	summaries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "second", summaries[0].SessionID)
	assert.Equal(t, "first", summaries[1].SessionID)
}
