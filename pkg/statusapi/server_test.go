package statusapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/aav3/pkg/session"
	"github.com/codeready-toolchain/aav3/pkg/sessionstore"
)

func TestHealthHandler_ReturnsHealthy(t *testing.T) {
	s := NewServer("/tmp/unused", func(string) (sessionstore.Verdict, error) {
		return sessionstore.Verdict{}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestVerdictHandler_ReturnsStoredVerdict(t *testing.T) {
	want := sessionstore.Verdict{
		SessionID:          "abc123",
		Status:             "done",
		Approved:           true,
		ApprovalRate:       1.0,
		ConsensusThreshold: 0.67,
		ReviewVerdict:      session.ReviewApproved,
	}

	s := NewServer("/tmp/unused", func(id string) (sessionstore.Verdict, error) {
		require.Equal(t, "abc123", id)
		return want, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/sessions/abc123/verdict", nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got sessionstore.Verdict
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, want.SessionID, got.SessionID)
	assert.True(t, got.Approved)
	assert.Equal(t, session.ReviewApproved, got.ReviewVerdict)
}

func TestVerdictHandler_ReturnsNotFoundWhenMissing(t *testing.T) {
	s := NewServer("/tmp/unused", func(string) (sessionstore.Verdict, error) {
		return sessionstore.Verdict{}, os.ErrNotExist
	})

	req := httptest.NewRequest(http.MethodGet, "/sessions/nope/verdict", nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerdictHandler_ReturnsServerErrorOnOtherFailures(t *testing.T) {
	s := NewServer("/tmp/unused", func(string) (sessionstore.Verdict, error) {
		return sessionstore.Verdict{}, assert.AnError
	})

	req := httptest.NewRequest(http.MethodGet, "/sessions/broken/verdict", nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSessionVerdictReader_RoundTripsThroughSessionStore(t *testing.T) {
	root := t.TempDir()
	store, err := sessionstore.Open(root, "realsession")
	require.NoError(t, err)
	require.NoError(t, store.WriteVerdict(sessionstore.Verdict{SessionID: "realsession", Status: "done"}))

	reader := SessionVerdictReader(root)
	v, err := reader("realsession")
	require.NoError(t, err)
	assert.Equal(t, "realsession", v.SessionID)
	assert.Equal(t, "done", v.Status)
}
