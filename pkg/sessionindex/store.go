package sessionindex

import (
	"context"
	"fmt"
	"time"

	"github.com/codeready-toolchain/aav3/pkg/sessionstore"
)

// Summary is one row of session_summaries: a denormalized projection of a
// Verdict, for cross-session querying.
type Summary struct {
	SessionID          string
	Status             string
	Approved           bool
	ApprovalRate       float64
	ConsensusThreshold float64
	RoundsUsed         int
	ReviewVerdict       string
	DurationSec        float64
	RecordedAt          time.Time
}

// Record upserts one Verdict's summary row (spec.md names no relational
// component; this is purely additive bookkeeping, so a rerun of the same
// session_id simply overwrites its row).
func (s *Store) Record(ctx context.Context, v sessionstore.Verdict) error {
	const stmt = `
INSERT INTO session_summaries
	(session_id, status, approved, approval_rate, consensus_threshold, rounds_used, review_verdict, duration_sec)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (session_id) DO UPDATE SET
	status = EXCLUDED.status,
	approved = EXCLUDED.approved,
	approval_rate = EXCLUDED.approval_rate,
	consensus_threshold = EXCLUDED.consensus_threshold,
	rounds_used = EXCLUDED.rounds_used,
	review_verdict = EXCLUDED.review_verdict,
	duration_sec = EXCLUDED.duration_sec,
	recorded_at = now()
`
	_, err := s.db.ExecContext(ctx, stmt,
		v.SessionID, v.Status, v.Approved, v.ApprovalRate, v.ConsensusThreshold,
		v.RoundsUsed, string(v.ReviewVerdict), v.DurationSec,
	)
	if err != nil {
		return fmt.Errorf("record session summary %s: %w", v.SessionID, err)
	}
	return nil
}

// Recent returns the limit most recently recorded summaries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	const stmt = `
SELECT session_id, status, approved, approval_rate, consensus_threshold, rounds_used, review_verdict, duration_sec, recorded_at
FROM session_summaries
ORDER BY recorded_at DESC
LIMIT $1
`
	rows, err := s.db.QueryContext(ctx, stmt, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent session summaries: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.SessionID, &sm.Status, &sm.Approved, &sm.ApprovalRate,
			&sm.ConsensusThreshold, &sm.RoundsUsed, &sm.ReviewVerdict, &sm.DurationSec, &sm.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan session summary row: %w", err)
		}
		out = append(out, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session summary rows: %w", err)
	}
	return out, nil
}
