package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"studio/internal/orchestrator"
)

// GenerationRepositoryPG records finished generations in PostgreSQL. The
// table is an append-only audit trail; the studio never reads it on the hot
// path.
type GenerationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewGenerationRepository constructs the repository. A nil pool yields a nil
// repository, which callers treat as "auditing disabled".
func NewGenerationRepository(pool *pgxpool.Pool) *GenerationRepositoryPG {
	if pool == nil {
		return nil
	}
	return &GenerationRepositoryPG{pool: pool}
}

var _ orchestrator.AuditSink = (*GenerationRepositoryPG)(nil)

// EnsureSchema creates the audit table when it does not exist yet.
func (r *GenerationRepositoryPG) EnsureSchema(ctx context.Context) error {
	if r == nil || r.pool == nil {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS generations (
    id BIGSERIAL PRIMARY KEY,
    session_id TEXT NOT NULL,
    transformation_key TEXT NOT NULL,
    pipeline TEXT NOT NULL,
    status TEXT NOT NULL,
    error_class TEXT,
    elapsed_ms BIGINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`)
	return err
}

// RecordGeneration appends one audit row.
func (r *GenerationRepositoryPG) RecordGeneration(ctx context.Context, rec orchestrator.AuditRecord) error {
	if r == nil || r.pool == nil {
		return nil
	}
	query := `
INSERT INTO generations (
    session_id, transformation_key, pipeline, status, error_class, elapsed_ms, created_at
) VALUES (
    $1, $2, $3, $4, NULLIF($5, ''), $6, $7
);
`
	_, err := r.pool.Exec(ctx, query,
		rec.SessionID,
		rec.TransformationKey,
		rec.Pipeline,
		rec.Status,
		rec.ErrorClass,
		rec.Elapsed.Milliseconds(),
		time.Now().UTC(),
	)
	return err
}

// CountByStatus returns the number of audited generations per status, for the
// operational stats endpoint.
func (r *GenerationRepositoryPG) CountByStatus(ctx context.Context) (map[string]int64, error) {
	if r == nil || r.pool == nil {
		return map[string]int64{}, nil
	}
	rows, err := r.pool.Query(ctx, `
SELECT status, COUNT(*)
FROM generations
GROUP BY status;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
