package fees

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	id "procurement/pkg/domain"
	txcontext "procurement/pkg/platform/tx"
)

const schema = `
CREATE TABLE IF NOT EXISTS fee_transfers (
	id           UUID PRIMARY KEY,
	amount       BIGINT NOT NULL CHECK (amount >= 0),
	payer        TEXT NOT NULL,
	payee        TEXT NOT NULL,
	reason       TEXT NOT NULL,
	block_height BIGINT NOT NULL,
	recorded_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS fee_transfers_payer_idx ON fee_transfers (payer);
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// PostgresLedger persists transfers in the fee_transfers table. When the
// context carries a transaction the insert joins it.
type PostgresLedger struct {
	db *sql.DB
}

func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// EnsureSchema creates the table if it does not exist.
func (l *PostgresLedger) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create fee_transfers schema: %w", err)
	}
	return nil
}

func (l *PostgresLedger) execer(ctx context.Context) execer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return l.db
}

// Atomic runs fn inside a transaction that Record and ListByPayer join.
func (l *PostgresLedger) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return txcontext.Run(ctx, l.db, fn)
}

func (l *PostgresLedger) Record(ctx context.Context, t Transfer) error {
	t = normalize(t)
	query := `
		INSERT INTO fee_transfers (id, amount, payer, payee, reason, block_height, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := l.execer(ctx).ExecContext(ctx, query,
		t.ID, int64(t.Amount), string(t.From), string(t.To), t.Reason, int64(t.BlockHeight), t.RecordedAt)
	if err != nil {
		return fmt.Errorf("record fee transfer: %w", err)
	}
	return nil
}

// ListByPayer returns transfers paid by any of payers in recording order.
// An empty filter returns everything.
func (l *PostgresLedger) ListByPayer(ctx context.Context, payers []id.Principal) ([]Transfer, error) {
	query := `
		SELECT id, amount, payer, payee, reason, block_height, recorded_at
		FROM fee_transfers
	`
	args := []any{}
	if len(payers) > 0 {
		names := make([]string, len(payers))
		for i, p := range payers {
			names[i] = string(p)
		}
		query += ` WHERE payer = ANY($1)`
		args = append(args, pq.Array(names))
	}
	query += ` ORDER BY recorded_at, id`

	rows, err := l.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fee transfers: %w", err)
	}
	defer rows.Close()

	out := make([]Transfer, 0)
	for rows.Next() {
		var (
			t              Transfer
			amount, height int64
			from, to       string
		)
		if err := rows.Scan(&t.ID, &amount, &from, &to, &t.Reason, &height, &t.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan fee transfer: %w", err)
		}
		t.Amount = uint64(amount)
		t.BlockHeight = uint64(height)
		t.From, t.To = id.Principal(from), id.Principal(to)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fee transfers: %w", err)
	}
	return out, nil
}
