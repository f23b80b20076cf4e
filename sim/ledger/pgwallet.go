package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/loopline/loopline/sim"
)

const walletSchema = `
CREATE TABLE IF NOT EXISTS wallet_items (
  owner    TEXT    NOT NULL,
  kind     TEXT    NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 0),
  PRIMARY KEY (owner, kind)
)`

// PGWallet is a sim.CurrencyStore persisted in Postgres. Each debit is a
// single conditional UPDATE, so a short balance changes nothing.
//
// The CurrencyStore interface has no error path; database failures are
// logged and reported as an empty balance or a failed debit.
type PGWallet struct {
	db      *sql.DB
	owner   string
	timeout time.Duration
}

// NewPGWallet returns a wallet for owner. Call EnsureSchema once before use.
func NewPGWallet(db *sql.DB, owner string) *PGWallet {
	return &PGWallet{db: db, owner: owner, timeout: 2 * time.Second}
}

// EnsureSchema creates the wallet table if missing.
func (w *PGWallet) EnsureSchema(ctx context.Context) error {
	if _, err := w.db.ExecContext(ctx, walletSchema); err != nil {
		return fmt.Errorf("create wallet_items: %w", err)
	}
	return nil
}

// Exists reports whether the owner has any wallet rows yet.
func (w *PGWallet) Exists(ctx context.Context) (bool, error) {
	var exists bool
	err := w.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM wallet_items WHERE owner = $1)`, w.owner).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("wallet lookup %s: %w", w.owner, err)
	}
	return exists, nil
}

// Seed sets balances for the owner, overwriting existing ones.
func (w *PGWallet) Seed(ctx context.Context, items map[sim.ItemKind]int) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	q := `INSERT INTO wallet_items (owner, kind, quantity) VALUES ($1, $2, $3)
ON CONFLICT (owner, kind) DO UPDATE SET quantity = EXCLUDED.quantity`
	for kind, n := range items {
		if _, err := tx.ExecContext(ctx, q, w.owner, string(kind), n); err != nil {
			return fmt.Errorf("seed %s: %w", kind, err)
		}
	}
	return tx.Commit()
}

func (w *PGWallet) Balance(kind sim.ItemKind) int {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	var n int
	err := w.db.QueryRowContext(ctx,
		`SELECT quantity FROM wallet_items WHERE owner = $1 AND kind = $2`,
		w.owner, string(kind)).Scan(&n)
	if err == sql.ErrNoRows {
		return 0
	}
	if err != nil {
		logrus.Warnf("wallet balance %s/%s: %v", w.owner, kind, err)
		return 0
	}
	return n
}

func (w *PGWallet) Credit(kind sim.ItemKind, n int) {
	if n <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	_, err := w.db.ExecContext(ctx, `INSERT INTO wallet_items (owner, kind, quantity) VALUES ($1, $2, $3)
ON CONFLICT (owner, kind) DO UPDATE SET quantity = wallet_items.quantity + EXCLUDED.quantity`,
		w.owner, string(kind), n)
	if err != nil {
		logrus.Warnf("wallet credit %s/%s +%d: %v", w.owner, kind, n, err)
	}
}

func (w *PGWallet) Debit(kind sim.ItemKind, n int) bool {
	if n < 0 {
		return false
	}
	if n == 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	res, err := w.db.ExecContext(ctx,
		`UPDATE wallet_items SET quantity = quantity - $3 WHERE owner = $1 AND kind = $2 AND quantity >= $3`,
		w.owner, string(kind), n)
	if err != nil {
		logrus.Warnf("wallet debit %s/%s -%d: %v", w.owner, kind, n, err)
		return false
	}
	rows, err := res.RowsAffected()
	if err != nil {
		logrus.Warnf("wallet debit %s/%s: %v", w.owner, kind, err)
		return false
	}
	return rows == 1
}
