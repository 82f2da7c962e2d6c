package idgen

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// RowQuerier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxSequence reads a native Postgres sequence with nextval.
// The increment is the sequence's own INCREMENT BY.
type PgxSequence struct {
	q        RowQuerier
	name     string
	regclass string // 与 EnsurePgxSequence 相同的引号形式，大小写敏感
}

func NewPgxSequence(q RowQuerier, name string) *PgxSequence {
	return &PgxSequence{q: q, name: name, regclass: pgx.Identifier{name}.Sanitize()}
}

func (s *PgxSequence) Name() string { return s.name }

func (s *PgxSequence) Next(ctx context.Context) (int64, error) {
	var v int64
	if err := s.q.QueryRow(ctx, "SELECT nextval($1)", s.regclass).Scan(&v); err != nil {
		return 0, fmt.Errorf("nextval(%s): %w", s.name, err)
	}
	return v, nil
}

func (s *PgxSequence) SupportsBatchInserts() bool { return true }

// Execer is satisfied by *pgxpool.Pool and *pgx.Conn.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// EnsurePgxSequence creates the sequence when missing.
func EnsurePgxSequence(ctx context.Context, db Execer, name string, start, step int64) error {
	sql := fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s START WITH %d INCREMENT BY %d",
		pgx.Identifier{name}.Sanitize(), start, step)
	if _, err := db.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create sequence %s: %w", name, err)
	}
	return nil
}
