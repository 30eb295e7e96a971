// Package lsn reads the current write-ahead log position of a branch
// database. The value is what restoreBranch, retrieveDatabaseSchema and
// compareSchemas accept as an LSN.
package lsn

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// LSN is a Postgres log sequence number.
type LSN uint64

// Parse parses the textual form "XXXXXXXX/XXXXXXXX".
func Parse(s string) (LSN, error) {
	hi, lo, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || hi == "" || lo == "" {
		return 0, fmt.Errorf("lsn: %q is not of the form X/X", s)
	}
	h, err := strconv.ParseUint(hi, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("lsn: %q: %w", s, err)
	}
	l, err := strconv.ParseUint(lo, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("lsn: %q: %w", s, err)
	}
	return LSN(h<<32 | l), nil
}

func (l LSN) String() string {
	return fmt.Sprintf("%X/%X", uint64(l)>>32, uint64(l)&0xFFFFFFFF)
}

// Position is a WAL position with the server time it was read at.
type Position struct {
	LSN       LSN
	Timestamp time.Time
	// Replica is true when the position was read on a read-only endpoint,
	// where it is the last replayed LSN.
	Replica bool
}

// Querier is satisfied by *pgx.Conn and pgxpool.Pool.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const currentSQL = `SELECT pg_is_in_recovery(),
	(CASE WHEN pg_is_in_recovery() THEN pg_last_wal_replay_lsn() ELSE pg_current_wal_lsn() END)::text,
	now()`

// Current reads the position through q.
func Current(ctx context.Context, q Querier) (Position, error) {
	var (
		pos  Position
		text *string
	)
	if err := q.QueryRow(ctx, currentSQL).Scan(&pos.Replica, &text, &pos.Timestamp); err != nil {
		return Position{}, fmt.Errorf("lsn: query: %w", err)
	}
	if text == nil {
		return Position{}, fmt.Errorf("lsn: server reported no WAL position")
	}
	l, err := Parse(*text)
	if err != nil {
		return Position{}, err
	}
	pos.LSN = l
	return pos, nil
}

// Fetch connects to connString, reads the position and disconnects.
func Fetch(ctx context.Context, connString string, timeout time.Duration) (Position, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return Position{}, fmt.Errorf("lsn: connect: %w", err)
	}
	defer conn.Close(context.Background())
	return Current(ctx, conn)
}
