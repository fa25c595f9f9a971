package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ChronicleEntry is one notable world event: a death, a breakthrough, the
// end of a fight.
type ChronicleEntry struct {
	ID     int64
	Day    int
	Kind   string
	Entity uint64
	Name   string
	Detail string
	At     time.Time
}

type ChronicleRepo struct {
	db *DB
}

func NewChronicleRepo(db *DB) *ChronicleRepo {
	return &ChronicleRepo{db: db}
}

var chronicleColumns = []string{"game_day", "kind", "entity", "entity_name", "detail", "recorded_at"}

// Append writes entries in one transaction. An empty batch is a no-op.
func (r *ChronicleRepo) Append(ctx context.Context, entries []ChronicleEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin chronicle tx: %w", err)
	}
	defer tx.Rollback(ctx)

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"chronicle"}, chronicleColumns,
		pgx.CopyFromSlice(len(entries), func(i int) ([]any, error) {
			e := entries[i]
			return []any{e.Day, e.Kind, int64(e.Entity), e.Name, e.Detail, e.At}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy chronicle: %w", err)
	}
	if n != int64(len(entries)) {
		return fmt.Errorf("copy chronicle: wrote %d of %d rows", n, len(entries))
	}
	return tx.Commit(ctx)
}

// Recent returns the newest limit entries, newest first.
func (r *ChronicleRepo) Recent(ctx context.Context, limit int) ([]ChronicleEntry, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, game_day, kind, entity, entity_name, detail, recorded_at
		 FROM chronicle
		 ORDER BY id DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ChronicleEntry
	for rows.Next() {
		var e ChronicleEntry
		var entity int64
		if err := rows.Scan(&e.ID, &e.Day, &e.Kind, &entity, &e.Name, &e.Detail, &e.At); err != nil {
			return nil, err
		}
		e.Entity = uint64(entity)
		result = append(result, e)
	}
	return result, rows.Err()
}
