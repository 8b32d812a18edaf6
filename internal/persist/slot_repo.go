package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dragonfell/server/internal/save"
)

// SlotRepo persists save slots in PostgreSQL. It satisfies save.Store.
type SlotRepo struct {
	pool *pgxpool.Pool
}

func NewSlotRepo(pool *pgxpool.Pool) *SlotRepo {
	return &SlotRepo{pool: pool}
}

func (r *SlotRepo) Put(ctx context.Context, id string, payload []byte, updatedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO save_slots (id, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET payload = $2, updated_at = $3`,
		id, payload, updatedAt)
	if err != nil {
		return fmt.Errorf("put slot %s: %w", id, err)
	}
	return nil
}

func (r *SlotRepo) Get(ctx context.Context, id string) ([]byte, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx,
		`SELECT payload FROM save_slots WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get slot %s: %w", id, err)
	}
	return payload, nil
}

func (r *SlotRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM save_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete slot %s: %w", id, err)
	}
	return nil
}

func (r *SlotRepo) List(ctx context.Context) ([]save.SlotMeta, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, updated_at FROM save_slots ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var metas []save.SlotMeta
	for rows.Next() {
		var m save.SlotMeta
		if err := rows.Scan(&m.ID, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan slot meta: %w", err)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}
