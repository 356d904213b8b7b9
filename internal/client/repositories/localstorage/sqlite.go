package localstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/classroom/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetItem(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item %q: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) SetItem(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO local_storage (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("set item %q: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) RemoveItem(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove item %q: %w", key, err)
	}
	return nil
}
