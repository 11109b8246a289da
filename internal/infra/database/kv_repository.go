package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/xavierca1/leadbridge/internal/usecase"
)

type dialect struct {
	driverName     string
	createTable    string
	selectValue    string
	upsert         string
	insertRevision string
	bumpRevision   string
}

var dialects = map[string]dialect{
	"sqlite": {
		driverName: "sqlite",
		createTable: `
			CREATE TABLE IF NOT EXISTS kv_store (
				store_key   TEXT PRIMARY KEY,
				store_value BLOB NOT NULL,
				updated_at  TIMESTAMP NOT NULL
			)`,
		selectValue: `SELECT store_value FROM kv_store WHERE store_key = ?`,
		upsert: `
			INSERT INTO kv_store (store_key, store_value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT (store_key)
			DO UPDATE SET store_value = excluded.store_value, updated_at = excluded.updated_at`,
		insertRevision: `
			INSERT INTO kv_store (store_key, store_value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT (store_key) DO NOTHING`,
		bumpRevision: `UPDATE kv_store SET store_value = ?, updated_at = ? WHERE store_key = ? AND store_value = ?`,
	},
	"postgres": {
		driverName: "postgres",
		createTable: `
			CREATE TABLE IF NOT EXISTS kv_store (
				store_key   TEXT PRIMARY KEY,
				store_value BYTEA NOT NULL,
				updated_at  TIMESTAMPTZ NOT NULL
			)`,
		selectValue: `SELECT store_value FROM kv_store WHERE store_key = $1`,
		upsert: `
			INSERT INTO kv_store (store_key, store_value, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (store_key)
			DO UPDATE SET store_value = EXCLUDED.store_value, updated_at = EXCLUDED.updated_at`,
		insertRevision: `
			INSERT INTO kv_store (store_key, store_value, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (store_key) DO NOTHING`,
		bumpRevision: `UPDATE kv_store SET store_value = $1, updated_at = $2 WHERE store_key = $3 AND store_value = $4`,
	},
	"mysql": {
		driverName: "mysql",
		createTable: `
			CREATE TABLE IF NOT EXISTS kv_store (
				store_key   VARCHAR(191) PRIMARY KEY,
				store_value LONGBLOB NOT NULL,
				updated_at  DATETIME(6) NOT NULL
			)`,
		selectValue: `SELECT store_value FROM kv_store WHERE store_key = ?`,
		upsert: `
			INSERT INTO kv_store (store_key, store_value, updated_at)
			VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE store_value = VALUES(store_value), updated_at = VALUES(updated_at)`,
		insertRevision: `
			INSERT IGNORE INTO kv_store (store_key, store_value, updated_at)
			VALUES (?, ?, ?)`,
		bumpRevision: `UPDATE kv_store SET store_value = ?, updated_at = ? WHERE store_key = ? AND store_value = ?`,
	},
}

func dialectFor(driver string) (dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported sql driver %q", driver)
	}
	return d, nil
}

// revisionKey holds a counter bumped by every PutMany. A writer whose last
// seen revision is no longer current has missed another process's write.
const revisionKey = "_revision"

// KVRepository guarda o espelho do store numa tabela só (kv_store)
type KVRepository struct {
	DB      *sql.DB
	dialect dialect

	mu       sync.Mutex
	revision int64
}

func NewKVRepository(db *sql.DB, driver string) (*KVRepository, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &KVRepository{DB: db, dialect: d}, nil
}

// Migrate cria a kv_store se ainda não existir
func (r *KVRepository) Migrate(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, r.dialect.createTable); err != nil {
		return fmt.Errorf("create kv_store: %w", err)
	}
	return nil
}

// Get also records the current revision, read before the value so a
// concurrent write can only make the next PutMany fail, never succeed wrongly.
func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rev, err := r.currentRevision(ctx)
	if err != nil {
		return nil, false, err
	}
	r.revision = rev

	return r.selectValue(ctx, key)
}

// PutMany upserts every entry in one transaction. It fails with
// usecase.ErrStaleMirror, writing nothing, if another process has written
// since this repository last read or wrote.
func (r *KVRepository) PutMany(ctx context.Context, entries map[string][]byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	next := r.revision + 1

	var res sql.Result
	if r.revision == 0 {
		res, err = tx.ExecContext(ctx, r.dialect.insertRevision, revisionKey, encodeRevision(next), now)
	} else {
		res, err = tx.ExecContext(ctx, r.dialect.bumpRevision, encodeRevision(next), now, revisionKey, encodeRevision(r.revision))
	}
	if err != nil {
		return fmt.Errorf("bump revision: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bump revision: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("kv_store revision %d is no longer current: %w", r.revision, usecase.ErrStaleMirror)
	}

	stmt, err := tx.PrepareContext(ctx, r.dialect.upsert)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for key, value := range entries {
		if _, err := stmt.ExecContext(ctx, key, value, now); err != nil {
			return fmt.Errorf("upsert %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.revision = next
	return nil
}

func (r *KVRepository) selectValue(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := r.DB.QueryRowContext(ctx, r.dialect.selectValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %q: %w", key, err)
	}
	return value, true, nil
}

func (r *KVRepository) currentRevision(ctx context.Context) (int64, error) {
	raw, found, err := r.selectValue(ctx, revisionKey)
	if err != nil || !found {
		return 0, err
	}
	rev, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse kv_store revision %q: %w", raw, err)
	}
	return rev, nil
}

func encodeRevision(rev int64) []byte {
	return []byte(strconv.FormatInt(rev, 10))
}

func (r *KVRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func (r *KVRepository) Close() error {
	return r.DB.Close()
}
