package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// NewDBConnection abre o pool do driver ("sqlite", "postgres" ou "mysql") e testa o Ping
func NewDBConnection(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	// 1. Abre (ainda não conecta, só valida a string)
	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	// 2. Pool
	// sqlite: uma conexão só, mantida aberta para o busy_timeout valer sempre
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	// 3. Ping
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	// outro processo (CLI) pode estar escrevendo no mesmo arquivo
	if driver == "sqlite" {
		if _, err := db.ExecContext(pingCtx, "PRAGMA busy_timeout = 5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite busy_timeout: %w", err)
		}
	}

	return db, nil
}
