package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// dbTimeout bounds each statement against the database.
const dbTimeout = 5 * time.Second

// MySQL is a Store backed by a single MySQL table.
type MySQL struct {
	db    *sql.DB
	quota int64
}

// NewMySQL connects to dsn, verifies the connection and creates the table.
func NewMySQL(ctx context.Context, dsn string, quota int64) (*MySQL, error) {
	if dsn == "" {
		return nil, fmt.Errorf("mysql storage requires a dsn")
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	db := sql.OpenDB(connector)

	pingCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	s := &MySQL{db: db, quota: quota}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *MySQL) migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	createKV := `CREATE TABLE IF NOT EXISTS kv_store (
    k VARCHAR(191) PRIMARY KEY,
    v LONGTEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`
	if _, err := s.db.ExecContext(ctx, createKV); err != nil {
		return fmt.Errorf("failed to create kv_store table: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *MySQL) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var v string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM kv_store WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Set implements Store.
// The quota applies to the sum of all keys and values in the table.
func (s *MySQL) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if s.quota > 0 {
		var used sql.NullInt64
		err := tx.QueryRowContext(ctx,
			`SELECT SUM(CHAR_LENGTH(k) + LENGTH(v)) FROM kv_store WHERE k <> ?`, key).Scan(&used)
		if err != nil {
			return err
		}
		if used.Int64+int64(len(key)+len(value)) > s.quota {
			return ErrQuotaExceeded
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO kv_store (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)`,
		key, value)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Delete implements Store.
func (s *MySQL) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE k = ?`, key)
	return err
}

// Close implements Store.
func (s *MySQL) Close() error { return s.db.Close() }
