package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/authguard/internal/common"
	"github.com/dmitrijs2005/authguard/internal/dbx"
	"github.com/dmitrijs2005/authguard/internal/registry/migrations"
)

// PostgresStore keeps serialized user records in a users table keyed by
// identifier, with the record body in a jsonb column.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a pgx-backed connection for the given DSN.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreWithDB wraps an existing handle; used by tests.
func NewPostgresStoreWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Init applies the embedded goose migrations. Running it repeatedly is a
// no-op once the schema is current.
func (s *PostgresStore) Init(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, s.db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, identifier string) ([]byte, error) {
	query := `SELECT record FROM users WHERE username = $1`

	var record []byte
	err := s.db.QueryRowContext(ctx, query, identifier).Scan(&record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return record, nil
}

// Put upserts the full record in one transaction so a concurrent Get never
// observes a partially written row.
func (s *PostgresStore) Put(ctx context.Context, identifier string, record []byte) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `
			INSERT INTO users (username, record, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (username)
			DO UPDATE SET record = EXCLUDED.record, updated_at = now()
		`
		if _, err := tx.ExecContext(ctx, query, identifier, record); err != nil {
			return fmt.Errorf("error performing sql request: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) Exists(ctx context.Context, identifier string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, identifier).Scan(&exists); err != nil {
		return false, fmt.Errorf("error performing sql request: %w", err)
	}
	return exists, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
