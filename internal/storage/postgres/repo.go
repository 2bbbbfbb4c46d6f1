// Package postgres implements a Postgres storage.Repository using pgx v5.
// Rows are loaded with COPY and the destination is replaced by renaming a
// staging table inside a transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	gddl "loanetl/internal/ddl"
	"loanetl/internal/storage"
	pgddl "loanetl/internal/storage/postgres/ddl"
)

// DefaultPort is used when the connection fields leave the port unset.
const DefaultPort = 5432

// Config holds Postgres repository configuration.
type Config struct {
	DSN string // connection string for pgxpool
}

// ConfigFrom derives a Config from cfg. An explicit DSN wins; otherwise a
// postgres:// URL is assembled from the connection fields.
func ConfigFrom(cfg storage.Config) Config {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return Config{DSN: dsn}
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   cfg.Host + ":" + strconv.Itoa(port),
		Path:   "/" + cfg.Database,
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	return Config{DSN: u.String()}
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository opens a pool, verifies it with a ping and returns a
// Repository plus a close function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Repository{pool: pool, cfg: cfg}, pool.Close, nil
}

// CopyFrom loads rows into table with COPY.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	n, err := r.pool.CopyFrom(ctx, splitFQN(table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, describe("copy into "+table, err)
	}
	return n, nil
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return describe("exec", err)
	}
	return nil
}

// CreateTable creates def.
func (r *Repository) CreateTable(ctx context.Context, def gddl.TableDef) error {
	stmt, err := pgddl.BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	return r.Exec(ctx, stmt)
}

// DropTable drops table if it exists.
func (r *Repository) DropTable(ctx context.Context, table string) error {
	return r.Exec(ctx, pgddl.DropTableSQL(table))
}

// Swap replaces target with staging in one transaction.
func (r *Repository) Swap(ctx context.Context, staging, target string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, stmt := range pgddl.SwapSQL(staging, target) {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return describe("swap "+staging+" into "+target, err)
			}
		}
		return nil
	})
}

// MapType implements storage.Repository.
func (r *Repository) MapType(kind string) string { return pgddl.MapType(kind) }

// describe folds the server's detail and SQLSTATE into the error text when
// the failure came from Postgres.
func describe(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("postgres: %s: %w (%s, %s)", op, err, pgErr.Detail, pgErr.SQLState())
	}
	return fmt.Errorf("postgres: %s: %w", op, err)
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
