// ABOUTME: PostgreSQL backend for the record store using pgx connection pools
// ABOUTME: Reads json/jsonb documents from the records table in id order

package records

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresPingTimeout = 2 * time.Second

// PostgresStore reads records from a table shaped like:
//
//	CREATE TABLE records (id BIGSERIAL PRIMARY KEY, body JSONB NOT NULL);
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresStore connects to dsn and verifies the connection.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	logger := slog.Default().With("component", "records", "backend", "postgres")

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres dsn: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, postgresPingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	logger.Info("Postgres record store initialized", "host", cfg.ConnConfig.Host, "database", cfg.ConnConfig.Database)
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// ReadAll returns every row of the records table.
func (s *PostgresStore) ReadAll(ctx context.Context) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `SELECT body::text FROM records ORDER BY id`)
	if err != nil {
		s.logger.Warn("querying records failed", "error", err)
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	recs := []Record{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec, err := decodeOne([]byte(body))
		if err != nil {
			s.logger.Warn("malformed record row", "error", err)
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return recs, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
