// ABOUTME: SQLite backend for the record store using database/sql
// ABOUTME: Reads JSON documents from the records table, read-only connection

package records

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// SQLite driver names accepted by NewSQLiteStore.
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite, pure Go
	DriverMattn   = "sqlite3" // github.com/mattn/go-sqlite3, requires cgo
)

// SQLiteStore reads records from a table shaped like:
//
//	CREATE TABLE records (id INTEGER PRIMARY KEY, body TEXT NOT NULL);
//
// where body holds one JSON object per row. Rows are returned in id order.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens the database at path read-only. An empty driver selects
// the pure Go driver. The file is not touched until the first read.
func NewSQLiteStore(driver, path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "records", "backend", "sqlite")

	if driver == "" {
		driver = DriverModernc
	}
	if driver != DriverModernc && driver != DriverMattn {
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}

	db, err := sql.Open(driver, "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	logger.Info("SQLite record store initialized", "path", path, "driver", driver)
	return &SQLiteStore{db: db, logger: logger}, nil
}

// ReadAll returns every row of the records table.
func (s *SQLiteStore) ReadAll(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM records ORDER BY id`)
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

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
