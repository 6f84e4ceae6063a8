// ABOUTME: Integration tests for the Postgres record store
// ABOUTME: Runs only when RECORDGATE_TEST_POSTGRES_URL points at a database

package records

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_ReadAll(t *testing.T) {
	dsn := os.Getenv("RECORDGATE_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("RECORDGATE_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, `DROP TABLE IF EXISTS records`)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, `CREATE TABLE records (id BIGSERIAL PRIMARY KEY, body JSONB NOT NULL)`)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, `INSERT INTO records (body) VALUES ($1), ($2)`,
		`{"key":"abc","type":"x"}`, `{"key":"def","type":"y"}`)
	require.NoError(t, err)

	s, err := NewPostgresStore(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	recs, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "abc", recs[0]["key"])
	assert.Equal(t, "y", recs[1]["type"])
}

func TestNewPostgresStore_BadDSN(t *testing.T) {
	_, err := NewPostgresStore(context.Background(), "postgres://%zz")
	assert.Error(t, err)
}
