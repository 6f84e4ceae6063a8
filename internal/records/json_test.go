// ABOUTME: Tests for the JSON file record store
// ABOUTME: Verifies per-call re-reads and error reporting for bad files

package records

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestJSONFileStore_ReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	writeFile(t, path, `[{"key":"abc","type":"x"},{"key":"def","type":"y"}]`)

	s := NewJSONFileStore(path)
	defer s.Close()

	recs, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "abc", recs[0]["key"])
	assert.Equal(t, "y", recs[1]["type"])
}

func TestJSONFileStore_RereadsOnEveryCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	writeFile(t, path, `[{"key":"abc"}]`)

	s := NewJSONFileStore(path)
	ctx := context.Background()

	recs, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	writeFile(t, path, `[{"key":"abc"},{"key":"def"},{"key":"ghi"}]`)

	recs, err = s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestJSONFileStore_MissingFile(t *testing.T) {
	s := NewJSONFileStore(filepath.Join(t.TempDir(), "nope.json"))

	_, err := s.ReadAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist), "expected not-exist error, got %v", err)
}

func TestJSONFileStore_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	writeFile(t, path, `[{"key":`)

	_, err := NewJSONFileStore(path).ReadAll(context.Background())
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestJSONFileStore_CanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	writeFile(t, path, `[]`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewJSONFileStore(path).ReadAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
