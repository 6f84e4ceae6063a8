// ABOUTME: JSON file backend for the record store
// ABOUTME: Re-reads and re-parses the whole file on every ReadAll call

package records

import (
	"context"
	"fmt"
	"os"
)

// JSONFileStore reads records from a file holding a JSON array of objects.
type JSONFileStore struct {
	path string
}

// NewJSONFileStore creates a store over the file at path. The file is not
// opened until ReadAll is called, so a missing file surfaces per request.
func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{path: path}
}

// ReadAll reads and parses the file.
func (s *JSONFileStore) ReadAll(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading record file: %w", err)
	}
	return decodeArray(data)
}

// Close is a no-op; the file is never held open.
func (s *JSONFileStore) Close() error {
	return nil
}
