// ABOUTME: Record type and Store interface for the read-only record store
// ABOUTME: Defines optional-value field lookup and key extraction

package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// KeyField is the record field naming the owning API key.
const KeyField = "key"

// ErrMalformed is returned when stored data cannot be decoded into records.
var ErrMalformed = errors.New("malformed record data")

// Record is a single entry in the store.
type Record map[string]any

// Store is the external record collaborator. ReadAll returns every record in
// store order.
type Store interface {
	ReadAll(ctx context.Context) ([]Record, error)
	Close() error
}

// Lookup returns the string form of a scalar field and whether it is present.
// Missing fields, null, objects and arrays are not present, and neither are
// the falsy scalars: "", 0, NaN and false.
func (r Record) Lookup(field string) (string, bool) {
	v, ok := r[field]
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, val != ""
	case float64:
		if val == 0 || math.IsNaN(val) {
			return "", false
		}
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case json.Number:
		f, err := val.Float64()
		if err == nil && (f == 0 || math.IsNaN(f)) {
			return "", false
		}
		return val.String(), true
	case bool:
		if !val {
			return "", false
		}
		return "true", true
	case int:
		if val == 0 {
			return "", false
		}
		return strconv.Itoa(val), true
	case int64:
		if val == 0 {
			return "", false
		}
		return strconv.FormatInt(val, 10), true
	default:
		return "", false
	}
}

// APIKey returns the owning API key when it is a non-empty string.
func (r Record) APIKey() (string, bool) {
	k, ok := r[KeyField].(string)
	if !ok || k == "" {
		return "", false
	}
	return k, true
}

// decodeArray parses a JSON array of objects.
func decodeArray(data []byte) ([]Record, error) {
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if recs == nil {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformed)
	}
	return recs, nil
}

// decodeOne parses a single JSON object document.
func decodeOne(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: null document", ErrMalformed)
	}
	return rec, nil
}
