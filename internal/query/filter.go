// ABOUTME: Exact-match conjunctive filters over records
// ABOUTME: Builds filters from URL query values and evaluates them per record

package query

import (
	"net/url"
	"sort"

	"github.com/2389/recordgate/internal/records"
)

// Filter maps a record field name to the exact string it must equal.
type Filter map[string]string

// ParseFilter builds a Filter from URL query values. A repeated parameter
// uses its first value.
func ParseFilter(values url.Values) Filter {
	f := make(Filter, len(values))
	for field, vals := range values {
		if len(vals) == 0 {
			continue
		}
		f[field] = vals[0]
	}
	return f
}

// Fields returns the filter field names in sorted order.
func (f Filter) Fields() []string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Matches reports whether every filter field is present on rec with exactly
// the filter's value. Comparison is case-sensitive with no prefix matching.
func (f Filter) Matches(rec records.Record) bool {
	for field, want := range f {
		got, ok := rec.Lookup(field)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Apply returns the records matching f in their original order. The result
// is never nil.
func (f Filter) Apply(recs []records.Record) []records.Record {
	matched := []records.Record{}
	for _, rec := range recs {
		if f.Matches(rec) {
			matched = append(matched, rec)
		}
	}
	return matched
}
