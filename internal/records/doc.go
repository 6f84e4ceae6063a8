// Package records provides read-only access to the record store queried by
// recordgate.
//
// # Records
//
// A Record is an untyped mapping from field name to a JSON value. The field
// named "key" identifies the API key that owns the record:
//
//	{"key": "abc", "type": "x", "count": 3}
//
// Field access goes through Record.Lookup, which returns the string form of a
// scalar field and reports whether the field is present. Absent fields, JSON
// null, objects and arrays are reported as not present.
//
// # Backends
//
// Every backend implements Store, whose only data operation is ReadAll:
//
//   - JSONFileStore: a JSON array in a file, re-read and re-parsed per call
//   - SQLiteStore: JSON documents in a "records" table (modernc or mattn driver)
//   - PostgresStore: JSON documents in a "records" table via pgx
//   - RedisStore: JSON documents in a Redis list
//
// No backend caches. A reader racing a writer may observe either version of
// the data.
package records
