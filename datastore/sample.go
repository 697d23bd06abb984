// Package datastore implements the ingest-and-rollup engine and the
// range-fetch path against a wide-column (Cassandra) store.
package datastore

// Sample is one metric point as it arrives on the ingest channel: a path,
// a time aligned to rollup, a value, and the tier it belongs to.
type Sample struct {
	Path   string  // dotted metric identifier
	Time   int64   // unix seconds, divisible by Rollup
	Metric float64 // finite real number
	Rollup int     // tier resolution in seconds
	Period int     // tier retention multiplier
	TTL    int     // seconds until storage expiry
	Table  string  // per-tier storage table
}

// insertRecord is a Sample normalized for writing: the positional shape
// the raw/rollup insert templates bind against.
type insertRecord struct {
	table  string
	rollup int
	period int
	ttl    int
	path   string
	time   int64
	metric float64
}
