package datastore

// fetchRow is one row returned by the multi-path range fetch.
type fetchRow struct {
	path string
	data []float64
	time int64
}

// dbSession is the narrow slice of database capability the core depends
// on: "write a batch of raw points", "replace a rollup point", "read a
// range", "read a rollup source window". Everything schema-specific
// (table names, prepared statements, consistency levels) lives behind
// it; the ingest worker and fetch path never touch the driver directly.
// gocqlSession is the production implementation; tests substitute a fake.
type dbSession interface {
	// writeRaw appends each record's metric to its (path, time) list at
	// the finest tier. rows with a non-finite metric must already have
	// been filtered by the caller.
	writeRaw(table string, rows []insertRecord) error

	// writeRollup replaces the singleton list at (path, time) for a
	// coarser tier.
	writeRollup(rec insertRecord) error

	// fetchRange runs the multi-path range query used by Store.Fetch.
	fetchRange(table string, paths []string, rollup, period int, from, to int64) ([]fetchRow, error)

	// fetchRollupSource reads the finest-tier window a rollup is
	// computed from: [from, to).
	fetchRollupSource(table string, path string, rollup, period int, from, to int64) ([]float64, error)
}
