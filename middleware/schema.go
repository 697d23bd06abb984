package middleware

import (
	"fmt"

	"github.com/gocql/gocql"

	"github.com/jeffpierce/cyanite/config"
)

// PopulateSchema ensures the keyspace and per-tier tables exist, adapted
// from the teacher's storemanager.go populateSchema to the list-column
// schema spec.md §6 describes: primary key (tenant, rollup, period,
// path, time), a "data" column that is a list of doubles, and a
// per-write TTL rather than a table-default one.
func PopulateSchema(session *gocql.Session, cfg config.CassandraConfig, tables []string) error {
	conn := session.Pool.Pick(session.Query(""))
	if err := conn.UseKeyspace(cfg.Keyspace); err != nil {
		var options string
		if cfg.CreateOpts != "" {
			options = "," + cfg.CreateOpts
		}
		strategy := cfg.Strategy
		if strategy == "" {
			strategy = "SimpleStrategy"
		}
		query := fmt.Sprintf(
			"CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class':'%s'%s}",
			cfg.Keyspace, strategy, options)
		if err := session.Query(query).Exec(); err != nil {
			return fmt.Errorf("could not create keyspace %q: %w", cfg.Keyspace, err)
		}
	}

	ksmd, _ := session.KeyspaceMetadata(cfg.Keyspace)
	for _, table := range tables {
		if ksmd != nil {
			if _, found := ksmd.Tables[table]; found {
				continue
			}
		}
		query := fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s.%s (
                tenant text,
                rollup int,
                period int,
                path text,
                time bigint,
                data list<double>,
                PRIMARY KEY ((tenant, rollup, period, path), time)
            ) WITH CLUSTERING ORDER BY (time ASC)
                AND compaction = {'class': 'org.apache.cassandra.db.compaction.DateTieredCompactionStrategy'}
                AND compression = {'sstable_compression': 'org.apache.cassandra.io.compress.LZ4Compressor'}
                AND gc_grace_seconds = 86400;`,
			cfg.Keyspace, table)
		if err := session.Query(query).Exec(); err != nil {
			return fmt.Errorf("table %q creation failed: %w", table, err)
		}
	}
	return nil
}
