package datastore

import "github.com/gocql/gocql"

// NewCassandraStore builds a Store backed by a live gocql session. The
// session is expected to already have its keyspace, load-balancing
// policy, compression, and credentials configured (see
// middleware.CassandraSession); this layer only adds the
// prepared-statement cache on top.
func NewCassandraStore(session *gocql.Session, cfg Config) *Store {
	return newStore(newGocqlSession(session), cfg)
}
