// Package middleware contains the drivers for the external services the
// store depends on.
package middleware

import (
	"github.com/gocql/gocql"

	"github.com/jeffpierce/cyanite/config"
)

// CassandraSession builds a gocql session configured the way spec.md
// §4.H requires: one or more contact points, token-aware round-robin
// load balancing, optional credentials, and LZ4 compression.
func CassandraSession(cfg config.CassandraConfig) (*gocql.Session, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	if cfg.Port != 0 {
		cluster.Port = cfg.Port
	}
	cluster.Keyspace = cfg.Keyspace
	cluster.Compressor = lz4Compressor{}
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	return cluster.CreateSession()
}
