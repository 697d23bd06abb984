// Package config holds the process-wide configuration loaded from YAML
// and command-line flags, following the teacher's own config.G pattern.
// Loading the file itself is an external collaborator per the core spec
// (process bootstrap is out of scope); this package only defines the
// shape and a thin loader.
package config

import (
	"io/ioutil"
	"regexp"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/jeffpierce/cyanite/logging"
)

const (
	defaultChanSize  = 10000
	defaultBatchSize = 500
)

// Tier is one resolution level a rollup expression can fan a sample out
// to: (rollup, period, table, ttl).
type Tier struct {
	Rollup int    `yaml:"rollup"`
	Period int    `yaml:"period"`
	Table  string `yaml:"table"`
	TTL    int    `yaml:"ttl"`
}

// RollupDef is one path-expression's ordered tier chain, finest first.
type RollupDef struct {
	Expression string `yaml:"expression"`
	Tiers      []Tier `yaml:"tiers"`

	compiled *regexp.Regexp // compiled by ParseConfig
}

// MatchString reports whether path matches this expression. A def whose
// Expression never compiled (or that hasn't gone through ParseConfig)
// matches nothing.
func (d RollupDef) MatchString(path string) bool {
	return d.compiled != nil && d.compiled.MatchString(path)
}

// NewRollupDef compiles expression and returns a ready-to-use RollupDef,
// for callers building rollup config programmatically (tests, or a
// loader other than ParseConfig's YAML path).
func NewRollupDef(expression string, tiers []Tier) (RollupDef, error) {
	re, err := regexp.Compile(expression)
	if err != nil {
		return RollupDef{}, err
	}
	return RollupDef{Expression: expression, Tiers: tiers, compiled: re}, nil
}

// ROLLUP_CATCHALL names the expression that matches any path not matched
// by a more specific entry. MatchExpression always tries it last,
// wherever it appears in RollupPriority.
const ROLLUP_CATCHALL = ".*"

// CassandraConfig carries the store-construction parameters called out
// in spec.md §4.H/§6.
type CassandraConfig struct {
	Hosts      []string `yaml:"cluster"`
	Port       int      `yaml:"port"`
	Keyspace   string   `yaml:"keyspace"`
	Strategy   string   `yaml:"strategy"`
	CreateOpts string   `yaml:"create_opts"`
	RepFactor  int      `yaml:"repfactor"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	ChanSize   int      `yaml:"chan_size"`
	BatchSize  int      `yaml:"batch_size"`
}

// RedisConfig carries the connection parameters for the adapted
// path-index collaborator (spec §1's "path-index service").
type RedisConfig struct {
	Addr        string `yaml:"addr"`
	Pwd         string `yaml:"password"`
	DB          int64  `yaml:"db"`
	PathKeyname string `yaml:"path_keyname"`
}

// LogConfig names the per-stream logging destinations the teacher wires
// up in main: a system log, a carbon (ingest) log, and an API log.
type LogConfig struct {
	Logdir   string
	Loglevel string
	System   *logging.Logger
	Carbon   *logging.Logger
	API      *logging.Logger
}

// StatsdConfig names the statsd endpoint, mirroring the teacher's
// command-line flags.
type StatsdConfig struct {
	Host string
	Port int
}

// ListenConfig names the plaintext carbon listener's bind address,
// mirroring the teacher's own carbon/carbon-relay configuration.
type ListenConfig struct {
	Addr string `yaml:"addr"`
	Port int    `yaml:"port"`
}

// Config is the top-level shape parsed from YAML.
type Config struct {
	Cassandra CassandraConfig      `yaml:"cassandra"`
	Redis     RedisConfig          `yaml:"redis"`
	Listen    ListenConfig         `yaml:"carbon"`
	Rollup    map[string]RollupDef `yaml:"rollup"`
	// RollupPriority lists expressions from Rollup in match order, most
	// specific first; the catchall (if any) belongs last. This is a
	// YAML-authored ordering, not derived, because map iteration order
	// cannot stand in for "most specific".
	RollupPriority []string `yaml:"rollup_priority"`
	Logging        struct {
		Logdir   string `yaml:"logdir"`
		Loglevel string `yaml:"loglevel"`
	} `yaml:"logging"`
	Statsd struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"statsd"`
}

// G is the process-wide configuration, filled in by ParseConfig and
// command-line flags at startup, then treated as read-only.
var G struct {
	Cassandra      CassandraConfig
	Redis          RedisConfig
	Listen         ListenConfig
	Rollup         map[string]RollupDef
	RollupPriority []string
	Log            LogConfig
	Statsd         StatsdConfig
}

func init() {
	G.Cassandra.ChanSize = defaultChanSize
	G.Cassandra.BatchSize = defaultBatchSize
}

// BatchTimeout is fixed, per spec §6.
const BatchTimeout = 5 * time.Second

// ParseConfig reads and parses the YAML configuration file, returning
// its contents. It does not mutate G; callers copy in the values they
// want, mirroring the teacher's fetchConfiguration in cassabon.go.
func ParseConfig(path string) Config {
	var cnf Config

	raw, err := ioutil.ReadFile(path)
	if err != nil {
		if G.Log.System != nil {
			G.Log.System.LogFatal("Could not read configuration file %q: %s", path, err.Error())
		}
		return cnf
	}

	if err := yaml.Unmarshal(raw, &cnf); err != nil {
		if G.Log.System != nil {
			G.Log.System.LogFatal("Could not parse configuration file %q: %s", path, err.Error())
		}
		return cnf
	}

	for expr, def := range cnf.Rollup {
		re, compileErr := regexp.Compile(expr)
		if compileErr != nil {
			if G.Log.System != nil {
				G.Log.System.LogError("Rollup expression %q does not compile: %s", expr, compileErr.Error())
			}
			continue
		}
		def.compiled = re
		cnf.Rollup[expr] = def
	}

	if len(cnf.RollupPriority) == 0 {
		cnf.RollupPriority = defaultRollupPriority(cnf.Rollup)
	}
	return cnf
}

// MatchExpression returns the first expression in priority order whose
// pattern matches path, or "" if none do. Mirrors the teacher's
// StoreManager.getExpression.
func MatchExpression(path string) string {
	for _, expr := range G.RollupPriority {
		if expr == ROLLUP_CATCHALL {
			continue
		}
		if def, ok := G.Rollup[expr]; ok && def.MatchString(path) {
			return expr
		}
	}
	for _, expr := range G.RollupPriority {
		if expr == ROLLUP_CATCHALL {
			return expr
		}
	}
	return ""
}

// defaultRollupPriority falls back to an arbitrary-but-catchall-last
// order when the file doesn't specify rollup_priority explicitly.
func defaultRollupPriority(defs map[string]RollupDef) []string {
	var priority []string
	var catchall string
	for expr := range defs {
		if expr == ROLLUP_CATCHALL {
			catchall = expr
			continue
		}
		priority = append(priority, expr)
	}
	if catchall != "" {
		priority = append(priority, catchall)
	}
	return priority
}
