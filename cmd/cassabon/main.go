// Command cassabon is the metrics daemon's process entry point: it
// parses flags, loads YAML configuration, wires the Cassandra-backed
// store, Redis-backed path index, and plaintext carbon listener
// together, then runs until signaled to reload or terminate. Adapted
// from the teacher's cassabon.go.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jeffpierce/cyanite/config"
	"github.com/jeffpierce/cyanite/datastore"
	"github.com/jeffpierce/cyanite/listener"
	"github.com/jeffpierce/cyanite/logging"
	"github.com/jeffpierce/cyanite/middleware"
	"github.com/jeffpierce/cyanite/pathindex"
)

// fetchConfiguration reads confFile and copies its settings into the
// process-wide config.G, preferring values already set on the command
// line.
func fetchConfiguration(confFile string) config.Config {
	cnf := config.ParseConfig(confFile)

	if config.G.Log.Logdir == "" {
		config.G.Log.Logdir = cnf.Logging.Logdir
	}
	if config.G.Log.Loglevel == "" {
		config.G.Log.Loglevel = cnf.Logging.Loglevel
	}
	if config.G.Statsd.Host == "" {
		config.G.Statsd.Host = cnf.Statsd.Host
	}
	if config.G.Statsd.Port == 0 {
		config.G.Statsd.Port = cnf.Statsd.Port
	}

	config.G.Cassandra = cnf.Cassandra
	config.G.Redis = cnf.Redis
	config.G.Listen = cnf.Listen
	config.G.Rollup = cnf.Rollup
	config.G.RollupPriority = cnf.RollupPriority

	return cnf
}

// tierTables returns the distinct table names named across every
// configured rollup tier, for schema bootstrap.
func tierTables() []string {
	seen := make(map[string]bool)
	var tables []string
	for _, def := range config.G.Rollup {
		for _, tier := range def.Tiers {
			if tier.Table == "" || seen[tier.Table] {
				continue
			}
			seen[tier.Table] = true
			tables = append(tables, tier.Table)
		}
	}
	return tables
}

func main() {
	var confFile string

	flag.StringVar(&confFile, "conf", "", "Location of YAML configuration file.")
	flag.StringVar(&config.G.Log.Logdir, "logdir", "", "Name of directory to contain log files (stderr if unspecified)")
	flag.StringVar(&config.G.Log.Loglevel, "loglevel", "", "Log level: debug|info|warn|error|fatal (debug if unspecified)")
	flag.StringVar(&config.G.Statsd.Host, "statsdhost", "", "statsd host or IP address")
	flag.IntVar(&config.G.Statsd.Port, "statsdport", 0, "statsd port (8125 if unspecified)")
	flag.Parse()

	if confFile != "" {
		fetchConfiguration(confFile)
	}
	if config.G.Log.Loglevel == "" {
		config.G.Log.Loglevel = "debug"
	}
	if config.G.Statsd.Port == 0 {
		config.G.Statsd.Port = 8125
	}

	sev, errLogLevel := logging.TextToSeverity(config.G.Log.Loglevel)
	if config.G.Log.Logdir != "" {
		logDir, _ := filepath.Abs(config.G.Log.Logdir)
		config.G.Log.System = logging.NewLogger("system", filepath.Join(logDir, "cassabon.system.log"), sev)
		config.G.Log.Carbon = logging.NewLogger("carbon", filepath.Join(logDir, "cassabon.carbon.log"), sev)
		config.G.Log.API = logging.NewLogger("api", filepath.Join(logDir, "cassabon.api.log"), sev)
	} else {
		config.G.Log.System = logging.NewLogger("system", "", sev)
		config.G.Log.Carbon = logging.NewLogger("carbon", "", sev)
		config.G.Log.API = logging.NewLogger("api", "", sev)
	}
	defer config.G.Log.System.Close()
	defer config.G.Log.Carbon.Close()
	defer config.G.Log.API.Close()

	config.G.Log.System.LogInfo("Application startup in progress")
	if errLogLevel != nil {
		config.G.Log.System.LogWarn("Bad command line argument: %v", errLogLevel)
	}

	if config.G.Statsd.Host != "" {
		hp := fmt.Sprintf("%s:%d", config.G.Statsd.Host, config.G.Statsd.Port)
		if err := logging.S.Open(hp, "cassabon"); err != nil {
			config.G.Log.System.LogError("Not reporting to statsd: %v", err)
		} else {
			config.G.Log.System.LogInfo("Reporting to statsd at %s", hp)
		}
		defer logging.S.Close()
	} else {
		config.G.Log.System.LogInfo("Not reporting to statsd: specify host or IP to enable")
	}

	session, err := middleware.CassandraSession(config.G.Cassandra)
	if err != nil {
		config.G.Log.System.LogFatal("Could not connect to Cassandra: %s", err.Error())
	}
	defer session.Close()

	if tables := tierTables(); len(tables) > 0 {
		if err := middleware.PopulateSchema(session, config.G.Cassandra, tables); err != nil {
			config.G.Log.System.LogFatal("Could not populate schema: %s", err.Error())
		}
	}

	store := datastore.NewCassandraStore(session, datastore.Config{
		ChanSize:  config.G.Cassandra.ChanSize,
		BatchSize: config.G.Cassandra.BatchSize,
		Logger:    config.G.Log.Carbon,
		Stats:     logging.Statsd,
	})
	defer store.Close()

	var recorder listener.Seen
	if config.G.Redis.Addr != "" {
		rc, err := middleware.RedisClient(config.G.Redis.Addr, config.G.Redis.Pwd, config.G.Redis.DB)
		if err != nil {
			config.G.Log.System.LogError("Not recording paths to the search index: %s", err.Error())
		} else {
			defer rc.Close()
			recorder = pathindex.New(rc, config.G.Redis.PathKeyname)
		}
	}

	carbon := listener.New(store, recorder, config.G.Log.Carbon)
	if config.G.Listen.Addr != "" || config.G.Listen.Port != 0 {
		go func() {
			if err := carbon.ListenTCP(config.G.Listen.Addr, config.G.Listen.Port); err != nil {
				config.G.Log.System.LogFatal("Carbon listener failed: %s", err.Error())
			}
		}()
	}

	var sighup = make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	var sigterm = make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)

	configIsStale := false
	repeat := true
	for repeat {
		config.G.Log.System.LogInfo("Application reading and applying current configuration")
		if configIsStale && confFile != "" {
			fetchConfiguration(confFile)
		}

		config.G.Log.System.LogInfo("Application running")
		select {
		case <-sighup:
			config.G.Log.System.LogInfo("Application received SIGHUP")
			logging.Reopen()
			configIsStale = true
		case <-sigterm:
			config.G.Log.System.LogInfo("Application received SIGINT/SIGTERM, preparing to terminate")
			repeat = false
		}
	}

	config.G.Log.System.LogInfo("Application termination complete")
}
