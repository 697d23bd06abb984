package datastore

import "sync"

// Logger is the subset of a cassabon-style named logger the core needs.
// logging.Logger satisfies this; tests and callers that don't care about
// log output can use nopLogger.
type Logger interface {
	LogDebug(format string, args ...interface{})
	LogInfo(format string, args ...interface{})
	LogWarn(format string, args ...interface{})
	LogError(format string, args ...interface{})
}

// Stats is the subset of a statsd client the core needs.
type Stats interface {
	Inc(stat string, value int64, rate float32)
	Gauge(stat string, value int64, rate float32)
}

type nopLogger struct{}

func (nopLogger) LogDebug(string, ...interface{}) {}
func (nopLogger) LogInfo(string, ...interface{})  {}
func (nopLogger) LogWarn(string, ...interface{})  {}
func (nopLogger) LogError(string, ...interface{}) {}

type nopStats struct{}

func (nopStats) Inc(string, int64, float32)   {}
func (nopStats) Gauge(string, int64, float32) {}

// Config carries the construction-time parameters for a Store: the
// prepared-statement cache and rollup-dedup map are process-wide state
// that live for the Store's lifetime, not package-level globals.
type Config struct {
	ChanSize  int // capacity of the ingest channel (default 10000)
	BatchSize int // max samples per batch (default 500)
	Logger    Logger
	Stats     Stats
}

// Store is the public façade: an ingest-channel accessor and a fetch
// operation, backed by the batching channel, the ingest worker, the
// rollup-dedup map, and the database session.
type Store struct {
	db     dbSession
	dedup  *rollupDedup
	logger Logger
	stats  Stats

	batcher *batcher
	wg      sync.WaitGroup

	startOnce sync.Once
}

// newStore constructs a Store. The ingest worker is not started until
// the first call to IngestChannel.
func newStore(db dbSession, cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	stats := cfg.Stats
	if stats == nil {
		stats = nopStats{}
	}

	return &Store{
		db:      db,
		dedup:   newRollupDedup(),
		logger:  logger,
		stats:   stats,
		batcher: newBatcher(cfg.ChanSize, cfg.BatchSize),
	}
}

// IngestChannel returns the producer side of the batching channel. The
// first call spawns the batcher and the ingest worker; later calls
// return the same channel.
func (s *Store) IngestChannel() chan<- Sample {
	s.startOnce.Do(func() {
		go s.batcher.run()
		s.wg.Add(1)
		go s.runIngest()
	})
	return s.batcher.in
}

func (s *Store) runIngest() {
	defer s.wg.Done()
	for batch := range s.batcher.out {
		s.processBatch(batch)
	}
}

// Close closes the ingest channel, which drains pending samples and
// terminates the ingest worker, then waits for in-flight async writes
// to finish.
func (s *Store) Close() {
	s.batcher.close()
	s.wg.Wait()
}
