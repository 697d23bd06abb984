package logging

import (
	"github.com/cactus/go-statsd-client/v5/statsd"
)

// Statter opens and holds the process-wide statsd connection, mirroring
// the teacher's logging.S global in cassabon.go (S.Open/S.Close) and
// logging.Statsd.Client.{Gauge,Inc,TimingDuration} call sites in
// storemanager.go.
type Statter struct {
	Client statsd.Statter
}

// S is the process-wide statter. It is a no-op until Open succeeds.
var S Statter

// Statsd is an alias kept for parity with the teacher's call sites
// (logging.Statsd.Client.Gauge(...)); S and Statsd are the same value.
var Statsd = &S

// Open connects to addr ("host:port") and tags all stats with prefix.
func (s *Statter) Open(addr string, prefix string) error {
	c, err := statsd.NewClientWithConfig(&statsd.ClientConfig{
		Address: addr,
		Prefix:  prefix,
	})
	if err != nil {
		return err
	}
	s.Client = c
	return nil
}

// Close releases the statsd connection, if one was opened.
func (s *Statter) Close() error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Close()
}

// Inc and Gauge satisfy datastore.Stats without propagating statsd
// transport errors into the hot ingest path -- the teacher's own call
// sites don't check these errors either, beyond a best-effort log.
func (s *Statter) Inc(stat string, value int64, rate float32) {
	if s.Client == nil {
		return
	}
	_ = s.Client.Inc(stat, value, rate)
}

func (s *Statter) Gauge(stat string, value int64, rate float32) {
	if s.Client == nil {
		return
	}
	_ = s.Client.Gauge(stat, value, rate)
}
