// Package listener implements the plaintext carbon line-protocol entry
// point. Ingest listeners are an external collaborator per spec.md §1;
// this package exists only to turn "path value timestamp\n" lines into
// the one-sample-per-tier datastore.Sample records the core ingest
// worker expects (spec.md §9's "tier synthesis" note), by matching the
// path against the configured rollup chains.
package listener

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/jeffpierce/cyanite/config"
	"github.com/jeffpierce/cyanite/datastore"
)

// Sink is the subset of datastore.Store a listener needs: somewhere to
// put synthesized samples.
type Sink interface {
	IngestChannel() chan<- datastore.Sample
}

// Seen is notified the first time a listener observes a given path, so
// it can be recorded into the external path-index collaborator.
type Seen interface {
	Record(path string) error
}

// Logger is the narrow logging surface this package depends on.
type Logger interface {
	LogDebug(format string, args ...interface{})
	LogWarn(format string, args ...interface{})
	LogError(format string, args ...interface{})
}

// Listener accepts plaintext carbon connections and feeds parsed,
// tier-expanded samples into a Sink.
type Listener struct {
	sink   Sink
	seen   Seen
	logger Logger

	mu        sync.Mutex
	seenPaths map[string]bool
}

// New builds a Listener. seen and logger may be nil.
func New(sink Sink, seen Seen, logger Logger) *Listener {
	return &Listener{sink: sink, seen: seen, logger: logger, seenPaths: make(map[string]bool)}
}

// ListenTCP accepts plaintext carbon connections on addr:port. It returns
// only when the socket cannot be opened; a failed accept is logged and
// the loop goes on accepting.
func (l *Listener) ListenTCP(addr string, port int) error {
	sock, err := net.Listen("tcp", addr+":"+strconv.Itoa(port))
	if err != nil {
		return err
	}
	defer sock.Close()

	for {
		conn, err := sock.Accept()
		if err != nil {
			if l.logger != nil {
				l.logger.LogWarn("listener: accept failed: %s", err.Error())
			}
			continue
		}
		go l.handle(conn)
	}
}

func (l *Listener) handle(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(bufio.NewReader(conn))
	for scanner.Scan() {
		l.ingestLine(scanner.Text())
	}
}

func (l *Listener) ingestLine(line string) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		if l.logger != nil {
			l.logger.LogWarn("listener: malformed line: %q", line)
		}
		return
	}

	path := fields[0]
	value, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		if l.logger != nil {
			l.logger.LogWarn("listener: bad value in line: %q", line)
		}
		return
	}
	ts, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		if l.logger != nil {
			l.logger.LogWarn("listener: bad timestamp in line: %q", line)
		}
		return
	}

	l.noteSeen(path)
	l.fanOut(path, value, int64(ts))
}

func (l *Listener) noteSeen(path string) {
	if l.seen == nil {
		return
	}
	l.mu.Lock()
	already := l.seenPaths[path]
	l.seenPaths[path] = true
	l.mu.Unlock()
	if already {
		return
	}
	if err := l.seen.Record(path); err != nil && l.logger != nil {
		l.logger.LogError("listener: path-index record failed for %q: %s", path, err.Error())
	}
}

// fanOut synthesizes one datastore.Sample per tier configured for path's
// matched rollup expression, aligning each sample's time to that tier's
// rollup boundary.
func (l *Listener) fanOut(path string, value float64, ts int64) {
	expr := config.MatchExpression(path)
	def, ok := config.G.Rollup[expr]
	if !ok {
		if l.logger != nil {
			l.logger.LogWarn("listener: no rollup definition matched for %q", path)
		}
		return
	}

	ch := l.sink.IngestChannel()
	for _, tier := range def.Tiers {
		if tier.Rollup <= 0 {
			continue
		}
		aligned := (ts / int64(tier.Rollup)) * int64(tier.Rollup)
		ch <- datastore.Sample{
			Path:   path,
			Time:   aligned,
			Metric: value,
			Rollup: tier.Rollup,
			Period: tier.Period,
			TTL:    tier.TTL,
			Table:  tier.Table,
		}
	}
}
