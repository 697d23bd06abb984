package listener

import (
	"sync"
	"testing"

	"github.com/jeffpierce/cyanite/config"
	"github.com/jeffpierce/cyanite/datastore"
)

type fakeSink struct {
	mu      sync.Mutex
	ch      chan datastore.Sample
	samples []datastore.Sample
	done    chan struct{}
}

func newFakeSink() *fakeSink {
	s := &fakeSink{ch: make(chan datastore.Sample, 100), done: make(chan struct{})}
	go func() {
		defer close(s.done)
		for smp := range s.ch {
			s.mu.Lock()
			s.samples = append(s.samples, smp)
			s.mu.Unlock()
		}
	}()
	return s
}

func (s *fakeSink) IngestChannel() chan<- datastore.Sample { return s.ch }

func (s *fakeSink) drain() []datastore.Sample {
	close(s.ch)
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]datastore.Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

func setRollupConfig(t *testing.T) func() {
	t.Helper()
	saved := config.G

	def, err := config.NewRollupDef(`^servers\.`, []config.Tier{
		{Rollup: 60, Period: 1440, Table: "metric", TTL: 86400},
		{Rollup: 300, Period: 288, Table: "metric_5m", TTL: 604800},
	})
	if err != nil {
		t.Fatalf("NewRollupDef: %v", err)
	}

	config.G.Rollup = map[string]config.RollupDef{`^servers\.`: def}
	config.G.RollupPriority = []string{`^servers\.`}

	return func() { config.G = saved }
}

func TestListenerFansOutOneSamplePerTier(t *testing.T) {
	defer setRollupConfig(t)()

	sink := newFakeSink()
	l := New(sink, nil, nil)

	l.ingestLine("servers.web01.cpu 42.5 125")

	samples := sink.drain()
	if len(samples) != 2 {
		t.Fatalf("expected one sample per configured tier, got %d: %+v", len(samples), samples)
	}

	byRollup := make(map[int]datastore.Sample, len(samples))
	for _, s := range samples {
		byRollup[s.Rollup] = s
	}

	fine, ok := byRollup[60]
	if !ok {
		t.Fatalf("missing 60s tier sample")
	}
	if fine.Time != 120 || fine.Table != "metric" || fine.Metric != 42.5 {
		t.Fatalf("unexpected 60s tier sample: %+v", fine)
	}

	coarse, ok := byRollup[300]
	if !ok {
		t.Fatalf("missing 300s tier sample")
	}
	if coarse.Time != 0 || coarse.Table != "metric_5m" {
		t.Fatalf("unexpected 300s tier sample: %+v", coarse)
	}
}

func TestListenerIngestLineMalformed(t *testing.T) {
	sink := newFakeSink()
	l := New(sink, nil, nil)

	l.ingestLine("not.enough.fields")
	l.ingestLine("too many fields here indeed")

	if got := sink.drain(); len(got) != 0 {
		t.Fatalf("expected no samples from malformed lines, got %+v", got)
	}
}

type recordingSeen struct {
	mu      sync.Mutex
	records []string
}

func (r *recordingSeen) Record(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, path)
	return nil
}

func TestListenerRecordsEachPathOnce(t *testing.T) {
	defer setRollupConfig(t)()

	sink := newFakeSink()
	seen := &recordingSeen{}
	l := New(sink, seen, nil)

	l.ingestLine("servers.web01.cpu 1 60")
	l.ingestLine("servers.web01.cpu 2 120")
	sink.drain()

	seen.mu.Lock()
	defer seen.mu.Unlock()
	if len(seen.records) != 1 {
		t.Fatalf("expected exactly one Record call for a repeated path, got %v", seen.records)
	}
}
