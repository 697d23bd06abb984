package datastore

import (
	"sync"
	"time"
)

const (
	defaultChanSize = 10000
	defaultBatch    = 500
	batchTimeout    = 5 * time.Second
)

// batcher buffers incoming samples and emits a batch whenever either the
// size or the wait threshold fires. Order within a batch is arrival
// order. When in is full, producers block — this is the only flow
// control between the ingest channel and the database.
type batcher struct {
	in       chan Sample
	out      chan []Sample
	maxBatch int
	maxWait  time.Duration

	closeOnce sync.Once
}

func newBatcher(chanSize, maxBatch int) *batcher {
	if chanSize <= 0 {
		chanSize = defaultChanSize
	}
	if maxBatch <= 0 {
		maxBatch = defaultBatch
	}
	return &batcher{
		in:       make(chan Sample, chanSize),
		out:      make(chan []Sample),
		maxBatch: maxBatch,
		maxWait:  batchTimeout,
	}
}

// close shuts down the producer side. Safe to call more than once.
func (b *batcher) close() {
	b.closeOnce.Do(func() { close(b.in) })
}

// run drains in, emitting batches on out, until in is closed and
// drained. It returns (and closes out) once the producer side is gone.
func (b *batcher) run() {
	defer close(b.out)

	batch := make([]Sample, 0, b.maxBatch)
	timer := time.NewTimer(b.maxWait)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		b.out <- batch
		batch = make([]Sample, 0, b.maxBatch)
	}

	for {
		select {
		case s, ok := <-b.in:
			if !ok {
				flush()
				return
			}
			batch = append(batch, s)
			if len(batch) >= b.maxBatch {
				flush()
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(b.maxWait)
			}
		case <-timer.C:
			flush()
			timer.Reset(b.maxWait)
		}
	}
}
