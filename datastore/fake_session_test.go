package datastore

import (
	"fmt"
	"sort"
	"sync"
)

// fakeSession is an in-memory dbSession standing in for Cassandra in
// tests: each (table, path, rollup, period, time) cell holds an
// append-only list, exactly like the real schema's list column.
type fakeSession struct {
	mu   sync.Mutex
	rows map[string]map[string][]float64 // table -> cellKey -> data

	rawCalls    int
	rollupCalls int

	writeRawErr    error
	writeRollupErr error
	fetchRangeErr  error
	fetchRollupErr error
}

func newFakeSession() *fakeSession {
	return &fakeSession{rows: make(map[string]map[string][]float64)}
}

func cellKey(path string, rollup, period int, t int64) string {
	return fmt.Sprintf("%s|%d|%d|%d", path, rollup, period, t)
}

func (f *fakeSession) table(name string) map[string][]float64 {
	t, ok := f.rows[name]
	if !ok {
		t = make(map[string][]float64)
		f.rows[name] = t
	}
	return t
}

func (f *fakeSession) writeRaw(table string, rows []insertRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rawCalls++
	if f.writeRawErr != nil {
		return f.writeRawErr
	}
	t := f.table(table)
	for _, r := range rows {
		k := cellKey(r.path, r.rollup, r.period, r.time)
		t[k] = append(t[k], r.metric)
	}
	return nil
}

func (f *fakeSession) writeRollup(rec insertRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rollupCalls++
	if f.writeRollupErr != nil {
		return f.writeRollupErr
	}
	t := f.table(rec.table)
	k := cellKey(rec.path, rec.rollup, rec.period, rec.time)
	t[k] = []float64{rec.metric}
	return nil
}

func (f *fakeSession) fetchRange(table string, paths []string, rollup, period int, from, to int64) ([]fetchRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchRangeErr != nil {
		return nil, f.fetchRangeErr
	}

	wanted := make(map[string]bool, len(paths))
	for _, p := range paths {
		wanted[p] = true
	}

	var out []fetchRow
	for path := range wanted {
		for tme := from; tme <= to; tme += int64(rollup) {
			k := cellKey(path, rollup, period, tme)
			if data, ok := f.table(table)[k]; ok {
				cp := make([]float64, len(data))
				copy(cp, data)
				out = append(out, fetchRow{path: path, data: cp, time: tme})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].path != out[j].path {
			return out[i].path < out[j].path
		}
		return out[i].time < out[j].time
	})
	return out, nil
}

func (f *fakeSession) fetchRollupSource(table string, path string, rollup, period int, from, to int64) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchRollupErr != nil {
		return nil, f.fetchRollupErr
	}

	var all []float64
	for tme := from; tme < to; tme++ {
		k := cellKey(path, rollup, period, tme)
		if data, ok := f.table(table)[k]; ok {
			all = append(all, data...)
		}
	}
	return all, nil
}
