package datastore

import (
	"math"
	"sort"
)

// tierGroup is one (table, rollup, period) partition of a batch, plus
// its normalized rows. Group index 0 (lowest rollup) is the finest tier.
type tierGroup struct {
	table  string
	rollup int
	period int
	rows   []insertRecord
}

// groupByTier partitions records by rollup and sorts the groups
// ascending. Within a rollup, a batch is expected to name exactly one
// table; if schema-inconsistent input names more than one, the group is
// normalized to the lexicographically first table and the rest are
// dropped with a warning, per the documented open question in spec §9.
func groupByTier(records []insertRecord, logger Logger) []tierGroup {
	byRollup := make(map[int][]insertRecord)
	var rollups []int
	for _, r := range records {
		if _, seen := byRollup[r.rollup]; !seen {
			rollups = append(rollups, r.rollup)
		}
		byRollup[r.rollup] = append(byRollup[r.rollup], r)
	}
	sort.Ints(rollups)

	groups := make([]tierGroup, 0, len(rollups))
	for _, ru := range rollups {
		rows := byRollup[ru]
		table := canonicalTable(rows, ru, logger)

		normalized := rows[:0]
		for _, r := range rows {
			if r.table == table {
				normalized = append(normalized, r)
			}
		}
		groups = append(groups, tierGroup{
			table:  table,
			rollup: ru,
			period: normalized[0].period,
			rows:   normalized,
		})
	}
	return groups
}

// canonicalTable picks the table a rollup group should be written under.
// Ties (and the inconsistent case) are broken by lexicographically
// smallest name, matching the "reject or normalize" guidance in spec §9
// rather than silently trusting map/slice iteration order.
func canonicalTable(rows []insertRecord, rollup int, logger Logger) string {
	seen := make(map[string]bool)
	for _, r := range rows {
		seen[r.table] = true
	}
	if len(seen) == 1 {
		return rows[0].table
	}

	names := make([]string, 0, len(seen))
	for t := range seen {
		names = append(names, t)
	}
	sort.Strings(names)

	if logger != nil {
		logger.LogWarn(
			"ingest: batch names %d distinct tables at rollup=%d (schema-inconsistent input); normalizing to %q",
			len(names), rollup, names[0])
	}
	return names[0]
}

func filterFinite(rows []insertRecord) []insertRecord {
	out := rows[:0]
	for _, r := range rows {
		if !math.IsNaN(r.metric) && !math.IsInf(r.metric, 0) {
			out = append(out, r)
		}
	}
	return out
}

// processBatch is the ingest worker's per-batch entry point. It never
// lets a panic escape: the worker must survive to process the next
// batch regardless of what this one does.
func (s *Store) processBatch(batch []Sample) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.LogError("ingest: recovered from panic processing batch of %d: %v", len(batch), r)
		}
	}()

	if len(batch) == 0 {
		return
	}

	records := make([]insertRecord, len(batch))
	for i, smp := range batch {
		records[i] = insertRecord{
			table:  smp.Table,
			rollup: smp.Rollup,
			period: smp.Period,
			ttl:    smp.TTL,
			path:   smp.Path,
			time:   smp.Time,
			metric: smp.Metric,
		}
	}

	groups := groupByTier(records, s.logger)
	if len(groups) == 0 {
		return
	}

	low := groups[0]
	s.writeFinestTier(low)

	for _, g := range groups[1:] {
		s.rollupTier(g, low)
	}
}

// writeFinestTier builds and fires the raw-insert batch for the finest
// tier. The write is fire-and-forget: the ingest worker does not wait
// for it before moving on to the rollup tiers or the next batch.
func (s *Store) writeFinestTier(low tierGroup) {
	rows := filterFinite(low.rows)
	if len(rows) == 0 {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.LogError("ingest: recovered from panic in raw write table=%s: %v", low.table, r)
			}
		}()

		if err := s.db.writeRaw(low.table, rows); err != nil {
			s.logger.LogError("ingest: raw write failed table=%s rows=%d: %v", low.table, len(rows), err)
			s.stats.Inc("ingest.write.raw.err", 1, 1.0)
		}
	}()
}

// rollupTier processes one coarser tier: for each distinct path in the
// group, skip if deduped, else mark rolled and kick off an asynchronous
// fetch-reduce-write. One path's failure never affects another's.
func (s *Store) rollupTier(g tierGroup, low tierGroup) {
	firstTimeByPath := make(map[string]int64, len(g.rows))
	ttlByPath := make(map[string]int, len(g.rows))
	var paths []string
	for _, r := range g.rows {
		if _, seen := firstTimeByPath[r.path]; !seen {
			firstTimeByPath[r.path] = r.time
			ttlByPath[r.path] = r.ttl
			paths = append(paths, r.path)
		}
	}
	sort.Strings(paths)

	for _, path := range paths {
		t := firstTimeByPath[path]
		if !s.dedup.shouldRoll(path, g.rollup, t) {
			continue
		}
		s.dedup.markRolled(path, g.rollup, t)

		rec := insertRecord{
			table:  g.table,
			rollup: g.rollup,
			period: g.period,
			ttl:    ttlByPath[path],
			path:   path,
			time:   t,
		}

		s.wg.Add(1)
		go s.computeAndWriteRollup(rec, low)
	}
}

// computeAndWriteRollup fetches the finest-tier window backing one
// rollup point, reduces it to a mean, and writes the result. An empty
// source window issues no write, but the dedup mark made by the caller
// already stands.
func (s *Store) computeAndWriteRollup(rec insertRecord, low tierGroup) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.LogError("ingest: recovered from panic computing rollup path=%s rollup=%d: %v", rec.path, rec.rollup, r)
		}
	}()

	from := rec.time - int64(rec.rollup)
	data, err := s.db.fetchRollupSource(low.table, rec.path, low.rollup, low.period, from, rec.time)
	if err != nil {
		s.logger.LogError("ingest: rollup source fetch failed path=%s table=%s: %v", rec.path, low.table, err)
		s.stats.Inc("ingest.read.rollup.err", 1, 1.0)
		return
	}

	v, ok := mean(data)
	if !ok {
		return
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	rec.metric = v

	if err := s.db.writeRollup(rec); err != nil {
		s.logger.LogError("ingest: rollup write failed path=%s table=%s: %v", rec.path, rec.table, err)
		s.stats.Inc("ingest.write.rollup.err", 1, 1.0)
	}
}
