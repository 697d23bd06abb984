package datastore

// FetchResult is the shape returned to a fetch caller: a grid-aligned
// range, its step, and one reduced-or-null series per path that
// returned at least one row.
type FetchResult struct {
	From   int64                    `json:"from"`
	To     int64                    `json:"to"`
	Step   int                      `json:"step"`
	Series map[string][]interface{} `json:"series"`
}

// floorDiv is integer division rounded toward negative infinity, unlike
// Go's native truncating "/". Sample times are unix seconds and always
// non-negative in practice, but the grid math stays correct either way.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Fetch runs a contiguous-range read at a fixed resolution and
// densifies it over the tier's time grid, applying method per bucket.
// The tenant argument is accepted for schema compatibility but is
// always the empty string in this core.
func (s *Store) Fetch(method Method, table string, paths []string, tenant string, rollup, period int, from, to int64) (FetchResult, error) {
	empty := FetchResult{From: from, To: to, Step: rollup, Series: map[string][]interface{}{}}

	if len(paths) == 0 {
		return empty, nil
	}

	rows, err := s.db.fetchRange(table, paths, rollup, period, from, to)
	if err != nil {
		return FetchResult{}, err
	}
	if len(rows) == 0 {
		return empty, nil
	}

	minPoint := floorDiv(from, int64(rollup)) * int64(rollup)
	maxPoint := floorDiv(to, int64(rollup)) * int64(rollup)

	byPath := make(map[string][]fetchRow)
	for _, r := range rows {
		byPath[r.path] = append(byPath[r.path], r)
	}

	series := make(map[string][]interface{}, len(byPath))
	for path, prows := range byPath {
		byTime := make(map[int64][]float64, len(prows))
		for _, r := range prows {
			byTime[r.time] = r.data
		}

		out := make([]interface{}, 0, (maxPoint-minPoint)/int64(rollup)+1)
		for t := minPoint; t <= maxPoint; t += int64(rollup) {
			reduced, ok := aggregate(method, byTime[t])
			if !ok {
				out = append(out, nil)
				continue
			}
			out = append(out, reduced)
		}
		series[path] = out
	}

	return FetchResult{From: minPoint, To: maxPoint, Step: rollup, Series: series}, nil
}
