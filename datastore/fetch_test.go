package datastore

import "testing"

func TestFloorDiv(t *testing.T) {
	cases := []struct{ a, b, want int64 }{
		{600, 60, 10},
		{601, 60, 10},
		{-1, 60, -1},
		{-60, 60, -1},
	}
	for _, c := range cases {
		if got := floorDiv(c.a, c.b); got != c.want {
			t.Fatalf("floorDiv(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestFetchSeriesLengthMatchesGrid(t *testing.T) {
	s, _ := newTestStore()
	s.processBatch([]Sample{
		{Path: "a.b", Time: 60, Metric: 1, Rollup: 60, Period: 1440, TTL: 86400, Table: "metric"},
	})
	s.wg.Wait()

	res, err := s.Fetch(MethodMean, "metric", []string{"a.b"}, "", 60, 1440, 0, 605)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	wantLen := int((res.To-res.From)/int64(res.Step)) + 1
	if len(res.Series["a.b"]) != wantLen {
		t.Fatalf("expected %d entries, got %d", wantLen, len(res.Series["a.b"]))
	}
}

func TestFetchEmptyResultWhenNoRows(t *testing.T) {
	s, _ := newTestStore()

	res, err := s.Fetch(MethodMean, "metric", []string{"a.b"}, "", 60, 1440, 0, 600)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.From != 0 || res.To != 600 || len(res.Series) != 0 {
		t.Fatalf("unexpected result for no rows: %+v", res)
	}
}

func TestFetchRawMethodReturnsLists(t *testing.T) {
	s, _ := newTestStore()
	s.processBatch([]Sample{
		{Path: "a.b", Time: 60, Metric: 1, Rollup: 60, Period: 1440, TTL: 86400, Table: "metric"},
		{Path: "a.b", Time: 60, Metric: 2, Rollup: 60, Period: 1440, TTL: 86400, Table: "metric"},
	})
	s.wg.Wait()

	res, err := s.Fetch(MethodRaw, "metric", []string{"a.b"}, "", 60, 1440, 60, 60)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	got, ok := res.Series["a.b"][0].([]float64)
	if !ok || len(got) != 2 {
		t.Fatalf("expected raw list of 2 values, got %v", res.Series["a.b"][0])
	}
}

func TestFetchPropagatesDatabaseError(t *testing.T) {
	s, fs := newTestStore()
	fs.fetchRangeErr = errAlwaysFail{}

	_, err := s.Fetch(MethodMean, "metric", []string{"a.b"}, "", 60, 1440, 0, 600)
	if err == nil {
		t.Fatalf("expected database error to propagate")
	}
}
