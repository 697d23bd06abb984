package datastore

import "testing"

func TestRawInsertTemplate(t *testing.T) {
	got := rawInsertTemplate("metric")
	want := "UPDATE metric USING TTL ? SET data = data + ? WHERE tenant='' AND rollup=? AND period=? AND path=? AND time=?"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRollupInsertTemplate(t *testing.T) {
	got := rollupInsertTemplate("metric_5m")
	want := "UPDATE metric_5m USING TTL ? SET data = ? WHERE tenant='' AND rollup=? AND period=? AND path=? AND time=?"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRangeFetchTemplate(t *testing.T) {
	got := rangeFetchTemplate("metric")
	want := "SELECT path, data, time FROM metric WHERE path IN ? AND tenant='' AND rollup=? AND period=? AND time>=? AND time<=? ORDER BY time ASC"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRollupFetchTemplate(t *testing.T) {
	got := rollupFetchTemplate("metric")
	want := "SELECT data FROM metric WHERE path=? AND tenant='' AND rollup=? AND period=? AND time>=? AND time<? ORDER BY time ASC"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestUseKeyspaceTemplate(t *testing.T) {
	if got := useKeyspaceTemplate("metrics"); got != "USE metrics" {
		t.Fatalf("got %q", got)
	}
}
