package config

import "testing"

func TestMatchExpressionPrefersMostSpecific(t *testing.T) {
	saved := G
	defer func() { G = saved }()

	servers, err := NewRollupDef(`^servers\.`, nil)
	if err != nil {
		t.Fatalf("NewRollupDef: %v", err)
	}
	catchall, err := NewRollupDef(ROLLUP_CATCHALL, nil)
	if err != nil {
		t.Fatalf("NewRollupDef: %v", err)
	}

	G.Rollup = map[string]RollupDef{
		`^servers\.`:    servers,
		ROLLUP_CATCHALL: catchall,
	}
	G.RollupPriority = []string{`^servers\.`, ROLLUP_CATCHALL}

	if got := MatchExpression("servers.web01.cpu"); got != `^servers\.` {
		t.Fatalf("expected the specific expression to win, got %q", got)
	}
	if got := MatchExpression("apps.checkout.latency"); got != ROLLUP_CATCHALL {
		t.Fatalf("expected the catchall to match, got %q", got)
	}
}

func TestMatchExpressionNoMatchIsEmpty(t *testing.T) {
	saved := G
	defer func() { G = saved }()

	G.Rollup = map[string]RollupDef{}
	G.RollupPriority = nil

	if got := MatchExpression("anything"); got != "" {
		t.Fatalf("expected no match, got %q", got)
	}
}

func TestNewRollupDefRejectsBadExpression(t *testing.T) {
	if _, err := NewRollupDef("(unclosed", nil); err == nil {
		t.Fatalf("expected an error for an invalid regular expression")
	}
}
