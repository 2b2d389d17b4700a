package ui

import (
	"errors"
	"strings"
	"testing"

	"drift/internal/diag"
	"drift/internal/driver"
)

func TestRenderSummaryStatuses(t *testing.T) {
	bad := diag.NewBag(5)
	bad.Add(diag.Diagnostic{Severity: diag.SevError, Code: diag.HirMissingExprType, Message: "missing"})

	results := []driver.Result{
		{Path: "a.drift", Body: "fetch", Bag: diag.NewBag(5), LiveCount: 2, Composite: "(int, string)"},
		{Path: "b.drift", Body: "poll", Bag: bad},
		{Path: "c.drift", Bag: diag.NewBag(5), Err: errors.New("decode artifact: boom")},
		{Path: "d.drift", Body: "fetch", Bag: diag.NewBag(5), Cached: true, Composite: "()"},
	}

	out := RenderSummary(results, 80)
	for _, want := range []string{"ok", "invalid", "error", "cached", "(int, string)", "4 analyzed, 2 failed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestTruncateRespectsWidth(t *testing.T) {
	long := strings.Repeat("x", 50)
	got := truncate(long, 20)
	if len(got) > 20 {
		t.Fatalf("truncate returned %d chars, want <= 20", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncated value %q lacks ellipsis", got)
	}
}
