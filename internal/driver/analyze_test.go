package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"drift/internal/diag"
	"drift/internal/hir"
	"drift/internal/source"
	"drift/internal/trace"
	"drift/internal/types"
)

func sp(start, end uint32) source.Span {
	return source.Span{File: 1, Start: start, End: end}
}

// writeSampleArtifact encodes an async body with one await, one binding
// live across it, and fully populated tables.
func writeSampleArtifact(t *testing.T, dir, name string) string {
	t.Helper()
	b := hir.NewBuilder()
	in := types.NewInterner()
	tables := hir.NewTables()

	pat, local := b.NewBinding("a", sp(14, 15))
	init := b.NewLiteral(hir.LiteralString, `"x"`, sp(18, 21))
	taskLit := b.NewLiteral(hir.LiteralInt, "1", sp(30, 31))
	await := b.NewAwait(taskLit, sp(30, 38))
	ref := b.NewVarRef("a", local, sp(44, 45))

	body := &hir.Body{
		Name: "fetch",
		Block: &hir.Block{
			Stmts: []hir.Stmt{
				hir.Let(pat, init, sp(10, 22)),
				hir.ExprStmt(await),
				hir.ExprStmt(ref),
			},
			Span: sp(8, 50),
		},
		Flags: hir.BodySuspendable,
		Span:  sp(0, 50),
	}

	bt := in.Builtins()
	task := in.Intern(types.MakeTask(bt.Int))
	tables.SetPatType(local, bt.String)
	tables.SetExprType(init.ID, bt.String)
	tables.SetExprType(taskLit.ID, task)
	tables.SetExprType(await.ID, bt.Int)
	tables.SetExprType(ref.ID, bt.String)

	if !hir.Validate(body, tables, diag.NopReporter{}) {
		t.Fatalf("sample body does not validate")
	}
	var buf bytes.Buffer
	if err := hir.EncodeBody(&buf, body, tables, in); err != nil {
		t.Fatalf("encode artifact: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func TestAnalyzeAllComputesInterior(t *testing.T) {
	dir := t.TempDir()
	path := writeSampleArtifact(t, dir, "fetch.drift")

	results, err := AnalyzeAll(context.Background(), []string{path}, Options{Jobs: 2})
	if err != nil {
		t.Fatalf("AnalyzeAll: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	res := results[0]
	if res.Err != nil {
		t.Fatalf("result error: %v", res.Err)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected validation errors: %v", res.Bag.Items())
	}
	if res.Body != "fetch" {
		t.Fatalf("body name = %q, want %q", res.Body, "fetch")
	}
	if res.LiveCount == 0 || res.Composite == "" {
		t.Fatalf("no interior computed: %+v", res)
	}
	found := false
	for _, el := range res.Elems {
		if el == "string" {
			found = true
		}
	}
	if !found {
		t.Fatalf("binding type missing from composite %v", res.Elems)
	}
}

func TestAnalyzeAllReportsBadArtifact(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.drift")
	if err := os.WriteFile(bad, []byte("not an artifact"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	results, err := AnalyzeAll(context.Background(), []string{bad}, Options{})
	if err != nil {
		t.Fatalf("AnalyzeAll: %v", err)
	}
	if results[0].Err == nil {
		t.Fatalf("corrupt artifact produced no error")
	}
	if !results[0].Bag.HasErrors() {
		t.Fatalf("decode failure left the diagnostic bag empty")
	}
	if code := results[0].Bag.Items()[0].Code; code != diag.ArtTruncated {
		t.Fatalf("diagnostic code = %v, want %v", code, diag.ArtTruncated)
	}
}

func TestDumpRingWritesBufferedEvents(t *testing.T) {
	ring := trace.NewRingTracer(16, trace.LevelPhase)
	span := trace.Begin(ring, trace.ScopeDriver, "analyze_all", 0)
	span.End("")

	var buf bytes.Buffer
	dumpRing(ring, &buf)
	out := buf.String()
	if !strings.Contains(out, "=== trace ring dump ===") || !strings.Contains(out, "analyze_all") {
		t.Fatalf("dump missing buffered events:\n%s", out)
	}

	// A tracer without a ring has nothing to dump.
	buf.Reset()
	dumpRing(trace.Nop, &buf)
	if buf.Len() != 0 {
		t.Fatalf("nop tracer produced dump output: %q", buf.String())
	}
}

func TestRingOfUnwrapsMultiTracer(t *testing.T) {
	ring := trace.NewRingTracer(16, trace.LevelPhase)
	multi := trace.NewMultiTracer(trace.LevelPhase, trace.Nop, ring)
	if trace.RingOf(multi) != ring {
		t.Fatalf("ring not found inside multi tracer")
	}
	if trace.RingOf(trace.Nop) != nil {
		t.Fatalf("nop tracer claims to hold a ring")
	}
}

func TestAnalyzeAllUsesDiskCache(t *testing.T) {
	dir := t.TempDir()
	path := writeSampleArtifact(t, dir, "fetch.drift")
	cache, err := OpenDiskCacheAt(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	opts := Options{Cache: cache}
	first, err := AnalyzeAll(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first[0].Cached {
		t.Fatalf("first run unexpectedly served from cache")
	}
	second, err := AnalyzeAll(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second[0].Cached {
		t.Fatalf("second run did not hit the cache")
	}
	if second[0].Composite != first[0].Composite {
		t.Fatalf("cached composite %q != computed %q", second[0].Composite, first[0].Composite)
	}
}

func TestListArtifactsWalksDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	a := writeSampleArtifact(t, dir, "a.drift")
	b := writeSampleArtifact(t, sub, "b.drift")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	files, err := ListArtifacts([]string{dir})
	if err != nil {
		t.Fatalf("ListArtifacts: %v", err)
	}
	if len(files) != 2 || files[0] != a || files[1] != b {
		t.Fatalf("files = %v, want [%s %s]", files, a, b)
	}
}

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Analyze.MaxDiagnostics != 100 || cfg.Analyze.Color != "auto" {
		t.Fatalf("unexpected defaults: %+v", cfg.Analyze)
	}
}

func TestLoadConfigReadsManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := []byte("[analyze]\njobs = 4\ncolor = \"never\"\n\n[trace]\nlevel = \"phase\"\n")
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), manifest, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Analyze.Jobs != 4 || cfg.Analyze.Color != "never" || cfg.Trace.Level != "phase" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
