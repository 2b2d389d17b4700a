package source

import "testing"

func TestAddVirtualAssignsSequentialIDs(t *testing.T) {
	fs := NewFileSet()
	a := fs.AddVirtual("a.dr", []byte("let x = 1\n"))
	b := fs.AddVirtual("b.dr", []byte("let y = 2\n"))
	if a == b {
		t.Fatalf("expected distinct file IDs, got %d and %d", a, b)
	}
	if got := fs.Get(b); got == nil || got.Path != "b.dr" {
		t.Fatalf("unexpected file for id %d: %+v", b, got)
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t.dr", []byte("first\nsecond\nthird\n"))
	start, end := fs.Resolve(Span{File: id, Start: 6, End: 12})
	if start.Line != 2 || start.Col != 1 {
		t.Fatalf("start = %+v, want line 2 col 1", start)
	}
	if end.Line != 2 || end.Col != 7 {
		t.Fatalf("end = %+v, want line 2 col 7", end)
	}
	if line := fs.Get(id).Line(2); line != "second" {
		t.Fatalf("Line(2) = %q", line)
	}
}

func TestSpanCoverAndContains(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	cov := a.Cover(b)
	if cov.Start != 2 || cov.End != 8 {
		t.Fatalf("cover = %v", cov)
	}
	if !cov.Contains(a) || !cov.Contains(b) {
		t.Fatalf("cover should contain both inputs")
	}
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Fatalf("cross-file cover must be identity, got %v", got)
	}
}
