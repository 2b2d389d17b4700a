package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"drift/internal/diag"
	"drift/internal/hir"
	"drift/internal/infer"
	"drift/internal/region"
	"drift/internal/sema"
	"drift/internal/source"
	"drift/internal/trace"
)

// Result is the outcome of analyzing one body artifact.
type Result struct {
	Path      string           // artifact file path
	Body      string           // body name from the artifact
	Bag       *diag.Bag        // validation diagnostics
	Composite string           // rendered interior composite, "" when skipped
	Elems     []string         // rendered composite elements, canonical order
	LiveCount int              // number of distinct live-across-suspension types
	Pending   int              // deferred obligations registered by unification
	Cached    bool             // served from the disk cache
	Err       error            // decode/read failure; analysis did not run
}

// Options configure one AnalyzeAll invocation.
type Options struct {
	Jobs           int
	MaxDiagnostics int
	Tracer         trace.Tracer
	Cache          *DiskCache // nil disables caching
}

// AnalyzeAll decodes, validates, and analyzes a batch of body artifacts
// in parallel. Every body gets its own session: private inference
// context, region map, and liveness cache, so runs never contaminate
// each other. Result order matches the input order.
func AnalyzeAll(ctx context.Context, paths []string, opts Options) ([]Result, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 100
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.FromContext(ctx)
	}

	var root *trace.Span
	if tracer.Enabled() {
		root = trace.Begin(tracer, trace.ScopeDriver, "analyze_all", 0)
		root.WithExtra("files", fmt.Sprintf("%d", len(paths)))
		defer root.End("")
	}

	// Slots are per-goroutine unique, no mutex needed.
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(paths), 1)))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = analyzeOne(path, opts.MaxDiagnostics, tracer, opts.Cache, root.ID())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func analyzeOne(path string, maxDiagnostics int, tracer trace.Tracer, cache *DiskCache, parent uint64) Result {
	res := Result{Path: path, Bag: diag.NewBag(maxDiagnostics)}

	// A panic here dies on the worker goroutine, where no command-level
	// handler runs. Dump the ring before it takes the process down.
	defer func() {
		if r := recover(); r != nil {
			dumpRing(tracer, os.Stderr)
			panic(r)
		}
	}()

	var span *trace.Span
	if tracer.Enabled() {
		span = trace.Begin(tracer, trace.ScopeModule, "analyze_body", parent)
		span.WithExtra("path", path)
		defer span.End("")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("read artifact: %w", err)
		return res
	}

	if cache != nil {
		if payload, ok := cache.Get(DigestOf(raw)); ok {
			res.Body = payload.BodyName
			res.Composite = payload.Composite
			res.Elems = payload.Elems
			res.LiveCount = len(payload.Elems)
			res.Pending = payload.Pending
			res.Cached = true
			return res
		}
	}

	body, tables, interner, err := hir.DecodeBody(bytes.NewReader(raw))
	if err != nil {
		res.Err = fmt.Errorf("decode artifact: %w", err)
		code := diag.ArtInfo
		var derr *hir.DecodeError
		if errors.As(err, &derr) {
			code = derr.Code
		}
		diag.ReportError(diag.BagReporter{Bag: res.Bag}, code, source.Span{}, err.Error())
		return res
	}
	res.Body = body.Name

	if !hir.Validate(body, tables, diag.BagReporter{Bag: res.Bag}) {
		return res
	}

	ictx := infer.NewContext(interner)
	chk := sema.NewChecker(tables, ictx, region.Build(body), tracer)
	witness := ictx.FreshVar()
	chk.ResolveInterior(body, witness)

	composite := ictx.Resolve(witness)
	res.Composite = interner.Label(composite)
	res.Pending = len(ictx.Pending())
	if elems, ok := interner.TupleElems(composite); ok {
		res.LiveCount = len(elems)
		res.Elems = make([]string, len(elems))
		for j, el := range elems {
			res.Elems[j] = interner.Label(el)
		}
	}

	if cache != nil {
		_ = cache.Put(DigestOf(raw), &Payload{
			Schema:    payloadSchema,
			BodyName:  res.Body,
			Composite: res.Composite,
			Elems:     res.Elems,
			Pending:   res.Pending,
		})
	}
	return res
}

// dumpRing writes buffered trace events to w so a fatal analysis abort
// leaves its trail behind.
func dumpRing(t trace.Tracer, w io.Writer) {
	ring := trace.RingOf(t)
	if ring == nil {
		return
	}
	fmt.Fprintln(w, "=== trace ring dump ===")
	if err := ring.Dump(w, trace.FormatText); err != nil {
		fmt.Fprintf(w, "trace: dump error: %v\n", err)
	}
}

// ListArtifacts expands a mix of files and directories into a sorted
// list of *.drift artifact paths.
func ListArtifacts(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".drift") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	// Deterministic processing order.
	sort.Strings(files)
	return files, nil
}
