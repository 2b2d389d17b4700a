package sema

import (
	"fmt"

	"drift/internal/hir"
	"drift/internal/infer"
	"drift/internal/region"
	"drift/internal/source"
	"drift/internal/trace"
	"drift/internal/types"
)

// Checker is one type-checking session over a single body. It borrows
// read access to the result tables and the region map and owns the
// inference context the session accumulates obligations into.
type Checker struct {
	Tables  *hir.Tables
	Infer   *infer.Context
	Regions *region.Map
	Tracer  trace.Tracer
}

// NewChecker assembles a session. A nil tracer is replaced by the nop
// tracer so callers can leave tracing unconfigured.
func NewChecker(tables *hir.Tables, ictx *infer.Context, regions *region.Map, tracer trace.Tracer) *Checker {
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Checker{
		Tables:  tables,
		Infer:   ictx,
		Regions: regions,
		Tracer:  tracer,
	}
}

// InternalError reports a consistency violation inside the checker
// itself. It is raised via panic and never surfaces as a user
// diagnostic.
type InternalError struct {
	Op       string
	Detail   string
	BodySpan source.Span
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error in %s: %s (body %s)", e.Op, e.Detail, e.BodySpan)
}

// typeLabel renders a type for trace detail and internal errors.
func (c *Checker) typeLabel(id types.TypeID) string {
	return c.Infer.Types().Label(id)
}
