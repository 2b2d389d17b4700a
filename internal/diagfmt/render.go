package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"drift/internal/diag"
	"drift/internal/source"
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
	MaxWidth  int // 0 = unlimited
}

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan, color.Bold)
	posColor  = color.New(color.Bold)
	caretErr  = color.New(color.FgRed)
	caretNote = color.New(color.FgBlue)
)

// Pretty renders every diagnostic in the bag in a human-readable form:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with a caret underline when the span's
// file is present in fs, then notes in the same layout. Call bag.Sort()
// first for stable output.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		renderHeader(w, fs, d.Primary, d.Severity, d.Code, d.Message, opts)
		renderContext(w, fs, d.Primary, caretErr, opts)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			renderHeader(w, fs, n.Span, diag.SevInfo, d.Code, n.Msg, opts)
			renderContext(w, fs, n.Span, caretNote, opts)
		}
	}
}

func renderHeader(w io.Writer, fs *source.FileSet, span source.Span, sev diag.Severity, code diag.Code, msg string, opts PrettyOpts) {
	pos := position(fs, span)
	sevText := severityText(sev, opts.Color)
	if opts.Color {
		pos = posColor.Sprint(pos)
	}
	if opts.MaxWidth > 0 && runewidth.StringWidth(msg) > opts.MaxWidth {
		msg = runewidth.Truncate(msg, opts.MaxWidth-3, "...")
	}
	fmt.Fprintf(w, "%s: %s %s: %s\n", pos, sevText, code, msg)
}

// renderContext prints the offending source line with a caret marker.
func renderContext(w io.Writer, fs *source.FileSet, span source.Span, caret *color.Color, opts PrettyOpts) {
	if fs == nil || span.Empty() {
		return
	}
	file := fs.Get(span.File)
	if file == nil {
		return
	}
	start, end := fs.Resolve(span)
	line := file.Line(start.Line)
	if line == "" {
		return
	}
	fmt.Fprintf(w, "  %s\n", line)

	prefix := runewidth.StringWidth(line[:min(int(start.Col-1), len(line))])
	width := 1
	if end.Line == start.Line && end.Col > start.Col {
		width = int(end.Col - start.Col)
	}
	marker := "^" + strings.Repeat("~", width-1)
	if opts.Color {
		marker = caret.Sprint(marker)
	}
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", prefix), marker)
}

func position(fs *source.FileSet, span source.Span) string {
	if fs == nil {
		return span.String()
	}
	file := fs.Get(span.File)
	if file == nil {
		return span.String()
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", file.Path, start.Line, start.Col)
}

func severityText(sev diag.Severity, colored bool) string {
	text := sev.String()
	if !colored {
		return text
	}
	switch sev {
	case diag.SevError:
		return errColor.Sprint(text)
	case diag.SevWarning:
		return warnColor.Sprint(text)
	default:
		return infoColor.Sprint(text)
	}
}
