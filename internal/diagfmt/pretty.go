package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"sdslc/internal/diag"
	"sdslc/internal/source"
)

const tabWidth = 4

type palette struct {
	sev    map[diag.Severity]*color.Color
	code   *color.Color
	gutter *color.Color
	caret  *color.Color
	note   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
		},
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		note:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.sev[diag.SevError], p.sev[diag.SevWarning], p.sev[diag.SevInfo], p.code, p.gutter, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for _, d := range bag.Items() {
		prettyOne(w, d, fs, opts, pal)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	sev := pal.sev[d.Severity]
	if sev == nil {
		sev = pal.code
	}
	loc, start, f := location(fs, d.Primary, opts.PathMode)
	if loc != "" {
		fmt.Fprintf(w, "%s: ", loc)
	}
	fmt.Fprintf(w, "%s %s: %s\n", sev.Sprint(d.Severity.String()), pal.code.Sprint(d.Code.ID()), d.Message)

	if f != nil && d.Code != diag.ObsTimings {
		snippet(w, fs, f, d.Primary, start, opts, pal)
	}

	if !opts.ShowNotes && d.Code != diag.ObsTimings {
		return
	}
	for _, n := range d.Notes {
		nloc, _, _ := location(fs, n.Span, opts.PathMode)
		if nloc == "" || d.Code == diag.ObsTimings {
			fmt.Fprintf(w, "  %s %s\n", pal.note.Sprint("note:"), n.Msg)
			continue
		}
		fmt.Fprintf(w, "  %s %s: %s\n", pal.note.Sprint("note:"), nloc, n.Msg)
	}
}

// snippet prints the primary line with context and a caret run under the
// span. Multi-line spans are underlined to the end of the first line.
func snippet(w io.Writer, fs *source.FileSet, f *source.File, span source.Span, start source.LineCol, opts PrettyOpts, pal palette) {
	if start.Line == 0 {
		return
	}
	_, end := fs.Resolve(span)
	ctx := uint32(max(opts.Context, 0))
	first := start.Line - min(ctx, start.Line-1)
	last := start.Line + ctx
	lines := uint32(len(f.LineIdx) + 1)
	last = min(last, lines)
	gutterWidth := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		text := expandTabs(f.GetLine(ln))
		if opts.Width > 0 {
			text = runewidth.Truncate(text, int(opts.Width), "…")
		}
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", gutterWidth, ln), text)
		if ln != start.Line {
			continue
		}
		raw := f.GetLine(ln)
		startCol := int(start.Col) - 1
		endCol := len(raw)
		if end.Line == start.Line {
			endCol = int(end.Col) - 1
		}
		startCol = min(max(startCol, 0), len(raw))
		endCol = min(max(endCol, startCol), len(raw))
		pad := runewidth.StringWidth(expandTabs(raw[:startCol]))
		width := max(runewidth.StringWidth(expandTabs(raw[startCol:endCol])), 1)
		marks := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(w, "%s %s%s\n", pal.gutter.Sprintf("%*s |", gutterWidth, ""), strings.Repeat(" ", pad), pal.caret.Sprint(marks))
	}
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var sb strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return sb.String()
}

// Summary renders "2 errors, 1 warning" for the items of bag; dropped
// diagnostics are mentioned when the bag overflowed.
func Summary(bag *diag.Bag) string {
	var errs, warns int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	parts := []string{plural(errs, "error"), plural(warns, "warning")}
	if n := bag.Dropped(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d more not shown", n))
	}
	return strings.Join(parts, ", ")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
