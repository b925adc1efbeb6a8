package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"moltree/internal/diag"
	"moltree/internal/source"
)

type palette struct {
	err, warn, info, note, fix, gutter, caret, path, add, del *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		fix:    color.New(color.FgGreen, color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		path:   color.New(color.Bold),
		add:    color.New(color.FgGreen),
		del:    color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.fix, p.gutter, p.caret, p.path, p.add, p.del} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes и Fixes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, &d, fs, opts, pal)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	file := fs.Get(d.Primary.File)
	if file == nil {
		fmt.Fprintf(w, "%s %s: %s\n", pal.severity(d.Severity).Sprint(d.Severity), d.Code.ID(), d.Message)
		return
	}
	start, end := fs.Resolve(d.Primary)
	fmt.Fprintf(w, "%s: %s %s\n",
		pal.path.Sprintf("%s:%d:%d", formatPath(fs, d.Primary.File, opts.PathMode), start.Line, start.Col),
		pal.severity(d.Severity).Sprintf("%s %s", d.Severity, d.Code.ID()),
		d.Message,
	)

	// тайминги не привязаны к тексту
	if d.Code != diag.ObsTimings {
		writeSnippet(w, file, start, end, opts, pal)
	}

	if opts.ShowNotes || d.Code == diag.ObsTimings {
		for _, note := range d.Notes {
			writeNote(w, note, fs, opts, pal)
		}
	}

	if opts.ShowFixes {
		for i, fix := range d.Fixes {
			fmt.Fprintf(w, "  %s %s\n", pal.fix.Sprintf("fix #%d:", i+1), fix.Title)
			for _, edit := range fix.Edits {
				pos, _ := fs.Resolve(edit.Span)
				fmt.Fprintf(w, "    at %d:%d apply=%q\n", pos.Line, pos.Col, edit.NewText)
				if !opts.ShowPreview {
					continue
				}
				preview, err := buildFixEditPreview(fs, edit)
				if err != nil {
					continue
				}
				fmt.Fprintln(w, "    preview:")
				for _, line := range preview.before {
					fmt.Fprintf(w, "      %s\n", pal.del.Sprint("- "+clip(line, opts.Width)))
				}
				for _, line := range preview.after {
					fmt.Fprintf(w, "      %s\n", pal.add.Sprint("+ "+clip(line, opts.Width)))
				}
			}
		}
	}
}

func writeNote(w io.Writer, note diag.Note, fs *source.FileSet, opts PrettyOpts, pal palette) {
	if fs.Get(note.Span.File) == nil {
		fmt.Fprintf(w, "  %s %s\n", pal.note.Sprint("note:"), note.Msg)
		return
	}
	pos, _ := fs.Resolve(note.Span)
	fmt.Fprintf(w, "  %s %s:%d:%d: %s\n",
		pal.note.Sprint("note:"),
		formatPath(fs, note.Span.File, opts.PathMode), pos.Line, pos.Col,
		note.Msg,
	)
}

// writeSnippet печатает строку с ошибкой, контекст вокруг и подчёркивание.
func writeSnippet(w io.Writer, file *source.File, start, end source.LineCol, opts PrettyOpts, pal palette) {
	ctx := uint32(max(opts.Context, 0))
	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := start.Line + ctx
	if lines := uint32(len(file.LineIdx)) + 1; last > lines {
		last = lines
	}
	gutterWidth := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		text := file.GetLine(ln)
		if ln != start.Line && strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", gutterWidth, ln), clip(text, opts.Width))
		if ln != start.Line {
			continue
		}
		pad, width := caretLayout(text, start, end)
		marks := "^" + strings.Repeat("~", max(width-1, 0))
		fmt.Fprintf(w, "%s %s%s\n", pal.gutter.Sprintf("%*s |", gutterWidth, ""), pad, pal.caret.Sprint(marks))
	}
}

// caretLayout возвращает отступ до начала span (табы сохраняются) и ширину
// подчёркивания в колонках терминала. Многострочный span подчёркивается до
// конца первой строки.
func caretLayout(line string, start, end source.LineCol) (pad string, width int) {
	startCol := min(int(start.Col)-1, len(line))
	endCol := len(line)
	if end.Line == start.Line {
		endCol = min(max(int(end.Col)-1, startCol), len(line))
	}

	var b strings.Builder
	for _, r := range line[:startCol] {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String(), max(runewidth.StringWidth(line[startCol:endCol]), 1)
}

func clip(s string, width uint8) string {
	if width == 0 || runewidth.StringWidth(s) <= int(width) {
		return s
	}
	return runewidth.Truncate(s, int(width), "…")
}
