// Package report renders run progress and summaries, either as colored text
// for humans or as JSON for tooling.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"ansible-indent/internal/playbook"
	"ansible-indent/internal/runner"
)

// Options controls text rendering.
type Options struct {
	Mode  runner.Mode
	Color bool
	// Quiet skips the per-file block for files that needed no changes.
	Quiet bool
}

// Printer writes the text report incrementally so progress shows as files
// are processed.
type Printer struct {
	w     io.Writer
	opts  Options
	ok    *color.Color
	warn  *color.Color
	bad   *color.Color
	faint *color.Color
	bold  *color.Color
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer, opts Options) *Printer {
	p := &Printer{
		w:     w,
		opts:  opts,
		ok:    color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		bad:   color.New(color.FgRed, color.Bold),
		faint: color.New(color.Faint),
		bold:  color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.ok, p.warn, p.bad, p.faint, p.bold} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Header prints the banner and the discovered file count.
func (p *Printer) Header(found int) {
	title := "Fixing Ansible YAML indentation"
	if p.opts.Mode != runner.ModeWrite {
		title = "Checking Ansible YAML indentation"
	}
	p.bold.Fprintln(p.w, title)
	fmt.Fprintln(p.w, strings.Repeat("=", 40))
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "Found %d YAML files\n\n", found)
}

// File prints the block for one processed file.
func (p *Printer) File(res runner.FileResult) {
	if p.opts.Quiet && res.Err == nil && !res.Changed {
		return
	}
	fmt.Fprintf(p.w, "Processing: %s\n", res.RelPath)
	switch {
	case res.Err != nil:
		p.bad.Fprintf(p.w, "  error: %v\n", res.Err)
	case res.Changed && p.opts.Mode == runner.ModeWrite:
		p.ok.Fprintf(p.w, "  fixed (%s)\n", lineCount(len(res.Edits)))
	case res.Changed:
		p.warn.Fprintf(p.w, "  would fix (%s)\n", lineCount(len(res.Edits)))
		switch {
		case res.DiffOmitted:
			p.faint.Fprintln(p.w, "  diff omitted: file exceeds --max-diff-bytes")
		case res.Diff != "":
			p.printDiff(res.Diff)
		}
	default:
		p.faint.Fprintln(p.w, "  no changes needed")
	}
}

// Footer prints the final counts.
func (p *Printer) Footer(sum runner.Summary) {
	fmt.Fprintln(p.w)
	if p.opts.Mode == runner.ModeWrite {
		p.ok.Fprintf(p.w, "Fixed %d files\n", sum.Changed)
	} else {
		p.warn.Fprintf(p.w, "%d files need fixing\n", sum.Changed)
	}
	if sum.Failed > 0 {
		p.bad.Fprintf(p.w, "%d files could not be processed\n", sum.Failed)
	}
	if sum.Changed > 0 && p.opts.Mode == runner.ModeWrite {
		fmt.Fprintln(p.w)
		fmt.Fprintln(p.w, "Run ansible-lint again to verify fixes")
	}
}

// Text renders a finished summary in one go.
func (p *Printer) Text(sum runner.Summary) {
	p.Header(len(sum.Files))
	for _, f := range sum.Files {
		p.File(f)
	}
	p.Footer(sum)
}

func (p *Printer) printDiff(patch string) {
	for _, line := range strings.SplitAfter(patch, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			p.bold.Fprint(p.w, line)
		case strings.HasPrefix(line, "+"):
			p.ok.Fprint(p.w, line)
		case strings.HasPrefix(line, "-"):
			p.bad.Fprint(p.w, line)
		default:
			fmt.Fprint(p.w, line)
		}
	}
}

func lineCount(n int) string {
	if n == 1 {
		return "1 line"
	}
	return fmt.Sprintf("%d lines", n)
}

type jsonResult struct {
	Path        string          `json:"path"`
	Changed     bool            `json:"changed"`
	Edits       []playbook.Edit `json:"edits,omitempty"`
	Diff        string          `json:"diff,omitempty"`
	DiffOmitted bool            `json:"diff_omitted,omitempty"`
	Error       string          `json:"error,omitempty"`
}

type jsonSummary struct {
	Mode    string       `json:"mode"`
	Files   []jsonResult `json:"files"`
	Changed int          `json:"changed"`
	Failed  int          `json:"failed"`
}

// JSON writes the summary as an indented JSON document.
func JSON(w io.Writer, sum runner.Summary) error {
	payload := jsonSummary{
		Mode:    sum.Mode.String(),
		Files:   make([]jsonResult, 0, len(sum.Files)),
		Changed: sum.Changed,
		Failed:  sum.Failed,
	}
	for _, f := range sum.Files {
		jr := jsonResult{
			Path:        f.RelPath,
			Changed:     f.Changed,
			Edits:       f.Edits,
			Diff:        f.Diff,
			DiffOmitted: f.DiffOmitted,
		}
		if f.Err != nil {
			jr.Error = f.Err.Error()
		}
		payload.Files = append(payload.Files, jr)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
