// Package runner folds the indentation fix over a fixed list of discovered
// files. Each file is read, fixed in memory and, when it changed and the mode
// allows, rewritten atomically before the next file is considered.
package runner

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"ansible-indent/internal/diff"
	"ansible-indent/internal/fsutil"
	"ansible-indent/internal/playbook"
	"ansible-indent/internal/walkwalk"
)

// Mode selects what happens to files that need fixing.
type Mode int

const (
	// ModeWrite rewrites changed files in place.
	ModeWrite Mode = iota
	// ModeCheck reports files that would change without writing.
	ModeCheck
	// ModeDiff is ModeCheck plus a unified diff per changed file.
	ModeDiff
)

func (m Mode) String() string {
	switch m {
	case ModeCheck:
		return "check"
	case ModeDiff:
		return "diff"
	default:
		return "write"
	}
}

// Options configures Run.
type Options struct {
	Mode   Mode
	Diff   diff.Options
	Logger *zap.Logger

	// Progress, when set, is called after each file with its result.
	Progress func(FileResult)

	// WriteFile replaces a changed file. Defaults to fsutil.WriteFileAtomic.
	WriteFile func(path string, data []byte, perm os.FileMode) error
}

// FileResult captures what happened to one file.
type FileResult struct {
	Path    string
	RelPath string
	Changed bool
	Edits   []playbook.Edit
	Diff    string
	Err     error

	// DiffOmitted is set when Diff is a placeholder for an oversize file.
	DiffOmitted bool
}

// Summary aggregates a run.
type Summary struct {
	Mode    Mode
	Files   []FileResult
	Changed int
	Failed  int
}

// Run processes files in order. IO failures are recorded on the file's result
// and the run moves on to the next file.
func Run(files []walkwalk.FileInfo, opts Options) Summary {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.WriteFile == nil {
		opts.WriteFile = fsutil.WriteFileAtomic
	}
	sum := Summary{Mode: opts.Mode, Files: make([]FileResult, 0, len(files))}
	for _, f := range files {
		res := processFile(f, opts, log)
		switch {
		case res.Err != nil:
			sum.Failed++
			log.Warn("skipping file", zap.String("path", f.RelPath), zap.Error(res.Err))
		case res.Changed:
			sum.Changed++
		}
		sum.Files = append(sum.Files, res)
		if opts.Progress != nil {
			opts.Progress(res)
		}
	}
	log.Debug("run finished",
		zap.Stringer("mode", opts.Mode),
		zap.Int("files", len(files)),
		zap.Int("changed", sum.Changed),
		zap.Int("failed", sum.Failed))
	return sum
}

func processFile(f walkwalk.FileInfo, opts Options, log *zap.Logger) FileResult {
	res := FileResult{Path: f.AbsPath, RelPath: f.RelPath}
	src, err := os.ReadFile(f.AbsPath)
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", f.RelPath, err)
		return res
	}
	fixed := playbook.Fix(src)
	if !fixed.Changed {
		log.Debug("no changes", zap.String("path", f.RelPath))
		return res
	}
	for _, e := range fixed.Edits {
		log.Debug("reindent",
			zap.String("path", f.RelPath),
			zap.Int("line", e.Line),
			zap.Stringer("kind", e.Kind),
			zap.String("key", e.Key),
			zap.Int("from", len(e.From)),
			zap.Int("to", len(e.To)))
	}
	res.Edits = fixed.Edits

	switch opts.Mode {
	case ModeDiff:
		res.Diff, res.DiffOmitted = diff.Unified(f.RelPath, src, fixed.Output, opts.Diff)
		if res.DiffOmitted {
			log.Debug("diff omitted", zap.String("path", f.RelPath), zap.Int("bytes", len(src)))
		}
	case ModeWrite:
		if err := opts.WriteFile(f.AbsPath, fixed.Output, 0o644); err != nil {
			res.Err = fmt.Errorf("write %s: %w", f.RelPath, err)
			res.Edits = nil
			return res
		}
	}
	res.Changed = true
	return res
}
