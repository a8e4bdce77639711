package playbook

import "ansible-indent/internal/textutil"

// Edit records one rewritten line. Line is 1-based; From and To are the old and
// new leading whitespace.
type Edit struct {
	Line int    `json:"line"`
	Kind Kind   `json:"kind"`
	Key  string `json:"key"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Result is the outcome of Fix on a whole file.
type Result struct {
	Output  []byte
	Changed bool
	Edits   []Edit
}

// FixLines scans lines once and returns a new slice with corrected indentation,
// plus one Edit per rewritten line. The input slice is not modified.
func FixLines(lines []string) ([]string, []Edit) {
	out := make([]string, 0, len(lines))
	var edits []Edit
	var tr Tracker
	for i, line := range lines {
		cl := Classify(line)
		want, ok := tr.Step(cl)
		if ok && want != cl.Indent {
			edits = append(edits, Edit{Line: i + 1, Kind: cl.Kind, Key: cl.Key, From: cl.Indent, To: want})
			line = textutil.ReplaceIndent(line, want)
		}
		out = append(out, line)
	}
	return out, edits
}

// Fix applies FixLines to a file's contents. When nothing changes, Output is
// src itself.
func Fix(src []byte) Result {
	lines, edits := FixLines(textutil.SplitLines(string(src)))
	if len(edits) == 0 {
		return Result{Output: src}
	}
	return Result{
		Output:  []byte(textutil.JoinLines(lines)),
		Changed: true,
		Edits:   edits,
	}
}
