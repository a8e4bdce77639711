// Package diff renders unified patches for pending rewrites. It uses
// github.com/pmezard/go-difflib/difflib to produce classic unified output
// (---/+++ headers, @@ hunks, lines prefixed with ' ', '-', '+').
package diff

import (
	"fmt"

	difflib "github.com/pmezard/go-difflib/difflib"

	"ansible-indent/internal/textutil"
)

// Options controls patch generation behavior.
type Options struct {
	// MaxBytes caps old+new input size. When exceeded a placeholder patch is
	// returned and oversize=true. 0 means "no limit".
	MaxBytes int

	// Context is the number of context lines in hunks. If 0, default to 3.
	Context int

	// NoPrefix drops the "a/" and "b/" prefixes from the file headers.
	NoPrefix bool
}

// Unified produces a unified patch turning a into b for the file at name.
// It returns "" when a and b are identical.
func Unified(name string, a, b []byte, opt Options) (body string, oversize bool) {
	from, to := "a/"+name, "b/"+name
	if opt.NoPrefix {
		from, to = name, name
	}
	if opt.MaxBytes > 0 && len(a)+len(b) > opt.MaxBytes {
		return omitted(from, to), true
	}
	ctx := opt.Context
	if ctx <= 0 {
		ctx = 3
	}
	u := difflib.UnifiedDiff{
		A:        textutil.SplitLines(string(a)),
		B:        textutil.SplitLines(string(b)),
		FromFile: from,
		ToFile:   to,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return omitted(from, to), false
	}
	return s, false
}

// omitted returns a compact placeholder when size limits are exceeded.
func omitted(from, to string) string {
	return fmt.Sprintf("--- %s\n+++ %s\n@@\n# diff omitted (oversize)\n", from, to)
}
