// Package textutil holds small line-buffer helpers shared by the rewriter and
// the runner. Lines always carry their original terminator.
package textutil

import "strings"

// SplitLines splits s into lines, keeping "\n" (and any preceding "\r") on each
// element. A final chunk without a terminator is kept as its own line.
func SplitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	// SplitAfter yields a trailing "" when s ends with "\n".
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "")
}

// LeadingSpace returns the run of spaces and tabs at the start of line.
func LeadingSpace(line string) string {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[:i]
}

// ReplaceIndent swaps the leading whitespace of line for indent, leaving the
// remainder (content and terminator) untouched.
func ReplaceIndent(line, indent string) string {
	return indent + line[len(LeadingSpace(line)):]
}

// IsBlank reports whether line holds only whitespace and its terminator.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
