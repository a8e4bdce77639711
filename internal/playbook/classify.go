// Package playbook fixes leading indentation in Ansible task files with a
// single forward scan over lines. No YAML parser is involved: every line is
// classified on its own text (see Classify) and a small Context value carries
// the indentation of the open task and module from one line to the next.
//
// Recognized layout:
//
//	tasks:
//	  - name: copy config          # TaskHeader, indent definitional
//	    ansible.builtin.copy:      # ModuleInvocation, task indent + 2
//	      dest: /etc/app.conf      # ParameterLine, module indent + 2
//	    register: result           # TaskLevelKey, module indent
//
// A key at or left of an open block:, rescue: or always: key leaves that
// section and is matched against the task that owns it (see Tracker).
package playbook

import (
	"regexp"
	"strings"

	"ansible-indent/internal/textutil"
)

// Kind tags a classified line.
type Kind int

const (
	Other Kind = iota
	TaskHeader
	ModuleInvocation
	TaskLevelKey
	SectionKey
	StructuralBreak
	ParameterLine
)

func (k Kind) String() string {
	switch k {
	case TaskHeader:
		return "task"
	case ModuleInvocation:
		return "module"
	case TaskLevelKey:
		return "task-key"
	case SectionKey:
		return "section"
	case StructuralBreak:
		return "break"
	case ParameterLine:
		return "param"
	default:
		return "other"
	}
}

// MarshalText renders the kind by name in JSON reports.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Classification is the result of Classify. Indent is the line's leading
// whitespace; Key is set for keyed lines (module name, control key, param key).
type Classification struct {
	Kind   Kind
	Indent string
	Key    string
}

var (
	reTaskHeader = regexp.MustCompile(`^([ \t]*)-\s+name:`)
	reModule     = regexp.MustCompile(`^([ \t]*)((?:ansible\.builtin\.|ansible\.legacy\.|kubernetes\.core\.|amazon\.aws\.|community\.[A-Za-z_]+\.)\w+):`)
	reParam      = regexp.MustCompile(`^([A-Za-z0-9_]+):`)
)

// taskKeys are control directives that belong to the task, not the module.
var taskKeys = []string{
	"register",
	"when",
	"changed_when",
	"failed_when",
	"ignore_errors",
	"loop",
	"retries",
	"delay",
	"until",
}

// sectionKeys open a nested task list. They end any open parameter block.
var sectionKeys = []string{
	"block",
	"rescue",
	"always",
	"tasks",
	"pre_tasks",
	"post_tasks",
	"handlers",
}

// Classify maps a raw line to exactly one Classification. It never fails;
// unmatched lines are Other.
func Classify(line string) Classification {
	indent := textutil.LeadingSpace(line)
	if m := reTaskHeader.FindStringSubmatch(line); m != nil {
		return Classification{Kind: TaskHeader, Indent: m[1], Key: "name"}
	}
	if m := reModule.FindStringSubmatch(line); m != nil {
		return Classification{Kind: ModuleInvocation, Indent: m[1], Key: m[2]}
	}
	trimmed := strings.TrimLeft(line, " \t")
	if k, ok := keyPrefix(trimmed, taskKeys); ok {
		return Classification{Kind: TaskLevelKey, Indent: indent, Key: k}
	}
	if k, ok := keyPrefix(trimmed, sectionKeys); ok {
		return Classification{Kind: SectionKey, Indent: indent, Key: k}
	}
	if textutil.IsBlank(line) || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "---") {
		return Classification{Kind: StructuralBreak, Indent: indent}
	}
	if m := reParam.FindStringSubmatch(trimmed); m != nil {
		return Classification{Kind: ParameterLine, Indent: indent, Key: m[1]}
	}
	return Classification{Kind: Other, Indent: indent}
}

// keyPrefix reports which of keys the trimmed line starts with as "key:".
func keyPrefix(trimmed string, keys []string) (string, bool) {
	for _, k := range keys {
		if strings.HasPrefix(trimmed, k+":") {
			return k, true
		}
	}
	return "", false
}
