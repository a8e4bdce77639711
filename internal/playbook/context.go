package playbook

// Context is the state threaded between lines of one file. The zero value is
// the start-of-file state: no task, no module, not inside a parameter block.
type Context struct {
	TaskIndent string
	HaveTask   bool

	// ModuleIndent is only meaningful while InParams is true.
	ModuleIndent string
	HaveModule   bool

	InParams bool
}

// effective downgrades module and task-key lines to Other while no task header
// has been seen (file preamble, play-level keys).
func (c Context) effective(cl Classification) Kind {
	if !c.HaveTask && (cl.Kind == ModuleInvocation || cl.Kind == TaskLevelKey) {
		return Other
	}
	return cl.Kind
}

// Next returns the context after a line classified as cl. moduleIndent is the
// indent the module line ends up with and is used only for ModuleInvocation.
func (c Context) Next(cl Classification, moduleIndent string) Context {
	switch c.effective(cl) {
	case TaskHeader:
		return Context{TaskIndent: cl.Indent, HaveTask: true}
	case ModuleInvocation:
		c.ModuleIndent = moduleIndent
		c.HaveModule = true
		c.InParams = true
	case SectionKey, StructuralBreak:
		c.InParams = false
	}
	return c
}

// desired returns the indent a line classified as cl should carry, and false
// when the line is passed through untouched.
func (c Context) desired(cl Classification) (string, bool) {
	switch c.effective(cl) {
	case ModuleInvocation:
		return c.TaskIndent + "  ", true
	case TaskLevelKey:
		if c.HaveModule {
			return c.ModuleIndent, true
		}
		return c.TaskIndent + "  ", true
	case ParameterLine:
		if !c.InParams {
			return "", false
		}
		return c.ModuleIndent + "  ", true
	}
	return "", false
}

// section is an open block:/rescue:/always: (or tasks:/handlers:) key and the
// state to return to once a line leaves its body.
type section struct {
	indent     string
	outer      Context
	moduleFrom string
}

// Tracker threads a Context through a file. It keeps the stack of open
// sections so that a key following a nested task list is matched against the
// task owning the section instead of the last nested task.
type Tracker struct {
	ctx      Context
	sections []section

	// moduleFrom is the original indent of the current task's module line.
	moduleFrom string
}

// Context returns the current context.
func (t *Tracker) Context() Context { return t.ctx }

// Depth returns the number of open sections.
func (t *Tracker) Depth() int { return len(t.sections) }

// closes reports whether cl sits outside the body of s. Keys at the section
// key's indent are its siblings while list items there are still children.
// A key at or right of a misplaced module line stays with that module.
func (t *Tracker) closes(s section, cl Classification) bool {
	n := len(cl.Indent)
	switch cl.Kind {
	case TaskHeader:
		return n < len(s.indent)
	case SectionKey:
		return n <= len(s.indent)
	case TaskLevelKey, ParameterLine:
		if t.ctx.HaveModule && n >= len(t.moduleFrom) {
			return false
		}
		return n <= len(s.indent)
	}
	return false
}

// Step consumes one classified line and returns the indent it should carry,
// or false when it is passed through untouched.
func (t *Tracker) Step(cl Classification) (string, bool) {
	for len(t.sections) > 0 {
		top := t.sections[len(t.sections)-1]
		if !t.closes(top, cl) {
			break
		}
		t.ctx, t.moduleFrom = top.outer, top.moduleFrom
		t.sections = t.sections[:len(t.sections)-1]
	}
	want, ok := t.ctx.desired(cl)
	if t.ctx.effective(cl) == ModuleInvocation {
		t.moduleFrom = cl.Indent
	}
	t.ctx = t.ctx.Next(cl, want)
	if cl.Kind == SectionKey {
		t.sections = append(t.sections, section{indent: cl.Indent, outer: t.ctx, moduleFrom: t.moduleFrom})
	}
	return want, ok
}
