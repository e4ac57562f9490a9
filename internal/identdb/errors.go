package identdb

import (
	"fmt"
	"strings"

	multierror "github.com/hashicorp/go-multierror"
)

// ParseError reports a malformed line in one of the databases. It is
// always fatal to the load that produced it.
type ParseError struct {
	File   File
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: line %d: %s", e.File, e.Line, e.Reason)
}

// PreconditionError reports a single mutation whose local invariant
// failed. The model is unchanged when one is returned.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func precondition(op, format string, args ...interface{}) *PreconditionError {
	return &PreconditionError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// InUseError reports an attempted removal of a record that is still
// referenced elsewhere.
type InUseError struct {
	Kind string // "group" or "user"
	Name string
	By   string
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("%s %q is in use by %s", e.Kind, e.Name, e.By)
}

// Violation is a single broken cross-file invariant, tagged with the
// invariant number and the keys of the offending records.
type Violation struct {
	Invariant int
	Keys      []string
	Detail    string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", v.Invariant, strings.Join(v.Keys, " "), v.Detail)
}

// ValidationError carries every violation found in one pass so the
// caller can report all problems at once.
type ValidationError struct {
	Violations []*Violation
}

func (e *ValidationError) Error() string {
	var all *multierror.Error
	for _, v := range e.Violations {
		all = multierror.Append(all, v)
	}
	return all.Error()
}
