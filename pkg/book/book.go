// Package book models the definition table readback consults when it
// encounters a Ref: whether the definition is compiler-generated, and if
// so, the sole rule body to inline.
package book

import (
	"fmt"
	"strings"

	"github.com/vic/readback/pkg/term"
)

// Rule is one rewrite rule of a definition. HasPattern marks a rule that
// pattern-matches on its arguments; generated definitions must never have
// one, which AssertNoPatternMatchingRules enforces as a hard error.
type Rule struct {
	Body       term.Term
	HasPattern bool
}

// Def is a definition: a name (tested for the generated-name marker '$')
// and zero or more rewrite rules.
type Def struct {
	Name  string
	Rules []Rule
}

// Book maps definition ids to definitions.
type Book struct {
	Defs map[term.DefID]*Def
}

// New returns an empty book.
func New() *Book {
	return &Book{Defs: map[term.DefID]*Def{}}
}

// Name returns the definition's name, or "" if id is unknown.
func (b *Book) Name(id term.DefID) string {
	if d, ok := b.Defs[id]; ok {
		return d.Name
	}
	return ""
}

// IsGenerated reports whether id names a compiler-generated definition: one
// whose name contains '$'. Readback inlines exactly this subset of Refs.
func (b *Book) IsGenerated(id term.DefID) bool {
	return strings.Contains(b.Name(id), "$")
}

// AssertNoPatternMatchingRules enforces that a generated definition has
// exactly one rule, and that it does not pattern-match. Violating this is a
// programmer/compiler-pipeline mistake, not a malformed net, so it panics
// rather than degrading valid to false.
func (b *Book) AssertNoPatternMatchingRules(id term.DefID) {
	d, ok := b.Defs[id]
	if !ok {
		panic(fmt.Sprintf("book: unknown definition id %d", id))
	}
	if len(d.Rules) != 1 {
		panic(fmt.Sprintf("book: generated definition %q must have exactly one rule, has %d", d.Name, len(d.Rules)))
	}
	if d.Rules[0].HasPattern {
		panic(fmt.Sprintf("book: generated definition %q must not pattern-match", d.Name))
	}
}

// GeneratedBody implements term.Generated: it returns the sole rule body of
// a generated definition, after asserting the definition's shape is the one
// generated definitions are guaranteed to have.
func (b *Book) GeneratedBody(id term.DefID) term.Term {
	b.AssertNoPatternMatchingRules(id)
	return b.Defs[id].Rules[0].Body
}

var _ term.Generated = (*Book)(nil)
