// Package logic provides the syntactic proposition model the tactic layer
// operates on. Propositions are plain trees compared by structure; there is
// no binder, no unification and no type checking here. Anything that needs
// real elaboration belongs to a host prover, not to this package.
package logic

import (
	"fmt"
	"strings"
)

// Kind discriminates the proposition forms.
type Kind int

const (
	KindAtom Kind = iota
	KindTrue
	KindFalse
	KindNot
	KindAnd
	KindOr
	KindImp
	KindIff
	KindEq
)

var kindNames = map[Kind]string{
	KindAtom:  "atom",
	KindTrue:  "true",
	KindFalse: "false",
	KindNot:   "not",
	KindAnd:   "and",
	KindOr:    "or",
	KindImp:   "imp",
	KindIff:   "iff",
	KindEq:    "eq",
}

func (k Kind) String() string { return kindNames[k] }

// Prop is one proposition node. Name is set for atoms, Lhs/Rhs for
// equalities (opaque term spellings), Kids for every connective.
type Prop struct {
	Kind Kind
	Name string
	Lhs  string
	Rhs  string
	Kids []Prop
}

// Constructors.

func Atom(name string) Prop    { return Prop{Kind: KindAtom, Name: name} }
func True() Prop               { return Prop{Kind: KindTrue} }
func False() Prop              { return Prop{Kind: KindFalse} }
func Not(p Prop) Prop          { return Prop{Kind: KindNot, Kids: []Prop{p}} }
func And(p, q Prop) Prop       { return Prop{Kind: KindAnd, Kids: []Prop{p, q}} }
func Or(p, q Prop) Prop        { return Prop{Kind: KindOr, Kids: []Prop{p, q}} }
func Imp(p, q Prop) Prop       { return Prop{Kind: KindImp, Kids: []Prop{p, q}} }
func Iff(p, q Prop) Prop       { return Prop{Kind: KindIff, Kids: []Prop{p, q}} }
func Eq(lhs, rhs string) Prop  { return Prop{Kind: KindEq, Lhs: lhs, Rhs: rhs} }

// Equal reports structural equality.
func (p Prop) Equal(q Prop) bool {
	if p.Kind != q.Kind || p.Name != q.Name || p.Lhs != q.Lhs || p.Rhs != q.Rhs {
		return false
	}
	if len(p.Kids) != len(q.Kids) {
		return false
	}
	for i := range p.Kids {
		if !p.Kids[i].Equal(q.Kids[i]) {
			return false
		}
	}
	return true
}

// IsRefl reports whether the proposition is closed by reflexivity alone:
// an equality with identical sides, or an iff with structurally equal sides.
func (p Prop) IsRefl() bool {
	switch p.Kind {
	case KindEq:
		return p.Lhs == p.Rhs
	case KindIff:
		return p.Kids[0].Equal(p.Kids[1])
	default:
		return false
	}
}

// Conclusion returns the final consequent of a (possibly chained)
// implication, together with the antecedents in declaration order.
// For a non-implication it returns the proposition itself and no antecedents.
func (p Prop) Conclusion() (Prop, []Prop) {
	var antecedents []Prop
	cur := p
	for cur.Kind == KindImp {
		antecedents = append(antecedents, cur.Kids[0])
		cur = cur.Kids[1]
	}
	return cur, antecedents
}

// String renders the proposition in a compact infix form for logs and
// trace output.
func (p Prop) String() string {
	switch p.Kind {
	case KindAtom:
		return p.Name
	case KindTrue:
		return "True"
	case KindFalse:
		return "False"
	case KindNot:
		return "~" + paren(p.Kids[0])
	case KindAnd:
		return paren(p.Kids[0]) + " /\\ " + paren(p.Kids[1])
	case KindOr:
		return paren(p.Kids[0]) + " \\/ " + paren(p.Kids[1])
	case KindImp:
		return paren(p.Kids[0]) + " -> " + paren(p.Kids[1])
	case KindIff:
		return paren(p.Kids[0]) + " <-> " + paren(p.Kids[1])
	case KindEq:
		return p.Lhs + " = " + p.Rhs
	default:
		return fmt.Sprintf("<?kind %d>", int(p.Kind))
	}
}

func paren(p Prop) string {
	switch p.Kind {
	case KindAtom, KindTrue, KindFalse, KindNot:
		return p.String()
	}
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(p.String())
	sb.WriteByte(')')
	return sb.String()
}
