// Package goal holds the open-obligation data model shared by the
// combinator engine and the tactic layer. The engine only ever looks at
// identity and ordering; targets and hypotheses are for tactics.
package goal

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"tactician/internal/logic"
)

// Hyp is one named local hypothesis.
type Hyp struct {
	Name string     `yaml:"name"`
	Prop logic.Prop `yaml:"prop"`
}

// Goal is one open proof obligation. Two goals are the same obligation
// exactly when their IDs match.
type Goal struct {
	ID     string
	Name   string
	Target logic.Prop
	Hyps   []Hyp
}

// New creates a goal with a fresh ID.
func New(name string, target logic.Prop, hyps ...Hyp) Goal {
	return Goal{
		ID:     uuid.NewString(),
		Name:   name,
		Target: target,
		Hyps:   hyps,
	}
}

// WithTarget derives a new obligation from g: fresh ID, same hypotheses
// unless extended, given target. The receiver is not modified.
func (g Goal) WithTarget(target logic.Prop, extra ...Hyp) Goal {
	hyps := make([]Hyp, 0, len(g.Hyps)+len(extra))
	hyps = append(hyps, g.Hyps...)
	hyps = append(hyps, extra...)
	return Goal{
		ID:     uuid.NewString(),
		Name:   g.Name,
		Target: target,
		Hyps:   hyps,
	}
}

// Hyp returns the hypothesis with the given name.
func (g Goal) Hyp(name string) (Hyp, bool) {
	for _, h := range g.Hyps {
		if h.Name == name {
			return h, true
		}
	}
	return Hyp{}, false
}

// HasHyp reports whether some hypothesis is structurally equal to p.
func (g Goal) HasHyp(p logic.Prop) bool {
	for _, h := range g.Hyps {
		if h.Prop.Equal(p) {
			return true
		}
	}
	return false
}

func (g Goal) String() string {
	if len(g.Hyps) == 0 {
		return fmt.Sprintf("⊢ %s", g.Target)
	}
	parts := make([]string, len(g.Hyps))
	for i, h := range g.Hyps {
		parts[i] = fmt.Sprintf("%s : %s", h.Name, h.Prop)
	}
	return fmt.Sprintf("%s ⊢ %s", strings.Join(parts, ", "), g.Target)
}

// List is an ordered sequence of goals. Order is significant: tactics act
// on earlier obligations first, and splicing keeps the relative order of
// untouched goals.
type List []Goal

// Clone returns a shallow copy with independent backing storage.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Replace splices subgoals in place of the goal at index i.
func (l List) Replace(i int, subgoals List) List {
	out := make(List, 0, len(l)-1+len(subgoals))
	out = append(out, l[:i]...)
	out = append(out, subgoals...)
	out = append(out, l[i+1:]...)
	return out
}

// IDs returns the goal IDs in order.
func (l List) IDs() []string {
	ids := make([]string, len(l))
	for i, g := range l {
		ids[i] = g.ID
	}
	return ids
}

// Empty reports whether no obligations remain.
func (l List) Empty() bool { return len(l) == 0 }
