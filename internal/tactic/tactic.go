// Package tactic implements the thin proof-construction rules layered on
// the combinator engine, plus the dispatcher that executes a script of rule
// invocations against a goal list.
//
// Every rule is small: it inspects one goal syntactically and either
// produces replacement subgoals or reports an ordinary failure. Anything
// resembling real elaboration is delegated to the oracle or refused.
package tactic

import (
	"fmt"

	"tactician/internal/engine"
	"tactician/internal/goal"
	"tactician/internal/logic"
	"tactician/internal/oracle"
)

// Env carries the ambient capabilities rules may consult.
type Env struct {
	// Oracle decides atomic propositions. Never nil after NewRunner.
	Oracle oracle.Oracle
	// Classical enables the classical fallbacks of by_cases and by_contra
	// for propositions the oracle cannot decide.
	Classical bool
	// MaxSteps bounds the number of step applications a single iterate or
	// repeat invocation may perform. Exceeding it is a fatal error, the
	// in-process stand-in for a host elaboration timeout. 0 = unlimited.
	MaxSteps uint
}

// Invocation is one entry of a tactic script. Which fields are meaningful
// depends on the tactic; surplus fields are a malformed script and are
// rejected before dispatch (see ValidateArgs).
type Invocation struct {
	Tactic string       `yaml:"tactic"`
	Name   string       `yaml:"name,omitempty"`   // hypothesis to introduce
	Hyp    string       `yaml:"hyp,omitempty"`    // hypothesis to apply
	Prop   *logic.Prop  `yaml:"prop,omitempty"`   // proposition argument
	Terms  []logic.Prop `yaml:"terms,omitempty"`  // exacts arguments
	N      *uint        `yaml:"n,omitempty"`      // bounded iterate count
	Body   []Invocation `yaml:"body,omitempty"`   // iterate / repeat block
}

func (inv Invocation) String() string {
	if inv.Name != "" {
		return fmt.Sprintf("%s %s", inv.Tactic, inv.Name)
	}
	if inv.Hyp != "" {
		return fmt.Sprintf("%s %s", inv.Tactic, inv.Hyp)
	}
	return inv.Tactic
}

// Rule is one single-goal tactic. Build may reject malformed invocations
// up front; the returned Step reports per-goal applicability.
type Rule struct {
	Name    string
	Summary string
	Build   func(inv Invocation, env Env) (engine.Step, error)
}

// rules is the dispatch table for single-goal tactics. iterate, repeat and
// exacts operate on the whole goal list and live in the runner.
var rules = []Rule{
	{Name: "rfl", Summary: "close reflexivity goals (a = a, p <-> p)", Build: buildRfl},
	{Name: "triv", Summary: "close trivial goals (True, assumption, rfl, contradiction, decided atoms)", Build: buildTriv},
	{Name: "assumption", Summary: "close a goal matching a hypothesis", Build: buildAssumption},
	{Name: "fapply", Summary: "apply an implication hypothesis, subgoals in declaration order", Build: buildFApply},
	{Name: "eapply", Summary: "apply an implication hypothesis, satisfied subgoals postponed", Build: buildEApply},
	{Name: "by_cases", Summary: "split on a decidable proposition", Build: buildByCases},
	{Name: "by_contra", Summary: "prove by contradiction", Build: buildByContra},
}

// Lookup finds a single-goal rule by name.
func Lookup(name string) (Rule, bool) {
	for _, r := range rules {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

// Rules returns the dispatch table in registration order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// argUse declares which Invocation fields a tactic consumes.
type argUse struct {
	name, hyp, prop, terms, n, body bool
}

var argTable = map[string]argUse{
	"rfl":        {},
	"triv":       {},
	"assumption": {},
	"fapply":     {hyp: true},
	"eapply":     {hyp: true},
	"by_cases":   {name: true, prop: true},
	"by_contra":  {name: true},
	"exacts":     {terms: true},
	"iterate":    {n: true, body: true},
	"repeat":     {body: true},
	"repeat'":    {body: true},
}

// ValidateArgs rejects invocations carrying fields their tactic does not
// consume. A surplus field is a malformed script, so the error is fatal:
// it must not be absorbed by iterate or repeat. Unknown tactic names are
// left for dispatch to report.
func ValidateArgs(inv Invocation) error {
	use, ok := argTable[inv.Tactic]
	if !ok {
		return nil
	}
	switch {
	case !use.name && inv.Name != "":
		return engine.Fatalf("%s: does not take a name argument", inv.Tactic)
	case !use.hyp && inv.Hyp != "":
		return engine.Fatalf("%s: does not take a hyp argument", inv.Tactic)
	case !use.prop && inv.Prop != nil:
		return engine.Fatalf("%s: does not take a prop argument", inv.Tactic)
	case !use.terms && len(inv.Terms) > 0:
		return engine.Fatalf("%s: does not take terms", inv.Tactic)
	case !use.n && inv.N != nil:
		return engine.Fatalf("%s: does not take a repetition count", inv.Tactic)
	case !use.body && len(inv.Body) > 0:
		return engine.Fatalf("%s: does not take a tactic block", inv.Tactic)
	}
	return nil
}

// GuardStep wraps step with an application budget. The budget exhausting is
// fatal: it must abort even the failure-swallowing combinator modes.
func GuardStep(step engine.Step, limit uint) engine.Step {
	if limit == 0 {
		return step
	}
	var used uint
	return func(g goal.Goal) (goal.List, error) {
		if used >= limit {
			return nil, engine.Fatalf("step budget of %d applications exhausted", limit)
		}
		used++
		return step(g)
	}
}
