package tactic

import (
	"tactician/internal/engine"
	"tactician/internal/goal"
	"tactician/internal/logic"
	"tactician/internal/logging"
	"tactician/internal/oracle"
	"tactician/internal/trace"
)

// Runner executes tactic scripts against a goal list. It owns the mapping
// from script invocations to engine combinator calls; the engine itself
// never sees tactic names.
type Runner struct {
	env Env
	rec *trace.Recorder
	log *logging.Logger
}

// NewRunner builds a runner; a nil oracle defaults to oracle.None.
func NewRunner(env Env) *Runner {
	if env.Oracle == nil {
		env.Oracle = oracle.None{}
	}
	return &Runner{env: env, log: logging.Get(logging.CategoryTactic)}
}

// SetRecorder attaches a derivation recorder. Optional.
func (r *Runner) SetRecorder(rec *trace.Recorder) { r.rec = rec }

// Run executes the script invocation by invocation and returns the
// remaining obligations. The returned list is empty exactly when every
// goal was discharged.
func (r *Runner) Run(goals goal.List, script []Invocation) (goal.List, error) {
	work := goals
	for _, inv := range script {
		out, err := r.apply(work, inv)
		if err != nil {
			return nil, err
		}
		r.log.Debug("%s: %d -> %d goals", inv, len(work), len(out))
		work = out
	}
	return work, nil
}

// apply dispatches one invocation. iterate, repeat and exacts shape the
// whole list; every other tactic acts on the first goal.
func (r *Runner) apply(goals goal.List, inv Invocation) (goal.List, error) {
	if err := ValidateArgs(inv); err != nil {
		return nil, err
	}
	switch inv.Tactic {
	case "iterate":
		step, err := r.blockStep(inv.Body)
		if err != nil {
			return nil, err
		}
		step = GuardStep(step, r.env.MaxSteps)
		if inv.N != nil {
			return engine.BoundedRepeat(step, *inv.N, goals)
		}
		return engine.UnboundedRepeat(step, goals)
	case "repeat", "repeat'":
		step, err := r.blockStep(inv.Body)
		if err != nil {
			return nil, err
		}
		return engine.RepeatToFixpoint(GuardStep(step, r.env.MaxSteps), goals)
	case "exacts":
		return r.exacts(goals, inv)
	default:
		step, err := r.ruleStep(inv)
		if err != nil {
			return nil, err
		}
		if goals.Empty() {
			return nil, engine.Failf("%s: no goals", inv.Tactic)
		}
		subgoals, err := step(goals[0])
		if err != nil {
			return nil, err
		}
		return goals.Replace(0, subgoals), nil
	}
}

// ruleStep resolves a single-goal rule and wraps it with trace recording.
func (r *Runner) ruleStep(inv Invocation) (engine.Step, error) {
	rule, ok := Lookup(inv.Tactic)
	if !ok {
		// Malformed script, not "does not apply": must survive the
		// failure-swallowing combinator modes.
		return nil, engine.Fatalf("unknown tactic %q", inv.Tactic)
	}
	base, err := rule.Build(inv, r.env)
	if err != nil {
		return nil, err
	}
	name := rule.Name
	return func(g goal.Goal) (goal.List, error) {
		subgoals, err := base(g)
		if err != nil {
			return nil, err
		}
		if r.rec != nil {
			r.rec.Apply(g, name, subgoals)
		}
		return subgoals, nil
	}, nil
}

// blockStep compiles a tactic block into one Step: the block runs on a
// single goal's private worklist, sequencing each inner invocation onto
// the first remaining obligation. Nested iterate/repeat invocations
// re-enter the engine on that private list only.
func (r *Runner) blockStep(body []Invocation) (engine.Step, error) {
	if len(body) == 0 {
		return nil, engine.Fatalf("empty tactic block")
	}
	return func(g goal.Goal) (goal.List, error) {
		work := goal.List{g}
		for _, inv := range body {
			out, err := r.apply(work, inv)
			if err != nil {
				return nil, err
			}
			work = out
		}
		return work, nil
	}, nil
}

// exacts closes the goals one-for-one with the given terms, in order. The
// whole invocation is atomic and total: every goal must be closed, so
// leftover terms and leftover goals both fail without consuming anything.
func (r *Runner) exacts(goals goal.List, inv Invocation) (goal.List, error) {
	if len(inv.Terms) == 0 {
		return nil, engine.Fatalf("exacts: no terms given")
	}
	work := goals.Clone()
	for i, term := range inv.Terms {
		if work.Empty() {
			return nil, engine.Failf("exacts: %d terms left but no goals", len(inv.Terms)-i)
		}
		g := work[0]
		if err := exactClose(g, term); err != nil {
			return nil, err
		}
		if r.rec != nil {
			r.rec.Apply(g, "exacts", nil)
		}
		work = work.Replace(0, nil)
	}
	if !work.Empty() {
		return nil, engine.Failf("exacts: %d goals remain unclosed", len(work))
	}
	return work, nil
}

// exactClose checks that term discharges g: it must match the target and
// be justified by the context or be trivially true.
func exactClose(g goal.Goal, term logic.Prop) error {
	if !term.Equal(g.Target) {
		return engine.Failf("exacts: term %s does not match goal %s", term, g.Target)
	}
	if g.HasHyp(term) || term.IsRefl() || term.Kind == logic.KindTrue {
		return nil
	}
	return engine.Failf("exacts: %s matches the goal but nothing justifies it", term)
}
