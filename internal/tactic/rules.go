package tactic

import (
	"tactician/internal/engine"
	"tactician/internal/goal"
	"tactician/internal/logic"
)

func buildRfl(inv Invocation, env Env) (engine.Step, error) {
	return func(g goal.Goal) (goal.List, error) {
		if g.Target.IsRefl() {
			return nil, nil
		}
		return nil, engine.Failf("rfl: %s is not a reflexivity goal", g.Target)
	}, nil
}

func buildAssumption(inv Invocation, env Env) (engine.Step, error) {
	return func(g goal.Goal) (goal.List, error) {
		if g.HasHyp(g.Target) {
			return nil, nil
		}
		return nil, engine.Failf("assumption: no hypothesis matches %s", g.Target)
	}, nil
}

// trivStrategy is one closing attempt tried in order by triv.
type trivStrategy struct {
	name string
	try  func(g goal.Goal, env Env) (closed bool, err error)
}

var trivStrategies = []trivStrategy{
	{"true_intro", func(g goal.Goal, _ Env) (bool, error) {
		return g.Target.Kind == logic.KindTrue, nil
	}},
	{"assumption", func(g goal.Goal, _ Env) (bool, error) {
		return g.HasHyp(g.Target), nil
	}},
	{"rfl", func(g goal.Goal, _ Env) (bool, error) {
		return g.Target.IsRefl(), nil
	}},
	{"contradiction", func(g goal.Goal, _ Env) (bool, error) {
		// Any target follows from a syntactically contradictory context.
		for _, h := range g.Hyps {
			if h.Prop.Kind == logic.KindNot && g.HasHyp(h.Prop.Kids[0]) {
				return true, nil
			}
		}
		return false, nil
	}},
	{"oracle", func(g goal.Goal, env Env) (bool, error) {
		if g.Target.Kind != logic.KindAtom {
			return false, nil
		}
		truth, known, err := env.Oracle.Decide(g.Target.Name)
		if err != nil {
			// Oracle breakage is a host-level condition, not "does not apply".
			return false, engine.WrapFatal(err)
		}
		return known && truth, nil
	}},
}

func buildTriv(inv Invocation, env Env) (engine.Step, error) {
	return func(g goal.Goal) (goal.List, error) {
		for _, s := range trivStrategies {
			closed, err := s.try(g, env)
			if err != nil {
				return nil, err
			}
			if closed {
				return nil, nil
			}
		}
		return nil, engine.Failf("triv: %s is not trivially closable", g.Target)
	}, nil
}

// applyHyp resolves the named implication hypothesis against the target and
// returns the antecedent subgoals in declaration order.
func applyHyp(g goal.Goal, hypName string) (goal.List, error) {
	h, ok := g.Hyp(hypName)
	if !ok {
		return nil, engine.Failf("apply: no hypothesis named %s", hypName)
	}
	concl, antecedents := h.Prop.Conclusion()
	if !concl.Equal(g.Target) {
		return nil, engine.Failf("apply: %s concludes %s, goal is %s", hypName, concl, g.Target)
	}
	subgoals := make(goal.List, len(antecedents))
	for i, ant := range antecedents {
		subgoals[i] = g.WithTarget(ant)
	}
	return subgoals, nil
}

func buildFApply(inv Invocation, env Env) (engine.Step, error) {
	if inv.Hyp == "" {
		return nil, engine.Fatalf("fapply: missing hypothesis argument")
	}
	return func(g goal.Goal) (goal.List, error) {
		return applyHyp(g, inv.Hyp)
	}, nil
}

func buildEApply(inv Invocation, env Env) (engine.Step, error) {
	if inv.Hyp == "" {
		return nil, engine.Fatalf("eapply: missing hypothesis argument")
	}
	return func(g goal.Goal) (goal.List, error) {
		subgoals, err := applyHyp(g, inv.Hyp)
		if err != nil {
			return nil, err
		}
		// Obligations the context already satisfies are postponed to the
		// back; the interesting goals surface first.
		var front, back goal.List
		for _, sub := range subgoals {
			if sub.HasHyp(sub.Target) {
				back = append(back, sub)
			} else {
				front = append(front, sub)
			}
		}
		return append(front, back...), nil
	}, nil
}

// decidable reports whether the environment can case on p: atoms the
// oracle has a verdict for, or anything at all under classical mode.
func decidable(p logic.Prop, env Env) (bool, error) {
	if env.Classical {
		return true, nil
	}
	if p.Kind != logic.KindAtom {
		return false, nil
	}
	_, known, err := env.Oracle.Decide(p.Name)
	if err != nil {
		return false, engine.WrapFatal(err)
	}
	return known, nil
}

func buildByCases(inv Invocation, env Env) (engine.Step, error) {
	if inv.Name == "" || inv.Prop == nil {
		return nil, engine.Fatalf("by_cases: requires a hypothesis name and a proposition")
	}
	p := *inv.Prop
	return func(g goal.Goal) (goal.List, error) {
		ok, err := decidable(p, env)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, engine.Failf("by_cases: %s is not decidable here", p)
		}
		pos := g.WithTarget(g.Target, goal.Hyp{Name: inv.Name, Prop: p})
		neg := g.WithTarget(g.Target, goal.Hyp{Name: inv.Name, Prop: logic.Not(p)})
		return goal.List{pos, neg}, nil
	}, nil
}

// contraStrategy is one by_contra expansion, tried first-match-wins.
type contraStrategy struct {
	name    string
	applies func(g goal.Goal, env Env) (bool, error)
	expand  func(g goal.Goal, name string) goal.List
}

var contraStrategies = []contraStrategy{
	{
		// A negated target is an intro, no case analysis needed.
		name: "neg_intro",
		applies: func(g goal.Goal, _ Env) (bool, error) {
			return g.Target.Kind == logic.KindNot, nil
		},
		expand: func(g goal.Goal, name string) goal.List {
			return goal.List{g.WithTarget(logic.False(), goal.Hyp{Name: name, Prop: g.Target.Kids[0]})}
		},
	},
	{
		name: "decidable",
		applies: func(g goal.Goal, env Env) (bool, error) {
			if g.Target.Kind != logic.KindAtom {
				return false, nil
			}
			_, known, err := env.Oracle.Decide(g.Target.Name)
			if err != nil {
				return false, engine.WrapFatal(err)
			}
			return known, nil
		},
		expand: func(g goal.Goal, name string) goal.List {
			return goal.List{g.WithTarget(logic.False(), goal.Hyp{Name: name, Prop: logic.Not(g.Target)})}
		},
	},
	{
		name: "classical",
		applies: func(g goal.Goal, env Env) (bool, error) {
			return env.Classical, nil
		},
		expand: func(g goal.Goal, name string) goal.List {
			return goal.List{g.WithTarget(logic.False(), goal.Hyp{Name: name, Prop: logic.Not(g.Target)})}
		},
	},
}

func buildByContra(inv Invocation, env Env) (engine.Step, error) {
	name := inv.Name
	if name == "" {
		name = "h"
	}
	return func(g goal.Goal) (goal.List, error) {
		for _, s := range contraStrategies {
			ok, err := s.applies(g, env)
			if err != nil {
				return nil, err
			}
			if ok {
				return s.expand(g, name), nil
			}
		}
		return nil, engine.Failf("by_contra: %s is neither negated nor decidable, and classical reasoning is off", g.Target)
	}, nil
}
