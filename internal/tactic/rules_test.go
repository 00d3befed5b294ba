package tactic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tactician/internal/engine"
	"tactician/internal/goal"
	"tactician/internal/logic"
	"tactician/internal/oracle"
)

func buildStep(t *testing.T, inv Invocation, env Env) engine.Step {
	t.Helper()
	rule, ok := Lookup(inv.Tactic)
	require.True(t, ok, "rule %s must exist", inv.Tactic)
	step, err := rule.Build(inv, env)
	require.NoError(t, err)
	return step
}

func TestRfl(t *testing.T) {
	step := buildStep(t, Invocation{Tactic: "rfl"}, Env{Oracle: oracle.None{}})

	t.Run("closes syntactic equality", func(t *testing.T) {
		subs, err := step(goal.New("g", logic.Eq("x", "x")))
		require.NoError(t, err)
		assert.Empty(t, subs)
	})

	t.Run("closes iff on equal sides", func(t *testing.T) {
		p := logic.And(logic.Atom("a"), logic.Atom("b"))
		subs, err := step(goal.New("g", logic.Iff(p, p)))
		require.NoError(t, err)
		assert.Empty(t, subs)
	})

	t.Run("fails on distinct sides", func(t *testing.T) {
		_, err := step(goal.New("g", logic.Eq("x", "y")))
		require.Error(t, err)
		assert.False(t, engine.IsFatal(err))
	})

	t.Run("fails on atoms", func(t *testing.T) {
		_, err := step(goal.New("g", logic.Atom("p")))
		require.Error(t, err)
	})
}

func TestAssumption(t *testing.T) {
	step := buildStep(t, Invocation{Tactic: "assumption"}, Env{Oracle: oracle.None{}})

	g := goal.New("g", logic.Atom("p"), goal.Hyp{Name: "h", Prop: logic.Atom("p")})
	subs, err := step(g)
	require.NoError(t, err)
	assert.Empty(t, subs)

	_, err = step(goal.New("g", logic.Atom("q"), goal.Hyp{Name: "h", Prop: logic.Atom("p")}))
	assert.Error(t, err)
}

func TestTrivStrategyOrder(t *testing.T) {
	env := Env{Oracle: oracle.Static{"sunny": true, "stormy": false}}
	step := buildStep(t, Invocation{Tactic: "triv"}, env)

	cases := []struct {
		name   string
		g      goal.Goal
		closed bool
	}{
		{"true target", goal.New("g", logic.True()), true},
		{"assumption", goal.New("g", logic.Atom("p"), goal.Hyp{Name: "h", Prop: logic.Atom("p")}), true},
		{"refl", goal.New("g", logic.Eq("a", "a")), true},
		{"contradictory context", goal.New("g", logic.Atom("anything"),
			goal.Hyp{Name: "h1", Prop: logic.Atom("p")},
			goal.Hyp{Name: "h2", Prop: logic.Not(logic.Atom("p"))}), true},
		{"oracle true atom", goal.New("g", logic.Atom("sunny")), true},
		{"oracle false atom", goal.New("g", logic.Atom("stormy")), false},
		{"unknown atom", goal.New("g", logic.Atom("fog")), false},
		{"compound", goal.New("g", logic.And(logic.Atom("p"), logic.Atom("q"))), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subs, err := step(tc.g)
			if tc.closed {
				require.NoError(t, err)
				assert.Empty(t, subs)
			} else {
				require.Error(t, err)
				assert.False(t, engine.IsFatal(err))
			}
		})
	}
}

type brokenOracle struct{}

func (brokenOracle) Decide(string) (bool, bool, error) {
	return false, false, assert.AnError
}

func TestOracleBreakageIsFatal(t *testing.T) {
	step := buildStep(t, Invocation{Tactic: "triv"}, Env{Oracle: brokenOracle{}})
	_, err := step(goal.New("g", logic.Atom("p")))
	require.Error(t, err)
	assert.True(t, engine.IsFatal(err), "oracle errors must not be swallowed as ordinary failures")
}

func TestFApply(t *testing.T) {
	chain := logic.Imp(logic.Atom("a"), logic.Imp(logic.Atom("b"), logic.Atom("c")))
	g := goal.New("g", logic.Atom("c"), goal.Hyp{Name: "h", Prop: chain})

	step := buildStep(t, Invocation{Tactic: "fapply", Hyp: "h"}, Env{Oracle: oracle.None{}})
	subs, err := step(g)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	// Declaration order, even for obligations the context could discharge.
	assert.True(t, subs[0].Target.Equal(logic.Atom("a")))
	assert.True(t, subs[1].Target.Equal(logic.Atom("b")))

	t.Run("conclusion mismatch fails", func(t *testing.T) {
		_, err := step(goal.New("g", logic.Atom("d"), goal.Hyp{Name: "h", Prop: chain}))
		require.Error(t, err)
	})

	t.Run("missing hypothesis fails", func(t *testing.T) {
		_, err := step(goal.New("g", logic.Atom("c")))
		require.Error(t, err)
	})
}

func TestEApplyPostponesSatisfiedSubgoals(t *testing.T) {
	chain := logic.Imp(logic.Atom("a"), logic.Imp(logic.Atom("b"), logic.Atom("c")))
	g := goal.New("g", logic.Atom("c"),
		goal.Hyp{Name: "h", Prop: chain},
		goal.Hyp{Name: "ha", Prop: logic.Atom("a")})

	step := buildStep(t, Invocation{Tactic: "eapply", Hyp: "h"}, Env{Oracle: oracle.None{}})
	subs, err := step(g)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	// a is already in context, so it is postponed behind b.
	assert.True(t, subs[0].Target.Equal(logic.Atom("b")))
	assert.True(t, subs[1].Target.Equal(logic.Atom("a")))
}

func TestByCases(t *testing.T) {
	p := logic.Atom("rain")

	t.Run("decided atom splits in two", func(t *testing.T) {
		env := Env{Oracle: oracle.Static{"rain": true}}
		step := buildStep(t, Invocation{Tactic: "by_cases", Name: "h", Prop: &p}, env)
		subs, err := step(goal.New("g", logic.Atom("wet")))
		require.NoError(t, err)
		require.Len(t, subs, 2)

		pos, ok := subs[0].Hyp("h")
		require.True(t, ok)
		assert.True(t, pos.Prop.Equal(p))

		neg, ok := subs[1].Hyp("h")
		require.True(t, ok)
		assert.True(t, neg.Prop.Equal(logic.Not(p)))
	})

	t.Run("unknown atom fails without classical", func(t *testing.T) {
		step := buildStep(t, Invocation{Tactic: "by_cases", Name: "h", Prop: &p}, Env{Oracle: oracle.None{}})
		_, err := step(goal.New("g", logic.Atom("wet")))
		require.Error(t, err)
		assert.False(t, engine.IsFatal(err))
	})

	t.Run("classical mode splits anything", func(t *testing.T) {
		q := logic.And(logic.Atom("a"), logic.Atom("b"))
		step := buildStep(t, Invocation{Tactic: "by_cases", Name: "h", Prop: &q},
			Env{Oracle: oracle.None{}, Classical: true})
		subs, err := step(goal.New("g", logic.Atom("wet")))
		require.NoError(t, err)
		assert.Len(t, subs, 2)
	})

	t.Run("missing arguments rejected at build time", func(t *testing.T) {
		rule, _ := Lookup("by_cases")
		_, err := rule.Build(Invocation{Tactic: "by_cases"}, Env{Oracle: oracle.None{}})
		require.Error(t, err)
	})
}

func TestByContraStrategyOrder(t *testing.T) {
	t.Run("negated target uses intro form", func(t *testing.T) {
		// Classical mode on: neg_intro must still win for negated targets.
		env := Env{Oracle: oracle.None{}, Classical: true}
		step := buildStep(t, Invocation{Tactic: "by_contra", Name: "h"}, env)
		subs, err := step(goal.New("g", logic.Not(logic.Atom("p"))))
		require.NoError(t, err)
		require.Len(t, subs, 1)

		assert.Equal(t, logic.KindFalse, subs[0].Target.Kind)
		h, ok := subs[0].Hyp("h")
		require.True(t, ok)
		// Intro form: hypothesis is p itself, not ~~p.
		assert.True(t, h.Prop.Equal(logic.Atom("p")))
	})

	t.Run("decidable atom gets negated hypothesis", func(t *testing.T) {
		env := Env{Oracle: oracle.Static{"p": true}}
		step := buildStep(t, Invocation{Tactic: "by_contra", Name: "h"}, env)
		subs, err := step(goal.New("g", logic.Atom("p")))
		require.NoError(t, err)
		require.Len(t, subs, 1)

		h, ok := subs[0].Hyp("h")
		require.True(t, ok)
		assert.True(t, h.Prop.Equal(logic.Not(logic.Atom("p"))))
	})

	t.Run("classical fallback", func(t *testing.T) {
		env := Env{Oracle: oracle.None{}, Classical: true}
		step := buildStep(t, Invocation{Tactic: "by_contra", Name: "h"}, env)
		subs, err := step(goal.New("g", logic.Or(logic.Atom("p"), logic.Not(logic.Atom("p")))))
		require.NoError(t, err)
		assert.Len(t, subs, 1)
	})

	t.Run("no strategy applies", func(t *testing.T) {
		env := Env{Oracle: oracle.None{}}
		step := buildStep(t, Invocation{Tactic: "by_contra", Name: "h"}, env)
		_, err := step(goal.New("g", logic.Atom("p")))
		require.Error(t, err)
		assert.False(t, engine.IsFatal(err))
	})

	t.Run("default hypothesis name", func(t *testing.T) {
		env := Env{Oracle: oracle.None{}}
		step := buildStep(t, Invocation{Tactic: "by_contra"}, env)
		subs, err := step(goal.New("g", logic.Not(logic.Atom("p"))))
		require.NoError(t, err)
		_, ok := subs[0].Hyp("h")
		assert.True(t, ok)
	})
}
