package problem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tactician/internal/logic"
	"tactician/internal/oracle"
)

const sampleProblem = `
name: wet streets
goals:
  - name: main
    target: {atom: wet_street}
    hyps:
      - name: h
        prop: {imp: [{atom: rain}, {atom: wet_street}]}
script:
  - tactic: fapply
    hyp: h
  - tactic: triv
oracle:
  static:
    rain: true
`

func TestParseSample(t *testing.T) {
	p, err := Parse([]byte(sampleProblem))
	require.NoError(t, err)

	assert.Equal(t, "wet streets", p.Name)
	require.Len(t, p.Goals, 1)
	assert.Equal(t, "main", p.Goals[0].Name)
	assert.True(t, p.Goals[0].Target.Equal(logic.Atom("wet_street")))
	require.Len(t, p.Goals[0].Hyps, 1)
	assert.True(t, p.Goals[0].Hyps[0].Prop.Equal(
		logic.Imp(logic.Atom("rain"), logic.Atom("wet_street"))))

	require.Len(t, p.Script, 2)
	assert.Equal(t, "fapply", p.Script[0].Tactic)
	assert.Equal(t, "h", p.Script[0].Hyp)
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleProblem), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "wet streets", p.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGoalListFreshIDs(t *testing.T) {
	p, err := Parse([]byte(sampleProblem))
	require.NoError(t, err)

	a := p.GoalList()
	b := p.GoalList()
	require.Len(t, a, 1)
	assert.NotEmpty(t, a[0].ID)
	assert.NotEqual(t, a[0].ID, b[0].ID, "each materialization gets fresh IDs")
}

func TestBuildOracle(t *testing.T) {
	t.Run("static", func(t *testing.T) {
		p, err := Parse([]byte(sampleProblem))
		require.NoError(t, err)
		o, err := p.BuildOracle()
		require.NoError(t, err)
		truth, known, err := o.Decide("rain")
		require.NoError(t, err)
		assert.True(t, known)
		assert.True(t, truth)
	})

	t.Run("none by default", func(t *testing.T) {
		p, err := Parse([]byte(`
goals:
  - name: g
    target: {atom: p}
script:
  - tactic: triv
`))
		require.NoError(t, err)
		o, err := p.BuildOracle()
		require.NoError(t, err)
		assert.IsType(t, oracle.None{}, o)
	})

	t.Run("datalog", func(t *testing.T) {
		p, err := Parse([]byte(`
goals:
  - name: g
    target: {atom: street_is_wet}
script:
  - tactic: triv
oracle:
  ruleset: |
    Decl wet(X).
    holds(/street_is_wet) :- wet(/rain).
  facts:
    - wet(/rain)
`))
		require.NoError(t, err)
		o, err := p.BuildOracle()
		require.NoError(t, err)
		truth, known, err := o.Decide("street_is_wet")
		require.NoError(t, err)
		assert.True(t, known)
		assert.True(t, truth)
	})
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"no goals", `
script:
  - tactic: triv
`},
		{"no script", `
goals:
  - name: g
    target: {atom: p}
`},
		{"unnamed goal", `
goals:
  - target: {atom: p}
script:
  - tactic: triv
`},
		{"duplicate goal name", `
goals:
  - name: g
    target: {atom: p}
  - name: g
    target: {atom: q}
script:
  - tactic: triv
`},
		{"duplicate hypothesis", `
goals:
  - name: g
    target: {atom: p}
    hyps:
      - name: h
        prop: {atom: a}
      - name: h
        prop: {atom: b}
script:
  - tactic: triv
`},
		{"static and ruleset together", `
goals:
  - name: g
    target: {atom: p}
script:
  - tactic: triv
oracle:
  static: {p: true}
  ruleset: "holds(/p)."
`},
		{"malformed yaml", "goals: ["},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src))
			assert.Error(t, err)
		})
	}
}
