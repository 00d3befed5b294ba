// Package problem loads proof problems from YAML files: named goals, an
// oracle description and a tactic script. Propositions are structured YAML
// nodes; nothing in a problem file is ever parsed as surface syntax.
package problem

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tactician/internal/goal"
	"tactician/internal/logic"
	"tactician/internal/logging"
	"tactician/internal/oracle"
	"tactician/internal/tactic"
)

// GoalSpec is one declared obligation.
type GoalSpec struct {
	Name   string     `yaml:"name"`
	Target logic.Prop `yaml:"target"`
	Hyps   []goal.Hyp `yaml:"hyps,omitempty"`
}

// OracleSpec describes the decidability oracle. Static verdicts and a
// Datalog ruleset are mutually exclusive.
type OracleSpec struct {
	Static  map[string]bool `yaml:"static,omitempty"`
	Ruleset string          `yaml:"ruleset,omitempty"`
	Facts   []string        `yaml:"facts,omitempty"`
}

// Problem is one problem file.
type Problem struct {
	Name      string              `yaml:"name"`
	Classical bool                `yaml:"classical,omitempty"`
	Oracle    OracleSpec          `yaml:"oracle,omitempty"`
	Goals     []GoalSpec          `yaml:"goals"`
	Script    []tactic.Invocation `yaml:"script"`
}

// Load reads and validates a problem file.
func Load(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read problem file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logging.Get(logging.CategoryScript).Info("loaded %s: %d goals, %d script entries", path, len(p.Goals), len(p.Script))
	return p, nil
}

// Parse decodes and validates problem bytes.
func Parse(data []byte) (*Problem, error) {
	var p Problem
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode problem: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Problem) validate() error {
	if len(p.Goals) == 0 {
		return fmt.Errorf("problem declares no goals")
	}
	seen := make(map[string]bool, len(p.Goals))
	for i, g := range p.Goals {
		if g.Name == "" {
			return fmt.Errorf("goal %d has no name", i)
		}
		if seen[g.Name] {
			return fmt.Errorf("duplicate goal name %q", g.Name)
		}
		seen[g.Name] = true
		hypNames := make(map[string]bool, len(g.Hyps))
		for _, h := range g.Hyps {
			if h.Name == "" {
				return fmt.Errorf("goal %q has an unnamed hypothesis", g.Name)
			}
			if hypNames[h.Name] {
				return fmt.Errorf("goal %q repeats hypothesis %q", g.Name, h.Name)
			}
			hypNames[h.Name] = true
		}
	}
	if len(p.Script) == 0 {
		return fmt.Errorf("problem declares no script")
	}
	if len(p.Oracle.Static) > 0 && (p.Oracle.Ruleset != "" || len(p.Oracle.Facts) > 0) {
		return fmt.Errorf("oracle: static verdicts and a ruleset are mutually exclusive")
	}
	return nil
}

// GoalList materializes the declared goals with fresh IDs.
func (p *Problem) GoalList() goal.List {
	out := make(goal.List, len(p.Goals))
	for i, spec := range p.Goals {
		out[i] = goal.New(spec.Name, spec.Target, spec.Hyps...)
	}
	return out
}

// BuildOracle constructs the configured oracle.
func (p *Problem) BuildOracle() (oracle.Oracle, error) {
	switch {
	case len(p.Oracle.Static) > 0:
		return oracle.Static(p.Oracle.Static), nil
	case p.Oracle.Ruleset != "" || len(p.Oracle.Facts) > 0:
		return oracle.NewDatalog(p.Oracle.Ruleset, p.Oracle.Facts)
	default:
		return oracle.None{}, nil
	}
}
