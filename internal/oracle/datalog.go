package oracle

import (
	"fmt"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"tactician/internal/logging"
)

// Verdict predicates. A ruleset may derive these from arbitrary base facts;
// Decide only ever reads them.
const (
	predHolds   = "holds"
	predRefuted = "refuted"
)

// DefaultRuleset declares the verdict predicates. Problem rulesets are
// appended after it, so they only need their own Decls and rules.
const DefaultRuleset = `
Decl holds(X).
Decl refuted(X).
`

// Datalog is an Oracle backed by a Mangle program: base facts plus rules
// are evaluated to a fixed point once, then Decide is a lookup against the
// saturated store.
type Datalog struct {
	store factstore.FactStore
	info  *analysis.ProgramInfo
	syms  map[string]ast.PredicateSym
}

// NewDatalog compiles ruleset (appended to DefaultRuleset), inserts the
// given base facts (Mangle atom syntax, e.g. "wet(/street)"), and
// saturates. The result is immutable.
func NewDatalog(ruleset string, facts []string) (*Datalog, error) {
	timer := logging.StartTimer(logging.CategoryOracle, "NewDatalog")
	defer timer.Stop()

	unit, err := parse.Unit(strings.NewReader(DefaultRuleset + ruleset))
	if err != nil {
		return nil, fmt.Errorf("parse ruleset: %w", err)
	}
	info, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("analyze ruleset: %w", err)
	}

	syms := make(map[string]ast.PredicateSym, len(info.Decls))
	for sym := range info.Decls {
		syms[sym.Symbol] = sym
	}

	store := factstore.NewSimpleInMemoryStore()
	for _, f := range facts {
		atom, err := parseFact(f)
		if err != nil {
			return nil, err
		}
		if _, ok := syms[atom.Predicate.Symbol]; !ok {
			return nil, fmt.Errorf("fact %q uses undeclared predicate %s", f, atom.Predicate.Symbol)
		}
		// Reparsed atoms carry arity-only predicate syms; rebind to the
		// declared one so store lookups agree.
		atom.Predicate = syms[atom.Predicate.Symbol]
		store.Add(atom)
	}

	if _, err := mengine.EvalProgramWithStats(info, store); err != nil {
		return nil, fmt.Errorf("evaluate ruleset: %w", err)
	}

	logging.Get(logging.CategoryOracle).Info("oracle saturated: %d facts", store.EstimateFactCount())
	return &Datalog{store: store, info: info, syms: syms}, nil
}

func parseFact(src string) (ast.Atom, error) {
	clean := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(src), "."))
	atom, err := parse.Atom(clean)
	if err != nil {
		return ast.Atom{}, fmt.Errorf("parse fact %q: %w", src, err)
	}
	for _, arg := range atom.Args {
		if _, ok := arg.(ast.Constant); !ok {
			return ast.Atom{}, fmt.Errorf("fact %q has non-constant argument %v", src, arg)
		}
	}
	return atom, nil
}

// Decide reports holds(/atom) or refuted(/atom) from the saturated store.
// Contradictory verdicts are an error rather than a silent pick.
func (d *Datalog) Decide(atom string) (bool, bool, error) {
	name, err := ast.Name("/" + atom)
	if err != nil {
		return false, false, fmt.Errorf("atom %q is not a legal constant name: %w", atom, err)
	}

	holds, err := d.verdict(predHolds, name)
	if err != nil {
		return false, false, err
	}
	refuted, err := d.verdict(predRefuted, name)
	if err != nil {
		return false, false, err
	}

	logging.Get(logging.CategoryOracle).Debug("decide %s: holds=%v refuted=%v", atom, holds, refuted)
	switch {
	case holds && refuted:
		return false, false, fmt.Errorf("oracle derives both holds and refuted for %s", atom)
	case holds:
		return true, true, nil
	case refuted:
		return false, true, nil
	default:
		return false, false, nil
	}
}

func (d *Datalog) verdict(pred string, name ast.Constant) (bool, error) {
	sym, ok := d.syms[pred]
	if !ok {
		return false, fmt.Errorf("verdict predicate %s is not declared", pred)
	}
	found := false
	err := d.store.GetFacts(ast.NewQuery(sym), func(fact ast.Atom) error {
		if len(fact.Args) == 1 {
			if c, ok := fact.Args[0].(ast.Constant); ok && c.Symbol == name.Symbol {
				found = true
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("query %s: %w", pred, err)
	}
	return found, nil
}
