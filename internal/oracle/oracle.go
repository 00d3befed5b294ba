// Package oracle answers decidability questions for atomic propositions.
// Tactics that branch on decidable facts (case splits, contradiction
// introduction, triv) consult an Oracle instead of embedding any decision
// procedure of their own.
package oracle

// Oracle decides atomic propositions by name. known is false when the
// oracle has no verdict either way; truth is meaningful only when known is
// true.
type Oracle interface {
	Decide(atom string) (truth bool, known bool, err error)
}

// Static is a fixed truth assignment, used in tests and for inline problem
// files that carry their verdicts directly.
type Static map[string]bool

func (s Static) Decide(atom string) (bool, bool, error) {
	truth, ok := s[atom]
	return truth, ok, nil
}

// None knows nothing. It is the default when no ruleset is configured.
type None struct{}

func (None) Decide(string) (bool, bool, error) { return false, false, nil }
