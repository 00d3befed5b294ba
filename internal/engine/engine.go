// Package engine implements the goal-list combinator core: one atomic step
// operation applied across a growing and shrinking worklist of obligations,
// with bounded, fails-soft and fixed-point repetition modes.
//
// The engine treats goals as opaque tokens. It never reorders obligations
// it did not touch, and newly produced subgoals are always processed before
// the goals that were already behind them (depth-first).
//
// Everything here is single-threaded and synchronous. A step may invoke the
// engine recursively on its own slice of goals; nested invocations own
// their worklists and never observe the caller's.
package engine

import (
	"tactician/internal/goal"
)

// Step applies one atomic operation to a single goal. On success it returns
// the (possibly empty) replacement subgoals. Failures are reported through
// *StepError; see errors.go for the ordinary/fatal split. Steps must not
// mutate the goal or retain references to engine state.
type Step func(g goal.Goal) (goal.List, error)

// BoundedRepeat applies step exactly n times in strict sequence. Each
// application replaces the current focus with the subgoals it produced, and
// the next application acts on the first remaining obligation.
//
// The call is atomic: if any of the n applications fails, the error is
// returned and no partial progress escapes — the caller's list is never
// mutated, so the pre-call state is exactly what it still holds.
//
// n = 0 succeeds immediately and returns goals unchanged.
func BoundedRepeat(step Step, n uint, goals goal.List) (goal.List, error) {
	if n == 0 {
		return goals, nil
	}
	work := goals.Clone()
	for i := uint(0); i < n; i++ {
		if work.Empty() {
			return nil, Failf("no goals remain after %d of %d applications", i, n)
		}
		subgoals, err := step(work[0])
		if err != nil {
			return nil, err
		}
		work = work.Replace(0, subgoals)
	}
	return work, nil
}

// UnboundedRepeat applies step to the current first goal until an
// application fails. The first ordinary failure ends the loop and the state
// as of the last successful application is returned; zero successful
// applications is still success. Only fatal errors propagate.
//
// Termination is the step's responsibility: a step that always succeeds on
// a non-empty list never returns.
func UnboundedRepeat(step Step, goals goal.List) (goal.List, error) {
	work := goals
	for !work.Empty() {
		subgoals, err := step(work[0])
		if err != nil {
			if IsFatal(err) {
				return nil, err
			}
			return work, nil
		}
		work = work.Replace(0, subgoals)
	}
	return work, nil
}

// RepeatToFixpoint applies step to every goal in the list. A goal the step
// fails on is kept unchanged; a goal it succeeds on is replaced by its
// subgoals, which are pushed onto the front of the worklist and processed
// before anything already behind them. Passes repeat until one pass makes
// no change. Ordinary failures are swallowed per goal; fatal errors abort
// immediately.
//
// The engine enforces no decrease invariant: a step that always succeeds
// with fresh goals loops forever, and guarding against that is the
// caller's job (see tactic.GuardStep).
func RepeatToFixpoint(step Step, goals goal.List) (goal.List, error) {
	work := goals
	for {
		var (
			done    goal.List
			changed bool
		)
		pending := work.Clone()
		for !pending.Empty() {
			g := pending[0]
			pending = pending[1:]
			subgoals, err := step(g)
			if err != nil {
				if IsFatal(err) {
					return nil, err
				}
				done = append(done, g)
				continue
			}
			changed = true
			next := make(goal.List, 0, len(subgoals)+len(pending))
			next = append(next, subgoals...)
			next = append(next, pending...)
			pending = next
		}
		work = done
		if !changed {
			return work, nil
		}
	}
}
