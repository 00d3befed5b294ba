// Package trace materializes the derivation tree of a tactic run: which
// rule touched which goal and what obligations it left behind. Traces are
// rendered as ASCII for terminals and JSON for tooling.
package trace

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tactician/internal/goal"
)

// Outcome classifies what a rule application did to a goal.
type Outcome string

const (
	OutcomeClosed Outcome = "closed" // no subgoals remained
	OutcomeSplit  Outcome = "split"  // replaced by one or more subgoals
	OutcomeOpen   Outcome = "open"   // never discharged by any rule
)

// Node is one goal in the derivation tree.
type Node struct {
	GoalID   string
	Sequent  string // pretty-printed goal at the time it was recorded
	Rule     string // rule that discharged or split it ("" while open)
	Outcome  Outcome
	Children []*Node
	Depth    int
}

// Trace is the complete derivation tree of one run.
type Trace struct {
	Roots    []*Node
	Duration time.Duration
	Applied  int // successful rule applications
}

// Recorder accumulates rule applications as a run progresses. It is not
// safe for concurrent use; a run owns its recorder.
type Recorder struct {
	nodes   map[string]*Node
	roots   []*Node
	applied int
	start   time.Time
}

// NewRecorder starts recording with the run's initial goals as roots.
func NewRecorder(goals goal.List) *Recorder {
	r := &Recorder{
		nodes: make(map[string]*Node, len(goals)),
		start: time.Now(),
	}
	for _, g := range goals {
		n := r.insert(g, 0)
		r.roots = append(r.roots, n)
	}
	return r
}

func (r *Recorder) insert(g goal.Goal, depth int) *Node {
	if n, ok := r.nodes[g.ID]; ok {
		return n
	}
	n := &Node{
		GoalID:  g.ID,
		Sequent: g.String(),
		Outcome: OutcomeOpen,
		Depth:   depth,
	}
	r.nodes[g.ID] = n
	return n
}

// Apply records a successful rule application on g that produced subgoals.
// Goals the recorder has never seen (produced inside nested blocks) are
// adopted as they appear. The tree records applications as attempted: an
// application inside a block whose later steps failed was rolled back by
// the engine but still appears here; re-applying a rule to the same goal
// replaces the earlier attempt.
func (r *Recorder) Apply(g goal.Goal, rule string, subgoals goal.List) {
	r.applied++
	parent := r.insert(g, 0)
	parent.Rule = rule
	parent.Children = nil
	if len(subgoals) == 0 {
		parent.Outcome = OutcomeClosed
		return
	}
	parent.Outcome = OutcomeSplit
	for _, sub := range subgoals {
		child := r.insert(sub, parent.Depth+1)
		child.Depth = parent.Depth + 1
		parent.Children = append(parent.Children, child)
	}
}

// Tree finalizes the recording.
func (r *Recorder) Tree() *Trace {
	return &Trace{
		Roots:    r.roots,
		Duration: time.Since(r.start),
		Applied:  r.applied,
	}
}

// OpenCount returns the number of leaves still open.
func (t *Trace) OpenCount() int {
	count := 0
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Outcome == OutcomeOpen {
			count++
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, root := range t.Roots {
		walk(root)
	}
	return count
}

// RenderASCII renders the derivation tree as indented ASCII art.
func (t *Trace) RenderASCII() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d rule applications in %v\n", t.Applied, t.Duration.Round(time.Microsecond))
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	for i, root := range t.Roots {
		fmt.Fprintf(&sb, "\nGoal %d:\n", i+1)
		renderNode(&sb, root, "", true)
	}
	return sb.String()
}

func renderNode(sb *strings.Builder, n *Node, prefix string, last bool) {
	connector := "├── "
	if last {
		connector = "└── "
	}
	label := string(n.Outcome)
	if n.Rule != "" {
		label = fmt.Sprintf("%s by %s", n.Outcome, n.Rule)
	}
	fmt.Fprintf(sb, "%s%s%s  [%s]\n", prefix, connector, n.Sequent, label)

	childPrefix := prefix
	if last {
		childPrefix += "    "
	} else {
		childPrefix += "│   "
	}
	for i, c := range n.Children {
		renderNode(sb, c, childPrefix, i == len(n.Children)-1)
	}
}

type jsonNode struct {
	GoalID   string      `json:"goal_id"`
	Sequent  string      `json:"sequent"`
	Rule     string      `json:"rule,omitempty"`
	Outcome  Outcome     `json:"outcome"`
	Children []*jsonNode `json:"children,omitempty"`
}

// RenderJSON renders the derivation tree as indented JSON.
func (t *Trace) RenderJSON() ([]byte, error) {
	var convert func(*Node) *jsonNode
	convert = func(n *Node) *jsonNode {
		jn := &jsonNode{
			GoalID:  n.GoalID,
			Sequent: n.Sequent,
			Rule:    n.Rule,
			Outcome: n.Outcome,
		}
		for _, c := range n.Children {
			jn.Children = append(jn.Children, convert(c))
		}
		return jn
	}

	payload := struct {
		Applied  int         `json:"applied"`
		Duration string      `json:"duration"`
		Roots    []*jsonNode `json:"roots"`
	}{
		Applied:  t.Applied,
		Duration: t.Duration.String(),
	}
	for _, root := range t.Roots {
		payload.Roots = append(payload.Roots, convert(root))
	}
	return json.MarshalIndent(payload, "", "  ")
}
