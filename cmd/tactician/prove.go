package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tactician/internal/config"
	"tactician/internal/engine"
	"tactician/internal/oracle"
	"tactician/internal/problem"
	"tactician/internal/store"
	"tactician/internal/tactic"
	"tactician/internal/trace"
	"tactician/internal/watch"
)

var (
	proveTrace     bool
	proveJSON      bool
	proveWatch     bool
	proveClassical bool
	proveMaxSteps  uint
)

var (
	provedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	openStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	fileStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var proveCmd = &cobra.Command{
	Use:   "prove [files...]",
	Short: "Run each problem file's tactic script against its goals",
	Long: `Loads each problem file, builds its oracle, and runs its script.

A problem is proved when the script closes every goal. Open goals after a
clean script run leave the problem open; ordinary tactic failures inside
iterate and repeat are absorbed by those combinators, while fatal errors
abort the run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProve,
}

func init() {
	proveCmd.Flags().BoolVar(&proveTrace, "trace", false, "print the derivation tree")
	proveCmd.Flags().BoolVar(&proveJSON, "json", false, "print the derivation tree as JSON")
	proveCmd.Flags().BoolVar(&proveWatch, "watch", false, "re-run files when they change")
	proveCmd.Flags().BoolVar(&proveClassical, "classical", false, "allow classical strategies regardless of problem settings")
	proveCmd.Flags().UintVar(&proveMaxSteps, "max-steps", 0, "override the step budget (0 uses config)")
}

// result is one file's outcome, for the summary line and the ledger.
type result struct {
	file   string
	run    store.Run
	goals  []store.GoalResult
	proved bool
}

func runProve(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var ledger *store.Ledger
	if cfg.Ledger.Enabled {
		var err error
		ledger, err = store.Open(cfg.Ledger.Path)
		if err != nil {
			logger.Warn("run ledger unavailable", zap.Error(err))
		} else {
			defer ledger.Close()
		}
	}

	allProved, err := proveFiles(ctx, args, ledger)
	if err != nil {
		return err
	}

	if proveWatch {
		return watchFiles(ctx, args, ledger)
	}
	if !allProved {
		// Exit happens in main, after deferred closers and the
		// PersistentPostRun hooks have run.
		exitCode = 1
	}
	return nil
}

// proveFiles proves each file concurrently and prints per-file reports in
// argument order once all runs finish.
func proveFiles(ctx context.Context, files []string, ledger *store.Ledger) (bool, error) {
	var mu sync.Mutex
	results := make(map[string]result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := proveOne(file)
			mu.Lock()
			results[file] = res
			mu.Unlock()
			if ledger != nil {
				if _, err := ledger.RecordRun(res.run, res.goals); err != nil {
					logger.Warn("failed to record run", zap.String("file", file), zap.Error(err))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	allProved := true
	for _, file := range files {
		res := results[file]
		if !res.proved {
			allProved = false
		}
	}
	printSummary(files, results)
	return allProved, nil
}

// proveOne loads, runs, and reports a single problem file. Failures become
// an "error" result rather than an error return so one bad file does not
// abort a batch.
func proveOne(file string) result {
	started := time.Now()
	fail := func(err error) result {
		logger.Error("prove failed", zap.String("file", file), zap.Error(err))
		return result{
			file: file,
			run: store.Run{
				Problem:  file,
				Started:  started,
				Duration: time.Since(started),
				Status:   "error",
				Error:    err.Error(),
			},
		}
	}

	p, err := problem.Load(file)
	if err != nil {
		return fail(err)
	}
	orc, err := buildOracle(p, cfg)
	if err != nil {
		return fail(err)
	}

	maxSteps := cfg.Engine.MaxSteps
	if proveMaxSteps > 0 {
		maxSteps = proveMaxSteps
	}
	env := tactic.Env{
		Oracle:    orc,
		Classical: p.Classical || cfg.Engine.Classical || proveClassical,
		MaxSteps:  maxSteps,
	}

	goals := p.GoalList()
	rec := trace.NewRecorder(goals)
	runner := tactic.NewRunner(env)
	runner.SetRecorder(rec)

	remaining, runErr := runner.Run(goals, p.Script)
	tr := rec.Tree()

	res := result{
		file: file,
		run: store.Run{
			Problem:  file,
			Started:  started,
			Duration: time.Since(started),
			Applied:  tr.Applied,
		},
	}

	open := make(map[string]bool, len(remaining))
	for _, g := range remaining {
		open[g.ID] = true
	}
	ruleFor := make(map[string]string, len(tr.Roots))
	for _, root := range tr.Roots {
		ruleFor[root.GoalID] = root.Rule
	}
	for _, g := range goals {
		outcome := "closed"
		if runErr != nil || open[g.ID] {
			outcome = "open"
		}
		if outcome == "closed" {
			res.run.Closed++
		} else {
			res.run.Open++
		}
		res.goals = append(res.goals, store.GoalResult{
			Goal:    g.Name,
			Rule:    ruleFor[g.ID],
			Outcome: outcome,
		})
	}

	switch {
	case runErr != nil:
		res.run.Status = "error"
		res.run.Error = runErr.Error()
		if engine.IsFatal(runErr) {
			logger.Error("fatal tactic error", zap.String("file", file), zap.Error(runErr))
		}
	case len(remaining) == 0:
		res.run.Status = "proved"
		res.proved = true
	default:
		res.run.Status = "open"
	}

	printReport(file, res, tr)
	return res
}

// buildOracle prefers the problem's own oracle; a config-level ruleset file
// backs problems that declare none.
func buildOracle(p *problem.Problem, cfg *config.Config) (oracle.Oracle, error) {
	if len(p.Oracle.Static) > 0 || p.Oracle.Ruleset != "" || len(p.Oracle.Facts) > 0 {
		return p.BuildOracle()
	}
	if cfg.Oracle.RulesetPath != "" {
		rules, err := os.ReadFile(cfg.Oracle.RulesetPath)
		if err != nil {
			return nil, fmt.Errorf("read oracle ruleset: %w", err)
		}
		return oracle.NewDatalog(string(rules), nil)
	}
	return oracle.None{}, nil
}

var printMu sync.Mutex

func printReport(file string, res result, tr *trace.Trace) {
	printMu.Lock()
	defer printMu.Unlock()

	var badge string
	switch res.run.Status {
	case "proved":
		badge = provedStyle.Render("PROVED")
	case "open":
		badge = openStyle.Render(fmt.Sprintf("OPEN (%d)", res.run.Open))
	default:
		badge = errorStyle.Render("ERROR")
	}
	fmt.Printf("%s %s %s\n", badge, fileStyle.Render(file),
		dimStyle.Render(fmt.Sprintf("(%d applied, %s)", res.run.Applied, res.run.Duration.Round(time.Millisecond))))
	if res.run.Error != "" {
		fmt.Printf("  %s\n", errorStyle.Render(res.run.Error))
	}

	if proveJSON && tr != nil {
		if data, err := tr.RenderJSON(); err == nil {
			fmt.Println(string(data))
		}
	} else if proveTrace && tr != nil {
		fmt.Print(tr.RenderASCII())
	}
}

func printSummary(files []string, results map[string]result) {
	if len(files) < 2 {
		return
	}
	proved, open, errored := 0, 0, 0
	for _, res := range results {
		switch res.run.Status {
		case "proved":
			proved++
		case "open":
			open++
		default:
			errored++
		}
	}
	parts := []string{provedStyle.Render(fmt.Sprintf("%d proved", proved))}
	if open > 0 {
		parts = append(parts, openStyle.Render(fmt.Sprintf("%d open", open)))
	}
	if errored > 0 {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("%d errored", errored)))
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += dimStyle.Render(", ") + p
	}
	fmt.Printf("%s %s\n", dimStyle.Render(fmt.Sprintf("%d files:", len(files))), out)
}

// watchFiles blocks, re-proving a file whenever it settles after an edit.
func watchFiles(ctx context.Context, files []string, ledger *store.Ledger) error {
	w, err := watch.New(files, func(ctx context.Context, path string) {
		res := proveOne(path)
		if ledger != nil {
			if _, err := ledger.RecordRun(res.run, res.goals); err != nil {
				logger.Warn("failed to record run", zap.String("file", path), zap.Error(err))
			}
		}
	})
	if err != nil {
		return err
	}
	w.Start(ctx)
	defer w.Stop()

	fmt.Println(dimStyle.Render("watching for changes, ^C to stop"))
	<-ctx.Done()
	return nil
}
