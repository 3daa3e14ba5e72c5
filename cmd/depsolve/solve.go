package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/depsolver/depsolver"
	"github.com/depsolver/depsolver/internal/diagnostics"
	"github.com/depsolver/depsolver/internal/policy"
	"github.com/depsolver/depsolver/internal/pool"
	"github.com/depsolver/depsolver/internal/scenario"
	"github.com/depsolver/depsolver/internal/txn"
	"github.com/depsolver/depsolver/pkg/pkgrepo"
	"github.com/depsolver/depsolver/pkg/solveerr"
)

type solveCommand struct {
	noPrune  bool
	debug    bool
	printIDs bool
	strict   bool
}

func (c *solveCommand) Name() string      { return "solve" }
func (c *solveCommand) Args() string      { return "<scenario.yaml>" }
func (c *solveCommand) ShortHelp() string { return "solve a scenario and print the resulting transaction" }

func (c *solveCommand) Register(fs *flag.FlagSet) {
	fs.BoolVar(&c.noPrune, "no-prune", false, "disable reachability pruning of solver-introduced installs")
	fs.BoolVar(&c.debug, "debug", false, "emit the policy decision log to stderr")
	fs.BoolVar(&c.printIDs, "print-ids", false, "print pool ids alongside package names")
	fs.BoolVar(&c.strict, "strict", false, "fail immediately on an unmet install_requires instead of an impossible-package clause")
}

func (c *solveCommand) Run(args []string) error {
	if len(args) != 1 {
		return errors.New("solve: expected exactly one scenario path")
	}

	f, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	repo, installed, req, err := f.Build()
	if err != nil {
		return err
	}
	p := pool.New(repo)

	var logger decisionLogger
	opts := depsolver.SolveOptions{NoPrune: c.noPrune, Strict: c.strict}
	if c.debug {
		opts.Logger = &logger
	}

	t, err := depsolver.Solve(p, installed, req, opts)

	if c.debug {
		logger.printTo(os.Stderr, p)
	}
	if err != nil {
		var satErr *solveerr.SatisfiabilityError
		if errors.As(err, &satErr) {
			fmt.Fprintln(os.Stderr, diagnostics.Render(satErr.Rules))
			os.Exit(1)
		}
		return err
	}

	printTransaction(os.Stdout, t, p, c.printIDs)
	return nil
}

func printTransaction(w *os.File, t *txn.Transaction, p *pool.Pool, printIDs bool) {
	for _, op := range t.PrettyOperations {
		switch op.Kind {
		case txn.Install:
			fmt.Fprintf(w, "install %s\n", formatPkg(op.New, p, printIDs))
		case txn.Remove:
			fmt.Fprintf(w, "remove %s\n", formatPkg(op.Old, p, printIDs))
		case txn.UpdateKind:
			fmt.Fprintf(w, "update %s -> %s\n", formatPkg(op.Old, p, printIDs), formatPkg(op.New, p, printIDs))
		}
	}
}

func formatPkg(pkg *pkgrepo.Package, p *pool.Pool, printIDs bool) string {
	if !printIDs {
		return pkg.String()
	}
	id, _ := p.IDOf(pkg)
	return fmt.Sprintf("%s [#%d]", pkg, id)
}

// decisionLogger adapts depsolver.DecisionLogger to a --debug text dump.
type decisionLogger struct {
	entries []policy.LogEntry
}

func (d *decisionLogger) LogDecisions(entries []policy.LogEntry) {
	d.entries = entries
}

func (d *decisionLogger) printTo(w *os.File, p *pool.Pool) {
	for _, e := range d.entries {
		fmt.Fprintf(w, "decision %d: %s (%s)\n", e.Seq, e.Lit, e.Reason)
	}
}
