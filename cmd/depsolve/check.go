package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/depsolver/depsolver"
	"github.com/depsolver/depsolver/internal/scenario"
	"github.com/depsolver/depsolver/pkg/pkgrepo"
	"github.com/depsolver/depsolver/pkg/version"
)

// checkCommand exposes depsolver.RequirementsAreSatisfiable,
// depsolver.RepositoryIsConsistent, and depsolver.RequirementsAreComplete
// for scripting, without running a full solve.
type checkCommand struct {
	mode string
}

func (c *checkCommand) Name() string { return "check" }
func (c *checkCommand) Args() string { return "<scenario.yaml>" }
func (c *checkCommand) ShortHelp() string {
	return "check satisfiability or repository consistency without building a transaction"
}

func (c *checkCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&c.mode, "mode", "satisfiable", "one of: satisfiable, consistent, complete")
}

func (c *checkCommand) Run(args []string) error {
	if len(args) != 1 {
		return errors.New("check: expected exactly one scenario path")
	}

	f, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	repo, _, req, err := f.Build()
	if err != nil {
		return err
	}

	switch c.mode {
	case "satisfiable":
		jobReqs := jobRequirements(req)
		ok, err := depsolver.RequirementsAreSatisfiable([]*pkgrepo.Repository{repo}, jobReqs)
		if err != nil {
			return err
		}
		return report(ok)
	case "consistent":
		ok, err := depsolver.RepositoryIsConsistent(repo)
		if err != nil {
			return err
		}
		return report(ok)
	case "complete":
		jobReqs := jobRequirements(req)
		ok, err := depsolver.RequirementsAreComplete([]*pkgrepo.Repository{repo}, jobReqs)
		if err != nil {
			return err
		}
		return report(ok)
	default:
		return errors.Errorf("check: unrecognized -mode %q", c.mode)
	}
}

func jobRequirements(req depsolver.Request) []version.Requirement {
	out := make([]version.Requirement, len(req.Jobs))
	for i, j := range req.Jobs {
		out[i] = j.Requirement
	}
	return out
}

func report(ok bool) error {
	fmt.Fprintln(os.Stdout, ok)
	if !ok {
		os.Exit(1)
	}
	return nil
}
