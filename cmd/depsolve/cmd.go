package main

import "flag"

// command is the CLI's subcommand dispatch interface: a small, uniform
// shape every subcommand implements so main's dispatch loop never needs
// a type switch.
type command interface {
	Name() string           // e.g. "solve"
	Args() string           // "<scenario.yaml>"
	ShortHelp() string      // one-line summary for the usage listing
	Register(*flag.FlagSet) // subcommand-specific flags
	Run(args []string) error
}
