// Command depsolve is a thin driver over the depsolver package: it
// loads a scenario YAML fixture, runs a solve or a satisfiability check,
// and prints the result.
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	commands := []command{
		&solveCommand{},
		&checkCommand{},
	}

	if len(os.Args) < 2 {
		usage(commands)
		os.Exit(1)
	}

	name := os.Args[1]
	for _, c := range commands {
		if c.Name() != name {
			continue
		}
		fs := flag.NewFlagSet(c.Name(), flag.ExitOnError)
		c.Register(fs)
		if err := fs.Parse(os.Args[2:]); err != nil {
			os.Exit(2)
		}
		if err := c.Run(fs.Args()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "depsolve: unrecognized command %q\n\n", name)
	usage(commands)
	os.Exit(1)
}

func usage(commands []command) {
	fmt.Fprintln(os.Stderr, "usage: depsolve <command> [arguments]")
	fmt.Fprintln(os.Stderr, "\ncommands:")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-10s %-18s %s\n", c.Name(), c.Args(), c.ShortHelp())
	}
}
