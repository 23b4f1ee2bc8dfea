// Command bk maintains GnuCash style books: it imports share price quotes,
// fetches them from online sources and prunes old transactions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/etnz/book/cmd"
	"github.com/google/subcommands"
)

var version = flag.Bool("version", false, "print the version and exit")

func main() {
	cmd.Completion().Complete("bk")

	commander := subcommands.NewCommander(flag.CommandLine, "bk")
	cmd.Register(commander)
	flag.Parse()

	if *version {
		v := "devel"
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
			v = info.Main.Version
		}
		fmt.Println("bk", v)
		return
	}
	if err := cmd.Setup(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(int(subcommands.ExitUsageError))
	}
	if name := flag.Arg(0); name != "" && !cmd.IsCommand(name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}
