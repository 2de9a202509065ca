package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/bobmcallan/stockverse/internal/cli"
)

func main() {
	c := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")
	cli.Register(c)

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(c.Execute(ctx)))
}
