package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Server   ServerCmd        `cmd:"" help:"Run the blackjack HTTP server"`
	Play     PlayCmd          `cmd:"" help:"Play interactively against a server"`
	Player   PlayerCmd        `cmd:"" help:"Manage players"`
	Game     GameCmd          `cmd:"" help:"Manage games"`
	Simulate SimulateCmd      `cmd:"" help:"Play automated rounds in-process and report statistics"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Single-player blackjack against a dealer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
