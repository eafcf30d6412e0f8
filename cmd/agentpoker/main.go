package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Serve   ServeCmd         `cmd:"" help:"Run the poker table server"`
	Equity  EquityCmd        `cmd:"" help:"Estimate hand equity with Monte Carlo simulation"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("agentpoker"),
		kong.Description("Multi-table no-limit hold'em engine for autonomous agents"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
