package main

import (
	"github.com/alecthomas/kong"

	"github.com/vukan322/devfolio/cmd/devfolio/commands"
)

var version = "dev"

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{}
	ctx := kong.Parse(cli,
		kong.Name("devfolio"),
		kong.Description("Personal site with a live developer metrics grid."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Bind(global),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
