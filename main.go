package main

import (
	"log/slog"
	"os"

	"skinproc/convert"
	"skinproc/inspect"
	"skinproc/parallel"

	"github.com/alecthomas/kong"
)

var cli struct {
	convert.CLICmd

	Inspect inspect.CLICmd `cmd:"" help:"Report statistics for a swatch texture folder"`

	Workers int `help:"Number of worker goroutines (0 = one per CPU)" default:"0"`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("skinproc"),
		kong.Description("Convert Minecraft skins and capes to block pixel art."))

	pool := parallel.Start(cli.Workers)
	err := kctx.Run(pool.Do, pool.Wait)
	pool.Wait(true)
	if err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
