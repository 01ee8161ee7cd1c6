package main

import (
	"log/slog"
	"os"

	"rawpix/config"
	"rawpix/convert"
	"rawpix/inspect"
	"rawpix/parallel"

	"github.com/alecthomas/kong"
)

var cli struct {
	Config   string `help:"YAML file with default settings" type:"path" env:"RAWPIX_CONFIG"`
	Workers  int    `help:"Number of parallel jobs. 0 uses the config file, then GOMAXPROCS" env:"RAWPIX_WORKERS"`
	LogLevel string `help:"Log level: debug, info, warn or error"`

	Convert convert.CLICmd `cmd:"" help:"Convert pictures to raw PNM or back to common formats"`
	Inspect inspect.CLICmd `cmd:"" help:"Log the header of every picture in a folder"`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("rawpix"),
		kong.Description("Raw PGM/PPM picture tools"),
		kong.UsageOnError(),
	)

	conf, err := config.LoadOrDefault(cli.Config)
	kctx.FatalIfErrorf(err)

	if cli.Workers != 0 {
		conf.Workers = cli.Workers
	}
	if cli.LogLevel != "" {
		conf.Logging.Level = cli.LogLevel
	}
	level, err := conf.Logging.SlogLevel()
	kctx.FatalIfErrorf(err)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Debug("running", "command", kctx.Command(), "workers", conf.Workers, "strict", conf.Strict)

	pool := parallel.Start(conf.Workers)
	kctx.FatalIfErrorf(kctx.Run(pool, conf))
}
