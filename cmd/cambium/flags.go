package main

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/cambium/internal/targets"
)

func targetsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "targets",
			Aliases: []string{"t"},
			Usage:   "Directory of <genre>.json target documents, searched before the embedded set",
		},
		&cli.StringFlag{
			Name:    "mode",
			Aliases: []string{"m"},
			Usage:   "Listening context adjusting loudness targets: club, streaming, car",
			Value:   string(targets.ModeClub),
		},
	}
}

func debugFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "debug",
		Aliases: []string{"D"},
		Usage:   "Verbose logging and all raw analyzer data in output",
	}
}

func setLogLevel(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	return ctx, nil
}

// targetSource layers an optional user directory over the embedded reference documents.
func targetSource(dir string) targets.Source {
	if dir == "" {
		return targets.Embedded()
	}

	return targets.Layered{&targets.DirSource{Dir: dir}, targets.Embedded()}
}

func newNormalizer(cmd *cli.Command) (*targets.Normalizer, error) {
	mode, err := targets.ParseMode(cmd.String("mode"))
	if err != nil {
		return nil, err
	}

	return targets.New(targetSource(cmd.String("targets")), mode), nil
}
