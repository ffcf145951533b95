//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/cambium/internal/compare"
	"github.com/farcloser/cambium/internal/types"
)

var (
	errGenreArg       = errors.New("expected exactly one argument: genre")
	errInvalidTargets = errors.New("some genre documents are invalid")
)

func targetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "targets",
		Usage: "Inspect genre target documents",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List available genres",
				Flags:  append(targetsFlags(), debugFlag()),
				Before: setLogLevel,
				Action: listTargets,
			},
			{
				Name:      "show",
				Usage:     "Show the canonical targets resolved for a genre",
				ArgsUsage: "<genre>",
				Flags: append(targetsFlags(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: console, json, markdown",
						Value:   consoleFormat,
					},
					debugFlag(),
				),
				Before: setLogLevel,
				Action: showTargets,
			},
			{
				Name:      "validate",
				Usage:     "Resolve genre documents and report every problem found",
				ArgsUsage: "[genre...]",
				Flags:     append(targetsFlags(), debugFlag()),
				Before:    setLogLevel,
				Action:    validateTargets,
			},
		},
	}
}

func listTargets(ctx context.Context, cmd *cli.Command) error {
	genres, err := targetSource(cmd.String("targets")).List(ctx)
	if err != nil {
		return err
	}

	for _, genre := range genres {
		fmt.Fprintln(os.Stdout, genre)
	}

	return nil
}

func showTargets(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("%w: got %d", errGenreArg, cmd.NArg())
	}

	normalizer, err := newNormalizer(cmd)
	if err != nil {
		return err
	}

	profile, err := normalizer.Profile(ctx, cmd.Args().First())
	if err != nil {
		return err
	}

	formatter, err := format.GetFormatter(cmd.String("format"))
	if err != nil {
		return err
	}

	data := &format.Data{
		Object: profile.Genre(),
		Meta:   profileToMap(profile),
	}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}

func validateTargets(ctx context.Context, cmd *cli.Command) error {
	source := targetSource(cmd.String("targets"))

	normalizer, err := newNormalizer(cmd)
	if err != nil {
		return err
	}

	genres := cmd.Args().Slice()
	if len(genres) == 0 {
		if genres, err = source.List(ctx); err != nil {
			return err
		}
	}

	failed := 0

	for _, genre := range genres {
		profile, err := normalizer.Profile(ctx, genre)
		if err != nil {
			failed++

			fmt.Fprintf(os.Stdout, "%s %s: %v\n", criticalStyle.Render("FAIL"), genre, err)

			continue
		}

		fmt.Fprintf(os.Stdout, "%s %s (%s, %d metrics, %d bands)\n",
			okStyle.Render("OK"), profile.Genre(), profile.Strategy(), len(profile.MetricKeys()), len(profile.BandNames()))
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errInvalidTargets, failed, len(genres))
	}

	return nil
}

func profileToMap(profile *types.TargetProfile) map[string]any {
	metrics := map[string]any{}

	for _, key := range profile.MetricKeys() {
		target, _ := profile.Metric(key)

		entry := map[string]any{
			"label":     compare.Label(key),
			"target":    target.Target,
			"min":       target.Min,
			"max":       target.Max,
			"tolerance": target.Tolerance,
		}

		if target.WarnFrom != nil {
			entry["warn_from"] = *target.WarnFrom
		}

		if target.HardCap != nil {
			entry["hard_cap"] = *target.HardCap
		}

		metrics[key] = entry
	}

	bands := map[string]any{}

	for _, name := range profile.BandNames() {
		target, _, _ := profile.Band(name)

		bands[name] = map[string]any{
			"target":    target.Target,
			"min":       target.Min,
			"max":       target.Max,
			"tolerance": target.Tolerance,
		}
	}

	return map[string]any{
		"mode":     profile.Mode(),
		"strategy": profile.Strategy(),
		"metrics":  metrics,
		"bands":    bands,
	}
}
