//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/cambium"
	"github.com/farcloser/cambium/internal/decode"
)

var (
	errInvalidArgCount = errors.New("expected exactly one argument: audio file path")
	errUnknownCheck    = errors.New("unknown check")
	errInconsistent    = errors.New("suggestions do not match the comparison table")
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Measure an audio file and compare it against a genre's targets",
		ArgsUsage: "<file>",
		Flags: append(targetsFlags(),
			&cli.StringFlag{
				Name:    "genre",
				Aliases: []string{"g"},
				Usage:   "Genre whose targets the mix is judged against",
				Value:   "default",
			},
			&cli.StringFlag{
				Name:    "checks",
				Aliases: []string{"C"},
				Usage:   "Comma-separated metrics or presets: all, mastering, loudness, true-peak, stereo, dynamics, dc-offset, spectral, bpm",
				Value:   "all",
			},
			&cli.IntFlag{
				Name:  "stream",
				Usage: "Audio stream index (0-based)",
				Value: 0,
			},
			&cli.DurationFlag{
				Name:  "bpm-budget",
				Usage: "Time allowed for tempo detection before it is reported as unavailable",
				Value: cambium.DefaultBPMBudget,
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Fail when genre targets cannot be resolved or suggestions diverge from the table, instead of falling back",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: console, json, markdown",
				Value:   "console",
			},
			debugFlag(),
		),
		Before: setLogLevel,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
			}

			checks, err := parseChecks(cmd.String("checks"))
			if err != nil {
				return err
			}

			normalizer, err := newNormalizer(cmd)
			if err != nil {
				return err
			}

			filePath := cmd.Args().First()

			buf, err := decode.File(ctx, filePath, int(cmd.Int("stream")))
			if err != nil {
				return fmt.Errorf("decoding %s: %w", filePath, err)
			}

			opts := cambium.DefaultOptions()
			opts.Checks = checks
			opts.BPMBudget = cmd.Duration("bpm-budget")
			opts.FallbackToDefaults = !cmd.Bool("strict")

			result, err := cambium.AnalyzeGenre(ctx, buf, normalizer, cmd.String("genre"), opts)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			if err := outputResult(filePath, result, cmd.String("format"), cmd.Bool("debug")); err != nil {
				return err
			}

			if cmd.Bool("strict") && (!result.Diagnostics.Finalized.Consistent() || len(result.Diagnostics.Parity) > 0) {
				return errInconsistent
			}

			return nil
		},
	}
}

//nolint:gochecknoglobals
var checkNames = map[string]cambium.Check{
	"loudness":  cambium.CheckLoudness,
	"true-peak": cambium.CheckTruePeak,
	"stereo":    cambium.CheckStereo,
	"dynamics":  cambium.CheckDynamics,
	"dc-offset": cambium.CheckDCOffset,
	"spectral":  cambium.CheckSpectral,
	"bpm":       cambium.CheckBPM,
	// Presets.
	"all":       cambium.ChecksAll,
	"mastering": cambium.ChecksMastering,
}

func parseChecks(raw string) (cambium.Check, error) {
	var result cambium.Check

	for name := range strings.SplitSeq(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		check, ok := checkNames[name]
		if !ok {
			return 0, fmt.Errorf("%w %q", errUnknownCheck, name)
		}

		result |= check
	}

	if result == 0 {
		return cambium.ChecksAll, nil
	}

	return result, nil
}
