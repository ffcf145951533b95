//nolint:wrapcheck
package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/farcloser/cambium"
	"github.com/farcloser/cambium/internal/decode"
	"github.com/farcloser/cambium/internal/output"
	"github.com/farcloser/cambium/internal/targets"
)

const outputFile = "cambium-report.jsonl"

var (
	errArgCount     = errors.New("expected exactly one argument: folder path")
	errNotDirectory = errors.New("not a directory")
	errNoAudioFiles = errors.New("no audio files found")
)

//nolint:gochecknoglobals
var audioExtensions = []string{".wav", ".flac", ".m4a", ".mp3", ".aiff", ".aif", ".ogg"}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Judge every mix in a folder and write a JSONL report",
		ArgsUsage: "<folder>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "genre",
				Aliases: []string{"g"},
				Usage:   "Genre whose targets every file is judged against",
				Value:   targets.DefaultGenre,
			},
			&cli.StringFlag{
				Name:    "targets",
				Aliases: []string{"t"},
				Usage:   "Directory of <genre>.json target documents, searched before the embedded set",
			},
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Listening context: club, streaming, car",
				Value:   string(targets.ModeClub),
			},
			&cli.BoolFlag{
				Name:  "redact-path",
				Usage: "Strip file paths from the report",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of concurrent workers",
				Value:   runtime.NumCPU(),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"D"},
				Usage:   "Verbose logging",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errArgCount
			}

			if cmd.Bool("debug") {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}

			mode, err := targets.ParseMode(cmd.String("mode"))
			if err != nil {
				return err
			}

			var source targets.Source = targets.Embedded()
			if dir := cmd.String("targets"); dir != "" {
				source = targets.Layered{&targets.DirSource{Dir: dir}, source}
			}

			profile, err := targets.New(source, mode).Profile(ctx, cmd.String("genre"))
			if err != nil {
				return err
			}

			return runReport(ctx, cmd.Args().First(), profile, cmd.Bool("redact-path"), max(int(cmd.Int("workers")), 1))
		},
	}
}

func runReport(ctx context.Context, folder string, profile *cambium.TargetProfile, redact bool, workers int) error {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%q: %w", folder, errNotDirectory)
	}

	files, err := collectAudioFiles(folder)
	if err != nil {
		return fmt.Errorf("scanning folder: %w", err)
	}

	if len(files) == 0 {
		return fmt.Errorf("%q: %w", folder, errNoAudioFiles)
	}

	fmt.Fprintf(os.Stderr, "Judging %d files against %s/%s (%d workers)\n",
		len(files), profile.Genre(), profile.Mode(), workers)

	startTime := time.Now()
	results := make([]Record, len(files))

	progress := mpb.NewWithContext(ctx, mpb.WithOutput(os.Stderr), mpb.WithWidth(64))
	bar := progress.AddBar(int64(len(files)),
		mpb.PrependDecorators(
			decor.Name("judging "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.Name(" "),
			decor.EwmaETA(decor.ET_STYLE_GO, 60),
		),
	)

	sem := make(chan struct{}, workers)

	var waitGroup sync.WaitGroup

	for idx, filePath := range files {
		waitGroup.Add(1)

		go func(idx int, filePath string) {
			defer waitGroup.Done()

			sem <- struct{}{}

			defer func() { <-sem }()

			start := time.Now()
			results[idx] = processFile(ctx, filePath, profile)

			bar.EwmaIncrement(time.Since(start))
		}(idx, filePath)
	}

	waitGroup.Wait()
	progress.Wait()

	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	failed, err := writeRecords(out, results, redact)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if err := compressFile(outputFile); err != nil {
		slog.Error("compressing report", "error", err)
	}

	elapsed := time.Since(startTime)

	fmt.Fprintf(os.Stderr, "\nDone: %d files in %s (%d failed)\n", len(files), elapsed.Truncate(time.Millisecond), failed)
	fmt.Fprintf(os.Stderr, "Report written to %s (and %s.gz)\n\n", outputFile, outputFile)

	return runDigest(outputFile, "")
}

// writeRecords encodes results in file order and returns how many failed.
func writeRecords(out io.Writer, results []Record, redact bool) (int, error) {
	enc := json.NewEncoder(out)
	failed := 0

	for idx := range results {
		record := &results[idx]

		if record.Error != "" {
			failed++
		}

		if redact {
			record.File = ""
		}

		if err := enc.Encode(record); err != nil {
			return failed, err
		}
	}

	return failed, nil
}

func processFile(ctx context.Context, filePath string, profile *cambium.TargetProfile) Record {
	fileStart := time.Now()
	timing := &RecordTiming{}

	buf, err := decode.File(ctx, filePath, 0)

	timing.DecodeMs = durationMs(time.Since(fileStart))

	if err != nil {
		return Record{File: filePath, Error: fmt.Sprintf("decode failed: %v", err), Timing: timing}
	}

	analyzeStart := time.Now()

	result, err := cambium.Analyze(ctx, buf, profile, cambium.DefaultOptions())

	timing.AnalyzeMs = durationMs(time.Since(analyzeStart))
	timing.TotalMs = durationMs(time.Since(fileStart))

	if err != nil {
		return Record{File: filePath, Error: fmt.Sprintf("analysis failed: %v", err), Timing: timing}
	}

	return Record{
		File:     filePath,
		Analysis: output.ResultToMap(result),
		Timing:   timing,
	}
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func collectAudioFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if slices.Contains(audioExtensions, strings.ToLower(filepath.Ext(path))) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)

	return files, nil
}

func compressFile(path string) error {
	src, err := os.Open(path) //nolint:gosec // reading our own output file
	if err != nil {
		return err
	}
	defer src.Close()

	gzFile, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer gzFile.Close()

	gzWriter := gzip.NewWriter(gzFile)

	if _, err := io.Copy(gzWriter, src); err != nil {
		return err
	}

	return gzWriter.Close()
}
