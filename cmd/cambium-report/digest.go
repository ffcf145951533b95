package main

import (
	"bufio"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/cambium/internal/keys"
)

var errReportArg = errors.New("expected exactly one argument: path to report.jsonl")

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:      "digest",
		Usage:     "Summarize a cambium JSONL report",
		ArgsUsage: "<report.jsonl>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "key",
				Usage: "Show every track flagged on one metric or band (e.g., lufs, truePeak, air)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errReportArg
			}

			return runDigest(cmd.Args().First(), cmd.String("key"))
		},
	}
}

func runDigest(reportPath, keyFilter string) error {
	records, err := readRecords(reportPath)
	if err != nil {
		return err
	}

	printDigest(records)

	if keyFilter != "" {
		key, ok := keys.Normalize(keyFilter)
		if !ok {
			key = keyFilter
		}

		printKeyDetail(records, key)
	}

	return nil
}

func readRecords(path string) ([]digestRecord, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified report files
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer file.Close()

	var records []digestRecord

	scanner := bufio.NewScanner(file)

	const maxLineSize = 1024 * 1024 // 1MB
	scanner.Buffer(make([]byte, 0, maxLineSize), maxLineSize)

	for scanner.Scan() {
		var rec digestRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			records = append(records, digestRecord{Error: "parse error"})

			continue
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	return records, nil
}

func printDigest(records []digestRecord) {
	total := len(records)
	failed := 0
	inconsistent := 0
	classes := map[string]int{}
	stats := map[string]*keyBreakdown{}

	var scoreSum float64

	for _, rec := range records {
		if rec.Error != "" || rec.Analysis == nil {
			failed++

			continue
		}

		summary := rec.Analysis.Summary
		scoreSum += summary.Score
		classes[summary.Classification]++

		if !summary.Consistent {
			inconsistent++
		}

		for _, row := range rec.Analysis.Table {
			if row.Severity == "OK" {
				continue
			}

			breakdown, ok := stats[row.Key]
			if !ok {
				breakdown = &keyBreakdown{Key: row.Key}
				stats[row.Key] = breakdown
			}

			switch row.Severity {
			case "CRITICAL":
				breakdown.Critical++
			case "ATTENTION":
				breakdown.Attention++
			}

			breakdown.Diffs += row.Diff
		}
	}

	analyzed := total - failed

	fmt.Println("=== Cambium Report Digest ===")
	fmt.Println()
	fmt.Printf("Total tracks:  %d\n", total)
	fmt.Printf("Failed:        %d\n", failed)
	fmt.Printf("Analyzed:      %d\n", analyzed)

	if analyzed > 0 {
		fmt.Printf("Mean score:    %.1f\n", scoreSum/float64(analyzed))
	}

	if inconsistent > 0 {
		fmt.Printf("Inconsistent:  %d\n", inconsistent)
	}

	fmt.Println()
	fmt.Println("--- Classification ---")

	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		label := name
		if label == "" {
			label = "(none)"
		}

		fmt.Printf("  %-14s %d\n", label, classes[name])
	}

	fmt.Println()
	fmt.Println("--- Flagged By Key ---")

	breakdowns := make([]*keyBreakdown, 0, len(stats))
	for _, bd := range stats {
		breakdowns = append(breakdowns, bd)
	}

	slices.SortFunc(breakdowns, func(a, b *keyBreakdown) int {
		if diff := (b.Critical + b.Attention) - (a.Critical + a.Attention); diff != 0 {
			return diff
		}

		return b.Critical - a.Critical
	})

	for _, bd := range breakdowns {
		count := bd.Critical + bd.Attention
		fmt.Printf("  %s\n", bd.Key)
		fmt.Printf("    flagged: %d  critical: %d  attention: %d  mean diff: %+.2f\n",
			count, bd.Critical, bd.Attention, bd.Diffs/float64(count))
	}
}

type keyEntry struct {
	file       string
	row        digestRow
	suggestion string
}

func printKeyDetail(records []digestRecord, key string) {
	fmt.Println()

	var entries []keyEntry

	for _, rec := range records {
		if rec.Error != "" || rec.Analysis == nil {
			continue
		}

		for _, row := range rec.Analysis.Table {
			if row.Key != key || row.Severity == "OK" {
				continue
			}

			entry := keyEntry{file: rec.File, row: row}
			if entry.file == "" {
				entry.file = "(redacted)"
			}

			for _, suggestion := range rec.Analysis.Suggestions {
				if suggestion.Metric == key {
					entry.suggestion = suggestion.Message
				}
			}

			entries = append(entries, entry)
		}
	}

	if len(entries) == 0 {
		fmt.Printf("No tracks flagged on %s\n", key)

		return
	}

	slices.SortFunc(entries, func(a, b keyEntry) int {
		if a.row.Severity != b.row.Severity {
			if a.row.Severity == "CRITICAL" {
				return -1
			}

			return 1
		}

		return cmp.Compare(math.Abs(b.row.Diff), math.Abs(a.row.Diff))
	})

	fmt.Printf("=== %s: %d tracks ===\n\n", key, len(entries))

	for _, entry := range entries {
		fmt.Printf("  %s\n", entry.file)
		fmt.Printf("    severity: %s  value: %.2f  target: %.2f  diff: %+.2f\n",
			entry.row.Severity, entry.row.Value, entry.row.Target, entry.row.Diff)

		if entry.suggestion != "" {
			fmt.Printf("    %s\n", entry.suggestion)
		}

		fmt.Println()
	}
}
