//nolint:wrapcheck
package main

import (
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"

	"github.com/farcloser/cambium"
	"github.com/farcloser/cambium/internal/output"
)

const consoleFormat = "console"

func outputResult(filePath string, result *cambium.Result, formatName string, debug bool) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	var meta map[string]any
	if debug {
		meta = output.ResultToMap(result)
	} else {
		meta = output.FriendlyMap(result)
	}

	if formatName == consoleFormat {
		fmt.Fprintln(os.Stdout, headline(result))
	}

	data := &format.Data{
		Object: filePath,
		Meta:   meta,
	}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}
