// Command segedit is an interactive demonstration shell over the segedit
// library: open a file, apply inserts/overwrites/deletes, undo/redo,
// checkpoint, search, and save — all without the file ever being loaded
// into memory in one piece.
//
// Grounded on the teacher's cmd/tk/main.go + internal/cli/run.go dispatch
// style, scaled down to a single command set instead of a full
// subcommand-table CLI framework since segedit's surface is one editing
// session, not a multi-resource tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "segedit:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("segedit", pflag.ContinueOnError)
	flags.SetInterspersed(false)

	configPath := flags.StringP("config", "c", "", "path to a JSONC config file")
	outputPath := flags.StringP("output", "o", "", "default save target (overrides config)")
	overwrite := flags.Bool("overwrite", false, "allow save to overwrite an existing output file")

	if err := flags.Parse(args); err != nil {
		return err
	}

	rest := flags.Args()
	if len(rest) != 1 {
		return fmt.Errorf("usage: segedit [flags] <file>")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	if *outputPath != "" {
		cfg.OutputPath = *outputPath
	}

	if *overwrite {
		cfg.Overwrite = true
	}

	return runREPL(rest[0], cfg)
}
