package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"slices"
	"syscall"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rbozan/lsp-translations/internal/config"
	"github.com/rbozan/lsp-translations/internal/engine"
	"github.com/rbozan/lsp-translations/internal/index"
	"github.com/rbozan/lsp-translations/internal/parser"
	"github.com/rbozan/lsp-translations/internal/scanner"
)

func indexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [directory...]",
		Short: "Index translation files and print their definitions",
		Long: `Discovers the translation files of each directory (the working directory
by default) with the given TOML or JSON configuration and prints every
definition found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return runIndex(cmd.OutOrStdout(), configPath, args)
		},
	}
	cmd.Flags().StringP("config", "c", "lsp-translations.toml", "Configuration file (.toml or .json)")
	return cmd
}

func runIndex(out io.Writer, configPath string, dirs []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	folders := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", dir, err)
		}
		folders = append(folders, abs)
	}

	indexer, err := parser.NewIndexer(runtime.GOMAXPROCS(0))
	if err != nil {
		return err
	}
	defer indexer.Close()
	e := engine.New(indexer)

	report, err := e.Reindex(ctx, scanner.Discover(folders, cfg.TranslationFiles), cfg)
	if err != nil {
		return err
	}
	for _, path := range slices.Sorted(maps.Keys(report.Failed)) {
		fmt.Fprintf(os.Stderr, "%s %s: %v\n", color.YellowString("skipped"), path, report.Failed[path])
	}

	writeTable(out, e.Snapshot())
	fmt.Fprintf(out, "%d definitions in %d files\n", report.Definitions, report.Files)
	return nil
}

func writeTable(out io.Writer, snapshot *index.Snapshot) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Identifier", "Language", "Translation", "File"})
	for _, file := range snapshot.Files() {
		defs, _ := snapshot.File(file)
		for _, d := range defs {
			t.AppendRow(table.Row{d.Identifier(), d.Language(), index.Printable(d.Value), filepath.Base(file)})
		}
	}
	t.Render()
}
