// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Command tabulon is the TUI entrypoint, grounded on the teacher's
// cmd/micasa/main.go: a kong-parsed CLI with run/backup/export
// subcommands, backed by a SQLite store and a bubbletea program.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tabulon-dev/tabulon/internal/command"
	"github.com/tabulon-dev/tabulon/internal/config"
	"github.com/tabulon-dev/tabulon/internal/demo"
	"github.com/tabulon-dev/tabulon/internal/derive"
	"github.com/tabulon-dev/tabulon/internal/render/ssr"
	"github.com/tabulon-dev/tabulon/internal/schema"
	"github.com/tabulon-dev/tabulon/internal/selection"
	"github.com/tabulon-dev/tabulon/internal/sheet"
	"github.com/tabulon-dev/tabulon/internal/store"
	"github.com/tabulon-dev/tabulon/internal/tui"
	"github.com/tabulon-dev/tabulon/internal/view"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

const appName = "tabulon"
const sheetID = "main"

type cli struct {
	Run     runCmd           `cmd:"" default:"withargs" help:"Launch the TUI (default)."`
	Backup  backupCmd        `cmd:""                    help:"Back up the database to a file."`
	Export  exportCmd        `cmd:""                    help:"Render the current sheet to static HTML."`
	Version kong.VersionFlag `                          help:"Show version and exit."          name:"version"`
}

type runCmd struct {
	DBPath     string `arg:"" optional:"" help:"SQLite database path. Pass with --demo to persist demo data." env:"TABULON_DB_PATH"`
	Demo       bool   `                   help:"Launch with sample data in an in-memory database."`
	SchemaName string `name:"schema"      help:"Sample schema for --demo: products or inventory-audit." default:"products"`
	Rows       int    `                   help:"Rows to generate with --demo. Defaults to config."`
}

type backupCmd struct {
	Dest   string `arg:"" optional:"" help:"Destination file path. Defaults to <source>.backup."`
	Source string `                   help:"Source database path." default:"" env:"TABULON_DB_PATH"`
}

type exportCmd struct {
	Source string `arg:"" help:"Source database path."`
	Out    string `       help:"Output HTML file path. Defaults to stdout." default:""`
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name(appName),
		kong.Description("A terminal spreadsheet for schema-driven tabular data."),
		kong.UsageOnError(),
		kong.Vars{"version": versionString()},
	)
	if err := kctx.Run(); err != nil {
		if errors.Is(err, tea.ErrInterrupted) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func (cmd *runCmd) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dbPath := cmd.DBPath
	if dbPath == "" {
		if cmd.Demo {
			dbPath = ":memory:"
		} else {
			return fmt.Errorf("a database path is required outside --demo mode")
		}
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()
	if err := st.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	sh, err := loadOrSeedSheet(st, cmd.SchemaName, cmd.Demo, rowsOrDefault(cmd.Rows, cfg.Demo.Rows))
	if err != nil {
		return err
	}

	pipeline, err := derive.NewPipeline(sh, int64(cfg.Derive.CacheSize))
	if err != nil {
		return fmt.Errorf("build derivation pipeline: %w", err)
	}
	defer pipeline.Close()

	queue := command.NewQueue(sh, cfg.Render.UndoHistoryCap)
	sel := selection.New(sh)
	model := tui.New(sh, pipeline, view.NewState(), queue, sel, cfg.Render)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return err
	}

	if dbPath != ":memory:" {
		if err := st.SaveSheet(sheetID, sh); err != nil {
			return fmt.Errorf("save sheet: %w", err)
		}
	}
	return nil
}

func (cmd *backupCmd) Run() error {
	if cmd.Source == "" {
		return fmt.Errorf("--source is required")
	}
	if cmd.Source == ":memory:" {
		return fmt.Errorf("cannot back up an in-memory database")
	}
	if _, err := os.Stat(cmd.Source); err != nil {
		return fmt.Errorf("source database %q not found", cmd.Source)
	}

	destPath := cmd.Dest
	if destPath == "" {
		destPath = cmd.Source + ".backup"
	}
	if _, err := os.Stat(destPath); err == nil {
		return fmt.Errorf("destination %q already exists", destPath)
	}

	src, err := os.ReadFile(cmd.Source)
	if err != nil {
		return fmt.Errorf("read source database: %w", err)
	}
	if err := os.WriteFile(destPath, src, 0o600); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}

	absPath, err := filepath.Abs(destPath)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	fmt.Println(absPath)
	return nil
}

func (cmd *exportCmd) Run() error {
	st, err := store.Open(cmd.Source)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	records, err := st.LoadSheet(sheetID)
	if err != nil {
		return fmt.Errorf("load sheet: %w", err)
	}

	sc, err := demo.ProductsSchema()
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}
	sh := sheet.New(sc)
	sh.SetData(records)

	pipeline, err := derive.NewPipeline(sh, 8<<20)
	if err != nil {
		return fmt.Errorf("build derivation pipeline: %w", err)
	}
	defer pipeline.Close()

	out, err := ssr.Render(sh, pipeline, view.NewState())
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	if cmd.Out == "" {
		fmt.Println(out)
		return nil
	}
	return os.WriteFile(cmd.Out, []byte(out), 0o600)
}

func loadOrSeedSheet(st *store.Store, schemaName string, demoSeed bool, rows int) (*sheet.Sheet, error) {
	var sc *schema.Schema
	var err error
	switch schemaName {
	case "products":
		sc, err = demo.ProductsSchema()
	case "inventory-audit":
		sc, err = demo.InventoryAuditSchema()
	default:
		return nil, fmt.Errorf("unknown schema %q", schemaName)
	}
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}

	sh := sheet.New(sc)
	records, err := st.LoadSheet(sheetID)
	if err != nil {
		return nil, fmt.Errorf("load sheet: %w", err)
	}

	switch {
	case len(records) > 0:
		sh.SetData(records)
	case demoSeed:
		gen := demo.New(1)
		if schemaName == "inventory-audit" {
			sh.SetData(gen.InventoryAudit(rows))
		} else {
			sh.SetData(gen.Products(rows))
		}
	}
	return sh, nil
}

func rowsOrDefault(rows, fallback int) int {
	if rows > 0 {
		return rows
	}
	return fallback
}

// versionString returns the version for display. Release builds return
// the version set via ldflags. Dev builds return the full git commit
// hash (with a -dirty suffix if the tree was modified), or "dev" as a
// last resort.
func versionString() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	if dirty {
		return revision + "-dirty"
	}
	return revision
}
