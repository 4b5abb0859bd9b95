// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Command tabulonsrv is the HTTP/SSR contract server entrypoint
// (ambient addition, SPEC_FULL.md §6), grounded on the teacher's
// cmd/webcasa/main.go: a stdlib-flag CLI that opens a store, wires a
// controller, and serves internal/api behind net/http.Server with
// graceful shutdown.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tabulon-dev/tabulon/internal/api"
	"github.com/tabulon-dev/tabulon/internal/command"
	"github.com/tabulon-dev/tabulon/internal/config"
	"github.com/tabulon-dev/tabulon/internal/controller"
	"github.com/tabulon-dev/tabulon/internal/demo"
	"github.com/tabulon-dev/tabulon/internal/derive"
	"github.com/tabulon-dev/tabulon/internal/schema"
	"github.com/tabulon-dev/tabulon/internal/selection"
	"github.com/tabulon-dev/tabulon/internal/sheet"
	"github.com/tabulon-dev/tabulon/internal/store"
	"github.com/tabulon-dev/tabulon/internal/view"
)

const sheetID = "main"

func main() {
	addr := flag.String("addr", ":8080", "listen address (host:port)")
	dbPath := flag.String("db", "tabulon.db", "SQLite database path")
	demoFlag := flag.Bool("demo", false, "seed sample data if the store has no rows yet")
	schemaName := flag.String("schema", "products", `sample schema to seed: "products" or "inventory-audit"`)
	webDir := flag.String("web-dir", "", "path to a directory of static assets served at /")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fail("load config", err)
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		fail("open database", err)
	}
	defer st.Close()

	if err := st.AutoMigrate(); err != nil {
		fail("migrate database", err)
	}

	sh, err := loadOrSeed(st, *schemaName, *demoFlag, cfg.Demo.Rows)
	if err != nil {
		fail("load or seed sheet", err)
	}

	pipeline, err := derive.NewPipeline(sh, int64(cfg.Derive.CacheSize))
	if err != nil {
		fail("build derivation pipeline", err)
	}
	defer pipeline.Close()

	queue := command.NewQueue(sh, cfg.Render.UndoHistoryCap)
	ctrl := controller.New(sh, pipeline, view.NewState(), queue, selection.New(sh), nil, nil, cfg.Render)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      api.NewServer(ctrl, *webDir),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		fmt.Fprintf(os.Stderr, "tabulonsrv: listening on %s\n", *addr)
		fmt.Fprintf(os.Stderr, "tabulonsrv: database at %s\n", *dbPath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fail("listen", err)
		}
	}()

	<-ctx.Done()
	fmt.Fprintf(os.Stderr, "\ntabulonsrv: shutting down...\n")

	if err := st.SaveSheet(sheetID, sh); err != nil {
		fmt.Fprintf(os.Stderr, "tabulonsrv: save sheet: %v\n", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fail("shutdown", err)
	}
}

// loadOrSeed builds the named sample schema, then either reloads
// persisted rows for it from st or, when demoSeed is set and the store
// has none yet, generates rows so the server has something to show.
func loadOrSeed(st *store.Store, schemaName string, demoSeed bool, rows int) (*sheet.Sheet, error) {
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

func fail(context string, err error) {
	fmt.Fprintf(os.Stderr, "tabulonsrv: %s: %v\n", context, err)
	os.Exit(1)
}
