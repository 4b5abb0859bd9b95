// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Package api is the HTTP/SSR contract server (ambient addition,
// SPEC_FULL.md §6): it exposes the controller's view state,
// visible rows, and command queue over a small JSON API plus a
// one-shot static HTML export. Grounded on the teacher's
// internal/api package (stdlib net/http.ServeMux with Go 1.22
// method-pattern routes, a recovery/CORS/logging middleware chain,
// and jsonOK/jsonError response helpers).
package api

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tabulon-dev/tabulon/internal/controller"
)

// Server is the HTTP handler for the table's wire contract.
type Server struct {
	handler http.Handler
}

// NewServer builds a configured HTTP handler wired to ctrl. webDir is
// the path to a directory of static assets (e.g. a JS client) served
// at "/"; an empty webDir disables static serving.
func NewServer(ctrl *controller.Controller, webDir string) *Server {
	mux := http.NewServeMux()
	a := &api{ctrl: ctrl}

	mux.HandleFunc("GET /api/view", a.GetView)
	mux.HandleFunc("PUT /api/view", a.PutView)
	mux.HandleFunc("GET /api/rows", a.GetRows)
	mux.HandleFunc("POST /api/commands", a.PostCommand)
	mux.HandleFunc("GET /api/export.html", a.GetExportHTML)

	if webDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(webDir)))
	}

	return &Server{handler: withMiddleware(mux)}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func withMiddleware(h http.Handler) http.Handler {
	return withRecovery(withLogging(withCORS(h)))
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler) http.Handler {
	logger := log.New(os.Stderr, "", log.LstdFlags)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}

func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				fmt.Fprintf(os.Stderr, "panic: %v\n", err)
				jsonError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
