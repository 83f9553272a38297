package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signalworks/agency-ops/internal/canonical"
	"github.com/signalworks/agency-ops/internal/dashboard"
	"github.com/signalworks/agency-ops/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard and canonicalization API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(e),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// newRouter builds the HTTP API over the wired services.
func newRouter(e *env) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/entities", func(r chi.Router) {
		r.Get("/", listEntitiesHandler(e))
		r.Route("/{entityID}", func(r chi.Router) {
			r.Get("/graph", graphHandler(e))
			r.Get("/snapshot", snapshotHandler(e))
			r.Get("/coverage", coverageHandler(e))
			r.Get("/freshness", freshnessHandler(e))
			r.Post("/canonicalize", canonicalizeHandler(e))
		})
	})

	return r
}

func listEntitiesHandler(e *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entities, err := e.Store.ListEntities(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, entities)
	}
}

func graphHandler(e *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := e.Store.LoadGraph(r.Context(), chi.URLParam(r, "entityID"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if g == nil {
			writeError(w, http.StatusNotFound, eris.New("no graph for entity"))
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

func snapshotHandler(e *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := e.Dashboard.Snapshot(r.Context(), chi.URLParam(r, "entityID"), dashboard.SnapshotOptions{})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func coverageHandler(e *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workflow := r.URL.Query().Get("workflow")
		if workflow == "" {
			workflow = "strategy"
		}
		report, err := e.Dashboard.Blockers(r.Context(), chi.URLParam(r, "entityID"), workflow)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func freshnessHandler(e *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scores, err := e.Dashboard.Freshness(r.Context(), chi.URLParam(r, "entityID"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, scores)
	}
}

// canonicalizeRequest is the POST body for the canonicalize endpoint. The
// user source is CLI-only; API batches come from automated producers.
type canonicalizeRequest struct {
	Source   string            `json:"source"`
	RunID    string            `json:"run_id,omitempty"`
	DryRun   bool              `json:"dry_run,omitempty"`
	Baseline bool              `json:"baseline,omitempty"`
	Findings []model.Candidate `json:"findings"`
}

func canonicalizeHandler(e *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req canonicalizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, eris.Wrap(err, "decode request"))
			return
		}
		if req.Source == "" || req.Source == string(model.SourceUser) {
			writeError(w, http.StatusBadRequest, eris.New("source must name an automated producer"))
			return
		}
		if len(req.Findings) == 0 {
			writeError(w, http.StatusBadRequest, eris.New("findings are required"))
			return
		}

		res, err := e.Canon.Canonicalize(r.Context(), chi.URLParam(r, "entityID"), req.Findings, canonical.Options{
			Source:   model.Source(req.Source),
			RunID:    req.RunID,
			DryRun:   req.DryRun,
			Baseline: req.Baseline,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	zap.L().Warn("request failed", zap.Int("status", status), zap.Error(err))
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
