package main

import (
	"context"
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

	"github.com/sells-group/contact-cli/internal/model"
	"github.com/sells-group/contact-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server for enrichment requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		router := newRouter(ctx, env)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(ctx context.Context, env *pipelineEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-ID"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/enrich", handleEnrich(ctx, env))
	r.Get("/runs", handleListRuns(env))
	r.Get("/runs/{id}", handleGetRun(env))

	return r
}

func handleEnrich(serverCtx context.Context, env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
			return
		}

		var contact model.Contact
		if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(contact) == 0 {
			writeError(w, http.StatusBadRequest, "empty contact")
			return
		}

		run, err := env.Store.CreateRun(r.Context(), userID, contact)
		if err != nil {
			zap.L().Error("create run failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "create run failed")
			return
		}

		// Run enrichment asynchronously; poll GET /runs/{id} for the report.
		go func() {
			if err := env.Store.UpdateRunStatus(serverCtx, run.ID, model.RunStatusRunning); err != nil {
				zap.L().Error("update run status failed", zap.String("run_id", run.ID), zap.Error(err))
			}
			report, err := env.Pipeline.Run(serverCtx, userID, contact)
			if err != nil {
				zap.L().Error("enrichment failed",
					zap.String("run_id", run.ID),
					zap.Error(err),
				)
				_ = env.Store.UpdateRunStatus(serverCtx, run.ID, model.RunStatusFailed)
				return
			}
			if err := env.Store.SaveReport(serverCtx, run.ID, report); err != nil {
				zap.L().Error("save report failed", zap.String("run_id", run.ID), zap.Error(err))
			}
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"run_id": run.ID,
			"status": string(model.RunStatusQueued),
		})
	}
}

func handleListRuns(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.RunFilter{
			Status: model.RunStatus(r.URL.Query().Get("status")),
			UserID: r.URL.Query().Get("user_id"),
		}

		runs, err := env.Store.ListRuns(r.Context(), filter)
		if err != nil {
			zap.L().Error("list runs failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list runs failed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
	}
}

func handleGetRun(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := env.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
