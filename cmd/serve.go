package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voltlead/leadsync-cli/internal/monitoring"
	"github.com/voltlead/leadsync-cli/internal/store"
	syncpkg "github.com/voltlead/leadsync-cli/internal/sync"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server for sync triggers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		eng := initEngine(st)
		mux := newServeMux(st, eng)

		if cfg.Monitoring.WebhookURL != "" {
			checker := monitoring.NewChecker(
				monitoring.NewCollector(st),
				monitoring.NewAlerter(cfg.Monitoring),
				cfg.Monitoring,
			)
			go checker.Run(ctx)
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newServeMux(st store.Store, eng *syncpkg.Engine) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /webhook/sync", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CustomerID string `json:"customer_id"`
			Sheet      string `json:"sheet"`
			Full       bool   `json:"full"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.CustomerID == "" {
			http.Error(w, `{"error":"customer_id is required"}`, http.StatusBadRequest)
			return
		}

		c, err := st.GetCustomer(r.Context(), req.CustomerID)
		if err != nil {
			if eris.Is(err, store.ErrNotFound) {
				http.Error(w, `{"error":"customer not found"}`, http.StatusNotFound)
				return
			}
			http.Error(w, `{"error":"lookup failed"}`, http.StatusInternalServerError)
			return
		}

		ref := req.Sheet
		if ref == "" {
			if c.Sheet == nil || c.Sheet.SheetID == "" {
				http.Error(w, `{"error":"customer has no linked sheet"}`, http.StatusBadRequest)
				return
			}
			ref = c.Sheet.SheetID
		}

		// Sync runs asynchronously; the outcome lands in the sync log.
		go func() {
			ctx, cancel := syncContext(context.Background())
			defer cancel()

			var (
				res *syncpkg.Result
				err error
			)
			if req.Full {
				res, err = eng.Full(ctx, c.ID, ref)
			} else {
				res, err = eng.Smart(ctx, c.ID, ref)
			}
			if err != nil {
				zap.L().Error("webhook sync failed",
					zap.String("customer_id", c.ID),
					zap.Error(err),
				)
				return
			}
			zap.L().Info("webhook sync complete",
				zap.String("customer_id", c.ID),
				zap.Int("added", res.Added),
				zap.Int("removed", res.Removed),
			)
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"status":      "accepted",
			"customer_id": c.ID,
		})
	})

	return mux
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
