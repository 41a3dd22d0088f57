package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"trivia-quiz/internal/config"
	transport "trivia-quiz/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the websocket server.
func NewStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, v, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if port := v.GetString("port"); port != "" {
				cfg.Server.Port = port
			}
			return runServer(cmd.Context(), cfg)
		},
	}
	cmd.Flags().String("port", "", "port to listen on (or set QUIZ_PORT)")
	return cmd
}

func runServer(ctx context.Context, cfg config.Config) error {
	store, closeStore, err := openStateStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}

	service := newQuizService(cfg, store)
	wsHandler := transport.NewWSHandler(service, quizDefaults(cfg))

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           transport.NewRouter(service, wsHandler),
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		slog.Info("starting quiz server", "addr", server.Addr, "state_driver", cfg.State.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
