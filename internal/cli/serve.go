package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"datafixer.ai/internal/transport/ws"
)

// ServeCmd runs the websocket fix session server.
func ServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve fix sessions over websocket",
		Long: `Serves /v1/fix, where a host sends HELLO with its stored fix version and
streams records to be fixed, and /v1/rules (loopback only), which lists the
registered fixes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, err := buildRegistry()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), addr, newMux(ws.NewServer(reg, logger)))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "http listen address")
	return cmd
}

func newMux(srv *ws.Server) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/rules", srv.RulesHandler())
	mux.HandleFunc("/v1/fix", srv.Handler())
	return mux
}

func serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
