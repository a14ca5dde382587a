package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reoring/jsoning/internal/schemafile"
	"github.com/reoring/jsoning/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generate and reconstruct over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.logger()
			holder, err := schemafile.NewHolder(a.schemaPath, log)
			if err != nil {
				return err
			}
			defer holder.Stop()

			m := server.NewMetrics()
			m.SchemaTypes.Set(float64(len(holder.Get().Types())))
			holder.OnChange(func(s *schemafile.Schema) {
				m.SchemaReloads.Inc()
				m.SchemaTypes.Set(float64(len(s.Types())))
			})
			if watch {
				if err := holder.WatchFile(); err != nil {
					return err
				}
			}
			holder.WatchSignals()

			srv := &http.Server{
				Addr:              addr,
				Handler:           server.NewRouter(server.Config{Source: holder, Logger: log, Metrics: m}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", addr).Str("schema", holder.Path()).Msg("listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("serve: %w", err)
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the schema file when it changes")
	return cmd
}
