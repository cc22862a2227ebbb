package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"time_dividends/internal/infrastructure/restapi"
	"time_dividends/internal/pkg/logger"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c, err := newContainer(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		handler := restapi.NewHandler(restapi.Deps{
			Config:       c.Config,
			Networks:     c.Networks,
			Wallet:       c.Wallet,
			Indexer:      c.Indexer,
			Selector:     c.Selector,
			Coordinator:  c.Coordinator,
			Transactions: c.Transactions,
			Balances:     c.Balances,
			Dividends:    c.Dividends,
			Estimator:    c.Estimator,
			Reports:      c.Reports,
			Hub:          c.Hub,
			Logger:       c.Logger,
		})
		router := restapi.SetupRouter(handler, c.Registry)

		srv := &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("Запуск HTTP сервера", "address", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("Получен сигнал завершения. Завершение работы HTTP сервера...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Ошибка при Graceful Shutdown HTTP сервера", "error", err)
			return err
		}
		logger.Info("HTTP сервер успешно остановлен.")
		return nil
	},
}
