package cli

import (
	"context"
	"errors"
	"fmt"
	"github.com/spf13/cobra"
	"os/signal"
	"pricecrowd-backend/cmd/config"
	migration "pricecrowd-backend/cmd/database/migrate"
	"pricecrowd-backend/internal/utils"
	"sync"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the Telegram worker",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := newLogger()

	db, err := config.ConnectDB()
	if err != nil {
		return err
	}
	if err := migration.Migrate(db); err != nil {
		return err
	}

	rdb, err := config.ConnectRedis(ctx)
	if err != nil {
		log.Warn(ctx, "redis unavailable, continuing without it", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	application, err := config.NewApp(ctx, db, rdb, log)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		application.Worker.Run(ctx)
	}()

	errCh := make(chan error, 1)
	addr := utils.GetConfig("HTTP_ADDR")
	go func() {
		log.Info(ctx, "http server listening", "addr", addr)
		errCh <- application.App.Listen(addr)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("http server: %w", err)
		}
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := application.App.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Error(shutdownCtx, "http shutdown failed", "error", err)
	}
	wg.Wait()
	return nil
}
