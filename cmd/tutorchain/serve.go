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

	"github.com/Freeeeeet/tutorchain/internal/app"
	"github.com/Freeeeeet/tutorchain/internal/controller"
	"github.com/go-telegram/bot"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when TELEGRAM_TOKEN is set, the Telegram bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := wireApp(ctx, e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if e.cfg.ReconcileInterval > 0 && a.journal != nil {
				reconciler := app.NewReconciler(a.journal, a.client, e.cfg.ReconcileInterval, e.logger,
					app.WithDropAfter(e.cfg.ReconcileDropAge))
				reconciler.Start(ctx)
				defer reconciler.Stop()
			}

			var botController *controller.BotController
			if e.cfg.TelegramToken != "" {
				b, err := bot.New(e.cfg.TelegramToken)
				if err != nil {
					return fmt.Errorf("create bot: %w", err)
				}
				botController = controller.NewBotController(b, a.botHandlers(), e.logger)
				if err := botController.RegisterHandlers(ctx); err != nil {
					return fmt.Errorf("register bot handlers: %w", err)
				}
			} else {
				e.logger.Info("TELEGRAM_TOKEN is not set, Telegram bot is disabled")
			}

			srv := &http.Server{
				Addr:              e.cfg.HTTPAddr,
				Handler:           a.httpHandler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				e.logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			})
			if botController != nil {
				g.Go(func() error {
					return botController.Start(gctx)
				})
			}
			g.Go(func() error {
				<-gctx.Done()
				e.logger.Info("Shutting down HTTP server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			return g.Wait()
		},
	}
}
