package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"simkas/internal/router"
	"simkas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the outbox relayer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	outboxLog := newLogger("OUTBOX")
	relayer := service.NewOutboxRelayer(a.outbox, a.cfg.Outbox.BatchSize, a.cfg.Outbox.Interval, outboxLog, a.sinks()...)
	go relayer.Run(ctx)
	if _, err := service.StartOutboxRetry(ctx, a.outbox, a.cfg.Outbox.RetrySchedule, a.cfg.Outbox.MaxRetries, outboxLog); err != nil {
		return err
	}

	gin.SetMode(a.cfg.Server.Mode)
	r := router.InitRouter(router.Deps{
		Users:       a.userSvc,
		Master:      a.masterSvc,
		Campaigns:   a.campaignSvc,
		Submissions: a.submissionSvc,
		Validation:  a.validationSvc,
		Aggregates:  a.aggregates,
		Tokens:      a.tokens,
		Sessions:    a.sessions,
		MaxUploadMB: a.cfg.Server.MaxUploadMB,
	})
	srv := &http.Server{Addr: a.cfg.Server.Addr, Handler: r}

	httpLog := newLogger("HTTP")
	errCh := make(chan error, 1)
	go func() {
		httpLog.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	httpLog.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
