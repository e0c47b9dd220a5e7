package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobboard/internal/api"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long:  "Serve the JSON API; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (overrides server.listen)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	listen := a.cfg.Server.Listen
	if serveListen != "" {
		listen = serveListen
	}

	a.logger.Info("config loaded",
		"data_dir", a.cfg.DataDir,
		"listen", listen,
		"telegram", a.cfg.Telegram.Enabled(),
		"ai", a.cfg.AI.APIKey != "",
		"poll_interval", a.cfg.AI.PollInterval.String(),
		"max_polls", a.cfg.AI.MaxPolls,
	)

	srv, err := api.New(api.Config{
		Board:        a.board,
		Studio:       setupStudio(a.cfg, a.logger),
		Policy:       a.policy,
		Version:      version,
		WriteLimit:   a.cfg.Server.WriteLimit,
		MaxBodyBytes: a.cfg.Server.MaxBodyBytes,
		Logger:       a.logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx, listen)
	})
	if rot, ok := a.logFile.(rotator); ok {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		g.Go(func() error {
			return rotateOnHangup(ctx, hup, rot, a.logger)
		})
	}
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}

	a.logger.Info("goodbye")
	return nil
}

// rotator is implemented by *lumberjack.Logger.
type rotator interface {
	Rotate() error
}

// rotateOnHangup reopens the log file on every SIGHUP until ctx is done, so
// external logrotate setups can move the file away.
func rotateOnHangup(ctx context.Context, hup <-chan os.Signal, r rotator, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hup:
			if err := r.Rotate(); err != nil {
				logger.Warn("log rotation failed", "error", err)
				continue
			}
			logger.Info("log file rotated")
		}
	}
}
