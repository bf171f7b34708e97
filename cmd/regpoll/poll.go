// cmd/regpoll/poll.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/register-poller/internal/config"
	"github.com/tamzrod/register-poller/internal/poller"
	"github.com/tamzrod/register-poller/internal/server"
	"github.com/tamzrod/register-poller/internal/status"
	"github.com/tamzrod/register-poller/internal/writer"
)

func newPollCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Poll continuously on the configured interval",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPoll(cmd.Context(), flags)
		},
	}
}

func newOnceCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single poll cycle and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd.Context(), flags)
		},
	}
}

// pipeline is everything one device needs, built from config.
type pipeline struct {
	cfg    *config.Config
	log    *zap.Logger
	poller *poller.Poller
	sinks  writer.Sinks
	close  func()
}

func buildPipeline(flags *rootFlags) (*pipeline, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	log.Debug("config loaded", zap.Any("config", config.Redacted(*cfg)))

	reg, err := loadSchema(cfg.Schema.Path)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("schema: %w", err)
	}

	// ---- poller ----
	p, closePoller, err := poller.Build(cfg, reg, log)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("poller build failed (unit=%s): %w", cfg.Device.ID, err)
	}
	log.Info("poller ready",
		zap.String("unit", cfg.Device.ID),
		zap.Int("registers", reg.Len()),
		zap.Stringers("plans", p.Plans()),
	)

	// ---- outputs ----
	sinks, closeSinks, err := writer.Build(cfg, log)
	if err != nil {
		_ = closePoller()
		_ = log.Sync()
		return nil, fmt.Errorf("writer build failed (unit=%s): %w", cfg.Device.ID, err)
	}

	return &pipeline{
		cfg:    cfg,
		log:    log,
		poller: p,
		sinks:  sinks,
		close: func() {
			if err := closeSinks(); err != nil {
				log.Warn("closing outputs", zap.Error(err))
			}
			if err := closePoller(); err != nil {
				log.Warn("closing transport", zap.Error(err))
			}
			_ = log.Sync()
		},
	}, nil
}

func runPoll(parent context.Context, flags *rootFlags) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pl, err := buildPipeline(flags)
	if err != nil {
		return err
	}
	defer pl.close()

	tracker := status.NewTracker()

	// ---- http ----
	var srv *http.Server
	if pl.cfg.HTTP.Enabled {
		srv = server.NewServer(*pl.cfg, tracker, pl.sinks.Latest)
		go func() {
			pl.log.Info("http listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				pl.log.Error("http server error", zap.Error(err))
				stop()
			}
		}()
	}

	// ---- channel between poller and writers ----
	out := make(chan poller.PollResult)
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		pl.poller.Run(ctx, out)
	}()

	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	orchestrate(ctx, pl.cfg.Device.ID, out, secTicker.C, pl.sinks, tracker, pl.log)

	// the in-flight cycle must finish before the transport is closed
	<-runDone

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			pl.log.Warn("http forced to shutdown", zap.Error(err))
		}
	}
	pl.log.Info("shutdown complete")
	return nil
}

func runOnce(parent context.Context, flags *rootFlags) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pl, err := buildPipeline(flags)
	if err != nil {
		return err
	}
	defer pl.close()

	res := pl.poller.PollOnce(ctx)
	if res.Err != nil {
		pl.log.Error("poll cycle failed", zap.Error(res.Err), zap.Uint16("code", status.Code(res.Err)))
		return res.Err
	}

	if err := pl.sinks.Data.Write(res); err != nil {
		return err
	}
	pl.log.Info("poll cycle complete", zap.Int("fields", len(res.Fields)), zap.Duration("took", res.Duration))
	return nil
}
