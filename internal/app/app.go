package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/hoverdeck/internal/config"
	"github.com/five82/hoverdeck/internal/hoverfly"
	"github.com/five82/hoverdeck/internal/prefs"
	"github.com/five82/hoverdeck/internal/state"
	"github.com/five82/hoverdeck/internal/ui"
)

// Options configure the console.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/hoverdeck/prefs.toml
	AdminBind  string // overrides admin_bind from the config file
	PollEvery  int    // seconds; zero uses the configured interval
}

// Run boots the console until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.AdminBind != "" {
		cfg.AdminBind = opts.AdminBind
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = time.Duration(opts.PollEvery) * time.Second
	}

	logger, closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	userPrefs := prefs.Load(opts.PrefsPath)

	req, err := hoverfly.NewRequest(cfg.AdminBind, hoverfly.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("init admin client: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"admin":         req.BaseURL(),
		"poll_interval": cfg.PollInterval,
		"logs_interval": cfg.LogsInterval,
	}).Info("hoverdeck starting")

	store := state.NewStore(hoverfly.NewAPI(req), state.WithLogger(logger))

	StartPoller(ctx, store, cfg.PollInterval, logger)
	logsPoller := NewLogsPoller(store, cfg.LogsInterval, logger)
	go logsPoller.Run(ctx)

	err = ui.Run(ui.Options{
		Context:   ctx,
		Store:     store,
		Commands:  NewController(ctx, store, logsPoller, logger),
		AdminURL:  req.BaseURL(),
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		Logger:    logger,
	})
	logger.Info("hoverdeck stopped")
	return err
}
