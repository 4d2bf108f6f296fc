package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Vodeneev/betlinkbot/internal/pkg/bot"
	"github.com/Vodeneev/betlinkbot/internal/pkg/config"
	"github.com/Vodeneev/betlinkbot/internal/pkg/conversation"
	"github.com/Vodeneev/betlinkbot/internal/pkg/health"
	"github.com/Vodeneev/betlinkbot/internal/pkg/logging"
	"github.com/Vodeneev/betlinkbot/internal/pkg/performance"
	"github.com/Vodeneev/betlinkbot/internal/pkg/storage"
)

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	healthAddr, err := healthListenAddr(&cfg.Health)
	if err != nil {
		return err
	}

	logger, logCloser, err := logging.SetupLogger(&cfg.Logging, serviceName)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, &cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open session storage: %w", err)
	}
	defer store.Close()

	tracker := performance.GetTracker()
	machine := conversation.NewMachine(store,
		conversation.WithTracker(tracker),
		conversation.WithLogger(logger),
	)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}
	api.Debug = cfg.Telegram.Debug
	logger.Info("Authorized on account", "username", api.Self.UserName, "storage", cfg.Storage.Driver)

	b := bot.New(bot.NewThrottledSender(api, cfg.Telegram.SendInterval), machine,
		bot.WithAllowedUsers(cfg.Telegram.AllowedUserIDs),
		bot.WithTracker(tracker),
		bot.WithLogger(logger),
	)
	if err := b.RegisterCommands(); err != nil {
		logger.Warn("Could not register command menu", "error", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = cfg.Telegram.UpdateTimeout
	updates := api.GetUpdatesChan(u)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		// Stopping the bot also stops the health server.
		defer cancel()
		defer api.StopReceivingUpdates()
		return b.Run(gctx, updates)
	})
	if healthAddr != "" {
		g.Go(func() error {
			return health.Run(gctx, healthAddr, serviceName, tracker, cfg.Health.ReadHeaderTimeout)
		})
	}

	logger.Info("Bot running")
	err = g.Wait()
	tracker.PrintSummary()
	slog.Info("Telegram bot stopped")
	return err
}

// healthListenAddr returns the health server address, or "" when the server
// is disabled.
func healthListenAddr(cfg *config.HealthConfig) (string, error) {
	if cfg.Port == 0 {
		return "", nil
	}
	return health.AddrFor(cfg.Port)
}
