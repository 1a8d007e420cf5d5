package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bloombot/bloom/internal/assistant"
	"github.com/bloombot/bloom/internal/config"
	"github.com/bloombot/bloom/internal/history"
	"github.com/bloombot/bloom/internal/imagegen"
	"github.com/bloombot/bloom/internal/logger"
	"github.com/bloombot/bloom/internal/router"
	"github.com/bloombot/bloom/internal/storage"
	"github.com/bloombot/bloom/internal/webhook"
	"github.com/bloombot/bloom/internal/whatsapp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	Long: `Start the webhook server and process inbound WhatsApp messages
until interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Close()
	zlog := log.GetZerolog()

	// Conversation history
	store, err := history.NewSQLiteStore(cfg.History.DatabasePath, zlog)
	if err != nil {
		return err
	}
	defer store.Close()

	// Collaborators
	provider, err := assistant.NewProvider(cfg.Assistant)
	if err != nil {
		return err
	}
	orchestrator := assistant.NewOrchestrator(provider, store, zlog)

	uploader, err := storage.NewCloudinaryUploader(cfg.Storage, zlog)
	if err != nil {
		return err
	}

	client := whatsapp.NewClient(cfg.WhatsApp, zlog)
	media := whatsapp.NewMedia(cfg.WhatsApp, cfg.Capture, cfg.Storage.Folder, uploader, zlog)
	generator := imagegen.NewClient(cfg.ImageGen, cfg.Server.PublicBaseURL, zlog)

	messageRouter := router.NewRouter(client, media, orchestrator, generator, cfg.ImageGen.CommandToken, zlog)

	sweeper := whatsapp.NewRetentionSweeper(cfg.Capture, zlog)
	if err := sweeper.Start(); err != nil {
		return fmt.Errorf("failed to start retention sweep: %w", err)
	}
	defer sweeper.Stop()

	server, err := webhook.NewServer(webhook.ServerOptions{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		VerifyToken: cfg.WhatsApp.VerifyToken,
		ArtifactDir: cfg.ImageGen.ArtifactDir,
	}, messageRouter, zlog)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		zlog.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Stop(ctx)
}
