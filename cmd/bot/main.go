package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/avolkov/voxscribe/internal/bot"
	"github.com/avolkov/voxscribe/internal/config"
	"github.com/avolkov/voxscribe/internal/dispatcher"
	"github.com/avolkov/voxscribe/internal/gpt"
	"github.com/avolkov/voxscribe/internal/iam"
	"github.com/avolkov/voxscribe/internal/logger"
	"github.com/avolkov/voxscribe/internal/report"
	"github.com/avolkov/voxscribe/internal/repository"
	"github.com/avolkov/voxscribe/internal/segmenter"
	"github.com/avolkov/voxscribe/internal/speechkit"
	"github.com/avolkov/voxscribe/internal/storage"
	"github.com/avolkov/voxscribe/internal/watcher"
	"github.com/avolkov/voxscribe/pkg/executor"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	// .env is optional; config values reference its variables.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	log.Info(ctx, "========================================")
	log.Info(ctx, "VoxScribe — Telegram transcription bot")
	log.Info(ctx, "========================================")
	log.Info(ctx, "Workers: %d, shutdown policy: %s", cfg.Processing.Workers, cfg.Processing.Shutdown)

	repo, err := repository.New(cfg.Database.Path)
	if err != nil {
		log.Error(ctx, "Failed to open database: %v", err)
		os.Exit(1)
	}
	defer repo.Close()

	tokens, err := iam.New(cfg.Cloud.ServiceAccountKeyFile, cfg.Cloud.IAMEndpoint, log)
	if err != nil {
		log.Error(ctx, "Failed to initialize IAM credentials: %v", err)
		os.Exit(1)
	}

	store := storage.New(cfg.Storage, log)
	exec := executor.New()
	seg := segmenter.New(exec, log, cfg.Processing.MaxDurationSeconds, cfg.Processing.MaxSizeBytes)
	recognizer := speechkit.New(tokens, cfg.SpeechKit, log)
	analyzer := gpt.New(tokens, cfg.Cloud.FolderID, cfg.GPT, log)
	renderer := report.New(log)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error(ctx, "Failed to connect to Telegram: %v", err)
		os.Exit(1)
	}
	log.Info(ctx, "Connected as @%s", api.Self.UserName)

	notifier := bot.NewNotifier(api, log)
	d := dispatcher.New(cfg.Processing, seg, store, recognizer, analyzer, repo, notifier, log)
	b := bot.New(api, cfg.Telegram, cfg.Processing, d, repo, renderer, log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The dispatcher owns its workers' lifecycle through Stop, so a
	// draining shutdown is not cut short by the outer cancellation.
	d.Start(context.Background())

	errChan := make(chan error, 2)
	go func() {
		if err := b.Run(ctx); err != nil {
			errChan <- fmt.Errorf("bot: %w", err)
		}
	}()

	// The inbox watcher is optional: it ingests files dropped into a
	// local directory on behalf of the admin chat.
	if cfg.Inbox.Dir != "" && cfg.Inbox.AdminChatID != 0 {
		w, err := watcher.New(cfg.Inbox.Dir, func(ctx context.Context, path string) error {
			job := dispatcher.NewJob(cfg.Inbox.AdminChatID, path, filepath.Base(path))
			position := d.Enqueue(job)
			log.Info(ctx, "Inbox file %s queued at position %d", path, position)
			return nil
		}, log)
		if err != nil {
			log.Error(ctx, "Failed to start inbox watcher: %v", err)
			os.Exit(1)
		}
		defer w.Stop()
		go func() {
			if err := w.Start(ctx); err != nil && err != context.Canceled {
				errChan <- fmt.Errorf("watcher: %w", err)
			}
		}()
		log.Info(ctx, "Inbox watcher monitoring %s", cfg.Inbox.Dir)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info(ctx, "VoxScribe is ready. Press Ctrl+C to stop")

	select {
	case <-sigChan:
		log.Info(ctx, "Shutdown signal received")
	case err := <-errChan:
		log.Error(ctx, "Fatal: %v", err)
	}

	log.Info(ctx, "Shutting down gracefully...")
	cancel()
	d.Stop()

	log.Info(ctx, "VoxScribe stopped")
}
