package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/avolkov/voxscribe/internal/config"
	"github.com/avolkov/voxscribe/internal/dispatcher"
	"github.com/avolkov/voxscribe/internal/logger"
	"github.com/avolkov/voxscribe/internal/report"
	"github.com/avolkov/voxscribe/internal/repository"
)

type implBot struct {
	api        *tgbotapi.BotAPI
	cfg        config.TelegramConfig
	processing config.ProcessingConfig
	dispatcher dispatcher.Dispatcher
	repo       repository.Repository
	renderer   report.Renderer
	logger     logger.Logger
}

func New(
	api *tgbotapi.BotAPI,
	cfg config.TelegramConfig,
	processing config.ProcessingConfig,
	d dispatcher.Dispatcher,
	repo repository.Repository,
	renderer report.Renderer,
	log logger.Logger,
) Bot {
	return &implBot{
		api:        api,
		cfg:        cfg,
		processing: processing,
		dispatcher: d,
		repo:       repo,
		renderer:   renderer,
		logger:     log,
	}
}
