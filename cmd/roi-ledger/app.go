package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/roi-ledger/internal/config"
	"github.com/yourusername/roi-ledger/internal/extraction"
	"github.com/yourusername/roi-ledger/internal/httpclient"
	"github.com/yourusername/roi-ledger/internal/logger"
	"github.com/yourusername/roi-ledger/internal/metrics"
	"github.com/yourusername/roi-ledger/internal/notify"
	"github.com/yourusername/roi-ledger/internal/service"
	"github.com/yourusername/roi-ledger/internal/store"
)

// app holds the wired collaborators shared by every command
type app struct {
	cfg       *config.Config
	logger    *logrus.Logger
	store     store.Store
	hub       *notify.Hub
	ingestion *service.ReportIngestionService
	bets      *service.BetService
	dashboard *service.DashboardService
	closers   []func()
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return nil, err
	}

	log := logger.NewLoggerForEnvironment(cfg.App.LogLevel, cfg.App.Environment)
	a := &app{cfg: cfg, logger: log}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	client := httpclient.New(cfg.HTTPClientSettings(), log)
	a.closers = append(a.closers, func() { _ = client.Close() })

	st, closeStore, err := store.Open(ctx, cfg, client, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	a.store = st
	a.closers = append(a.closers, closeStore)

	publishers := notify.Multi{}
	if cfg.Notify.WebsocketEnabled {
		a.hub = notify.NewHub(log)
		publishers = append(publishers, a.hub)
	}
	if cfg.Notify.Telegram.Enabled {
		tg, err := notify.NewTelegramNotifier(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID, log)
		if err != nil {
			log.WithError(err).Warn("Telegram notifications disabled")
		} else {
			publishers = append(publishers, tg)
			a.closers = append(a.closers, tg.Stop)
		}
	}

	extractor := extraction.NewGeminiClient(extraction.GeminiConfig{
		BaseURL:     cfg.Extraction.BaseURL,
		Model:       cfg.Extraction.Model,
		APIKey:      cfg.Extraction.APIKey,
		Temperature: cfg.Extraction.Temperature,
		TopK:        cfg.Extraction.TopK,
		TopP:        cfg.Extraction.TopP,
	}, client, log)

	a.dashboard = service.NewDashboardService(st, cfg.DashboardCacheTTL(), cfg.Store.RecentResultsLimit, log)
	opts := []service.Option{
		service.WithPublisher(publishers),
		service.WithCache(a.dashboard),
	}
	a.ingestion = service.NewReportIngestionService(st, extractor, cfg.Server.MaxUploadBytes, log, opts...)
	a.bets = service.NewBetService(st, log, opts...)

	return a, nil
}

// Close releases everything newApp opened, newest first
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
