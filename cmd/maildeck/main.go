package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/maildeck/internal/api"
	"github.com/nhle/maildeck/internal/app"
	"github.com/nhle/maildeck/internal/cache"
	"github.com/nhle/maildeck/internal/credential"
	"github.com/nhle/maildeck/internal/logging"
	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/ops"
	"github.com/nhle/maildeck/internal/state"
	appsync "github.com/nhle/maildeck/internal/sync"
)

func main() {
	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "maildeck: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	// The offline cache is optional: without it the app still works, it
	// just starts with an empty screen until the backend answers.
	var offline ops.Cache
	sqliteCache, err := cache.NewSQLiteCache(cfg.CachePath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.CachePath).
			Msg("offline cache unavailable")
	} else {
		offline = sqliteCache
		defer sqliteCache.Close()
	}

	tokens := credential.KeyringTokens{}
	client := api.NewClient(
		cfg.Backend.BaseURL,
		tokens,
		time.Duration(cfg.Backend.RequestTimeoutSec)*time.Second,
	)

	accountSvc := api.NewAccountService(client)
	emailSvc := api.NewEmailService(client)
	syncSvc := api.NewSyncService(client)

	store := state.NewStore()
	operations := ops.New(
		store,
		accountSvc,
		emailSvc,
		offline,
		logger,
		cfg.Display.PageSize,
	)

	coordinator := appsync.NewCoordinator(store, accountSvc, logger)
	orchestrator := appsync.NewOrchestrator(
		store,
		accountSvc,
		syncSvc,
		coordinator,
		operations,
		logger,
		time.Duration(cfg.Backend.ConfirmPollTimeoutSec)*time.Second,
		time.Duration(cfg.Backend.ReloadDelaySec)*time.Second,
	)

	root := app.New(
		store,
		operations,
		coordinator,
		orchestrator,
		time.Duration(cfg.Display.TestResultDisplaySec)*time.Second,
	)

	logger.Info().Str("backend", cfg.Backend.BaseURL).Msg("starting maildeck")

	program := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logger.Error().Err(err).Msg("program terminated")
		fmt.Fprintf(os.Stderr, "maildeck: %v\n", err)
		os.Exit(1)
	}
}
