package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/hray3182/diditakeit/internal/ai"
	"github.com/hray3182/diditakeit/internal/alarm"
	"github.com/hray3182/diditakeit/internal/bot"
	"github.com/hray3182/diditakeit/internal/bridge"
	"github.com/hray3182/diditakeit/internal/config"
	"github.com/hray3182/diditakeit/internal/kv"
	"github.com/hray3182/diditakeit/internal/models"
	"github.com/hray3182/diditakeit/internal/notify"
	"github.com/hray3182/diditakeit/internal/overdue"
	"github.com/hray3182/diditakeit/internal/repository"
	"github.com/hray3182/diditakeit/internal/scheduler"
	"github.com/hray3182/diditakeit/internal/tasks"
)

// app holds the wired core shared by every subcommand.
type app struct {
	cfg      *config.Config
	store    kv.Store
	tasks    *tasks.Service
	settings *repository.SettingsRepository
	telegram *notify.Telegram
	terminal *alarm.Terminal
	sched    *scheduler.Scheduler
}

// newApp opens the store and builds the scheduler. extra alarms receive the
// same signals as the terminal bell.
func newApp(ctx context.Context, cfg *config.Config, extra ...overdue.Alarm) (*app, error) {
	// Open store
	store, err := kv.Open(ctx, kv.Options{
		Driver:      cfg.StoreDriver,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURI: cfg.DatabaseURI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	log.Printf("Opened %s store", cfg.StoreDriver)

	svc := tasks.NewService(store, nil)
	settingsRepo := repository.NewSettingsRepository(store)
	settings, err := settingsRepo.Get(ctx)
	if err != nil {
		log.Printf("Failed to get settings: %v", err)
	}

	terminal := alarm.NewTerminal(os.Stdout, settings.AlarmSound)
	var attention overdue.Alarm = terminal
	if len(extra) > 0 {
		attention = append(alarm.Multi{terminal}, extra...)
	}

	telegram := notify.NewTelegram(cfg.TelegramEndpoint, cfg.NotifyTimeoutDuration())
	sched := scheduler.New(scheduler.Config{
		Tasks:         svc,
		Settings:      settingsRepo,
		Notifier:      telegram,
		Alarm:         attention,
		NotifyTimeout: cfg.NotifyTimeoutDuration(),
	})
	svc.OnChange(sched.Notify)

	// Credentials from the environment act as session credentials
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		sched.Session().SetCredentials(notify.Credentials{Token: cfg.TelegramToken, ChatID: cfg.TelegramChatID})
	}

	return &app{
		cfg:      cfg,
		store:    store,
		tasks:    svc,
		settings: settingsRepo,
		telegram: telegram,
		terminal: terminal,
		sched:    sched,
	}, nil
}

// applySettings pushes saved settings into the running timers and bell.
func (a *app) applySettings(s models.Settings) {
	a.sched.SetIntervals(s.CheckInterval(), s.RolloverInterval())
	a.terminal.SetSound(s.AlarmSound)
}

func (a *app) Close() {
	a.sched.Wait()
	if err := a.store.Close(); err != nil {
		log.Printf("Failed to close store: %v", err)
	}
}

// newBot builds the interactive bot when enabled and shares its client with
// the notifier.
func (a *app) newBot() (*bot.Bot, error) {
	if !a.cfg.BotEnabled {
		return nil, nil
	}

	var aiClient *ai.Client
	if a.cfg.AIAPIKey != "" {
		aiClient = ai.New(a.cfg.AIAPIKey, a.cfg.AIBaseURL, a.cfg.AIModel)
		log.Printf("AI client initialized (model: %s)", a.cfg.AIModel)
	} else {
		log.Println("AI client not configured, natural language features disabled")
	}

	b, err := bot.New(a.cfg.TelegramToken, a.cfg.TelegramEndpoint, a.tasks, a.settings, aiClient, a.cfg.TelegramChatID)
	if err != nil {
		return nil, err
	}
	a.telegram.UseBot(b.API())
	b.OnSettingsChange(a.applySettings)
	return b, nil
}

func (a *app) newBridge() *bridge.Client {
	if a.cfg.BridgeURL == "" {
		return nil
	}
	return bridge.New(bridge.Config{
		PeerURL:       a.cfg.BridgeURL,
		Tasks:         a.tasks,
		Guard:         a.sched.Session(),
		PushInterval:  a.cfg.BridgePushDuration(),
		RetryInterval: a.cfg.BridgeRetryDuration(),
		Timeout:       a.cfg.NotifyTimeoutDuration(),
	})
}
