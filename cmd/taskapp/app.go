package main

import (
	"fmt"
	"log"

	"taskapp/internal/config"
	"taskapp/internal/notify"
	"taskapp/internal/storage"
	"taskapp/internal/tasklist"
)

// app wires the store, the reminder scheduler and the list controller.
type app struct {
	cfg       config.Config
	store     *storage.Store
	scheduler *notify.Scheduler
	ctrl      *tasklist.Controller
	editor    *tasklist.Editor
}

func openApp(configPath string) (*app, error) {
	if configPath == "" {
		configPath = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	center, err := notify.Open(cfg.RemindersPath)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to open reminders: %w", err)
	}
	scheduler := notify.NewScheduler(center, log.Default())

	return &app{
		cfg:       cfg,
		store:     store,
		scheduler: scheduler,
		ctrl:      tasklist.New(store, scheduler),
		editor:    tasklist.NewEditor(store, scheduler),
	}, nil
}

func (a *app) Close() error {
	a.ctrl.Close()
	return a.store.Close()
}
