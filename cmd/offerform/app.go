package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-offerform/internal/config"
	"github.com/goliatone/go-offerform/internal/logger"
	"github.com/goliatone/go-offerform/pkg/drafts"
	"github.com/goliatone/go-offerform/pkg/fieldspec"
	"github.com/goliatone/go-offerform/pkg/orchestrator"
	"github.com/goliatone/go-offerform/pkg/store"
	"github.com/goliatone/go-offerform/pkg/store/gormstore"
	"github.com/goliatone/go-offerform/pkg/store/memstore"
	"github.com/goliatone/go-offerform/pkg/summary"
	"github.com/goliatone/go-offerform/pkg/validation"
)

// app holds what every command shares: configuration, the logger and the
// resources that must be released on exit.
type app struct {
	configPath string
	cfg        *config.Config
	log        *slog.Logger
	closers    []func() error
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	log, closeLog, err := logger.Setup(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.cfg = cfg
	a.log = log
	a.closers = append(a.closers, closeLog)
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.log != nil {
			a.log.Warn("release resource", "error", err)
		}
	}
	a.closers = nil
}

func (a *app) registry() (*fieldspec.Registry, error) {
	return fieldspec.Resolve(a.cfg.Form.Profile)
}

func (a *app) gateway() (*store.Gateway, error) {
	var docs store.DocumentStore
	if strings.EqualFold(a.cfg.Storage.Driver, config.DriverMemory) {
		docs = memstore.New()
	} else {
		db, err := gormstore.Open(a.cfg.Storage.Gorm(), a.log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { return gormstore.Close(db) })
		docs = gormstore.New(db)
	}
	return store.NewGateway(docs,
		store.WithLogger(a.log),
		store.WithRetry(a.cfg.Storage.RetryAttempts, a.cfg.Storage.RetryBackoff),
	), nil
}

func (a *app) drafts(ctx context.Context) (drafts.Store, error) {
	if !a.cfg.Redis.Enabled {
		return nil, nil
	}
	client, err := drafts.Dial(ctx, a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	return drafts.NewRedisStore(client,
		drafts.WithPrefix(a.cfg.Redis.Prefix),
		drafts.WithTTL(a.cfg.Redis.TTL),
	), nil
}

// pipeline wires the orchestrator from configuration.
func (a *app) pipeline(ctx context.Context) (*orchestrator.Orchestrator, error) {
	registry, err := a.registry()
	if err != nil {
		return nil, err
	}
	gateway, err := a.gateway()
	if err != nil {
		return nil, err
	}
	draftStore, err := a.drafts(ctx)
	if err != nil {
		return nil, err
	}

	var validatorOpts []validation.Option
	if mode := strings.TrimSpace(a.cfg.Form.PlaceholderMode); mode != "" {
		validatorOpts = append(validatorOpts, validation.WithMode(mode))
	}

	opts := []orchestrator.Option{
		orchestrator.WithLogger(a.log),
		orchestrator.WithFieldRegistry(registry),
		orchestrator.WithGateway(gateway),
		orchestrator.WithValidator(validation.NewValidator(registry, validatorOpts...)),
	}
	if draftStore != nil {
		opts = append(opts, orchestrator.WithDrafts(draftStore))
	}
	return orchestrator.New(opts...)
}

var errNoAPIKey = errors.New("genai.api_key is not configured (set OFFERFORM_GENAI_API_KEY)")

func (a *app) summaries(ctx context.Context, gateway *store.Gateway) (*summary.Service, error) {
	if a.cfg.GenAI.APIKey == "" {
		return nil, errNoAPIKey
	}
	var genOpts []summary.GenAIOption
	if a.cfg.GenAI.Temperature > 0 {
		genOpts = append(genOpts, summary.WithTemperature(a.cfg.GenAI.Temperature))
	}
	generator, err := summary.NewGenAIGenerator(ctx, a.cfg.GenAI.APIKey, a.cfg.GenAI.Model, genOpts...)
	if err != nil {
		return nil, err
	}
	return summary.New(gateway, generator, summary.WithLogger(a.log))
}
