package cli

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/khanglvm/gift-hub/internal/catalog"
	"github.com/khanglvm/gift-hub/internal/config"
	"github.com/khanglvm/gift-hub/internal/embed"
	"github.com/khanglvm/gift-hub/internal/history"
	"github.com/khanglvm/gift-hub/internal/logging"
	"github.com/khanglvm/gift-hub/internal/metrics"
	"github.com/khanglvm/gift-hub/internal/recommend"
	"github.com/khanglvm/gift-hub/internal/search"
	"github.com/khanglvm/gift-hub/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// bootstrapOptions selects the optional parts of the runtime.
type bootstrapOptions struct {
	// longRunning keeps Info logs and enables metrics.
	longRunning bool

	// history records outcomes when the config allows it.
	history bool

	// keyword builds the BM25 index even in semantic mode.
	keyword bool

	// rebuild ignores a stored catalog snapshot.
	rebuild bool
}

// appRuntime is everything a command needs to serve requests.
type appRuntime struct {
	cfg        *config.Config
	configPath string
	logger     *zap.Logger
	encoder    embed.Encoder
	store      storage.Storage
	catalog    *catalog.Catalog
	keyword    *search.KeywordIndex
	metrics    *metrics.Recorder
	tracker    *history.Tracker
	service    *recommend.Service
}

// loadConfig reads and validates the configuration for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, err := configPath(cmd)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, path, err
	}
	if err := cfg.Validate(); err != nil {
		var ie *config.InvalidConfigError
		if errors.As(err, &ie) {
			ie.Path = path
		}
		return nil, path, err
	}
	return cfg, path, nil
}

// bootstrap wires config, logging, encoder, storage, catalog, ranker,
// observers and the recommendation service.
func bootstrap(ctx context.Context, cmd *cobra.Command, opts bootstrapOptions) (*appRuntime, error) {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	level := zapcore.WarnLevel
	if opts.longRunning {
		level = zapcore.InfoLevel
	}
	if debugEnabled(cmd) {
		level = zapcore.DebugLevel
	}
	logger, err := logging.NewAt(level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	rt := &appRuntime{cfg: cfg, configPath: path, logger: logger}
	ok := false
	defer func() {
		if !ok {
			rt.Close()
		}
	}()

	rt.encoder, err = embed.Open(cfg.Encoder.Kind, cfg.Encoder.Dimensions, embed.ONNXConfig{
		RuntimeLibrary: config.ExpandPath(cfg.Encoder.RuntimeLibrary),
		ModelPath:      config.ExpandPath(cfg.Encoder.ModelPath),
		TokenizerPath:  config.ExpandPath(cfg.Encoder.TokenizerPath),
		MaxSeqLen:      cfg.Encoder.MaxSeqLen,
		Dimensions:     cfg.Encoder.Dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open encoder: %w", err)
	}

	wantHistory := opts.history && cfg.Settings.HistoryEnabled
	if cfg.Catalog.Snapshot || wantHistory {
		store := storage.NewStorage(config.ExpandPath(cfg.Catalog.Database), logger)
		if err := store.Init(); err != nil {
			logger.Warn("storage unavailable, continuing without persistence", zap.Error(err))
		}
		rt.store = store
	}

	var source catalog.Source = catalog.SeedSource{}
	if cfg.Catalog.Path != "" {
		source = catalog.FileSource{Path: config.ExpandPath(cfg.Catalog.Path)}
	}
	builder := &catalog.Builder{
		Source:  source,
		Encoder: rt.encoder,
		Workers: runtime.NumCPU(),
		Logger:  logger,
	}

	var provider catalog.Provider = builder
	if cfg.Catalog.Snapshot && rt.store != nil && rt.store.Enabled() {
		provider = &catalog.SnapshotProvider{
			Store:   rt.store,
			Builder: builder,
			Rebuild: opts.rebuild,
			Logger:  logger,
		}
	}

	rt.catalog, err = provider.Provide(ctx)
	if err != nil {
		return nil, err
	}

	var ranker search.Ranker
	if cfg.Ranking.Mode == config.ModeHybrid || opts.keyword {
		rt.keyword, err = search.NewKeywordIndex(rt.catalog)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Ranking.Mode == config.ModeHybrid {
		ranker = &search.HybridRanker{
			Catalog: rt.catalog,
			Index:   rt.keyword,
			Fusion: search.FusionConfig{
				SemanticWeight: cfg.Ranking.SemanticWeight,
				KeywordWeight:  cfg.Ranking.KeywordWeight,
			},
		}
	}

	var observers []recommend.Observer
	if opts.longRunning {
		rt.metrics = metrics.NewRecorder()
		rt.metrics.SetCatalogSize(rt.catalog.Len())
		observers = append(observers, rt.metrics)
	}
	if wantHistory && rt.store != nil && rt.store.Enabled() {
		rt.tracker = history.NewTracker(rt.store, logger)
		observers = append(observers, rt.tracker)
		if rt.metrics != nil {
			rt.metrics.WatchHistory(rt.tracker)
		}
	}

	selector := recommend.Selector{
		AnchorRatio:   cfg.Bundle.AnchorRatio,
		FillerCeiling: cfg.Bundle.FillerCeiling,
	}
	rt.service, err = recommend.NewService(rt.catalog, rt.encoder, recommend.Config{
		PoolSize:  cfg.Ranking.PoolSize,
		Selector:  &selector,
		Ranker:    ranker,
		Logger:    logger,
		Observers: observers,
	})
	if err != nil {
		return nil, err
	}

	ok = true
	return rt, nil
}

// cleanupHistory applies the retention policy.
func (rt *appRuntime) cleanupHistory() {
	if rt.tracker == nil || rt.cfg.Settings.HistoryRetentionDays <= 0 {
		return
	}
	retention := time.Duration(rt.cfg.Settings.HistoryRetentionDays) * 24 * time.Hour
	if err := rt.store.Cleanup(retention); err != nil {
		rt.logger.Warn("history cleanup failed", zap.Error(err))
	}
}

// Close flushes history and releases resources in dependency order.
func (rt *appRuntime) Close() {
	if rt.tracker != nil {
		rt.tracker.Stop()
	}
	if rt.keyword != nil {
		if err := rt.keyword.Close(); err != nil {
			rt.logger.Warn("failed to close keyword index", zap.Error(err))
		}
	}
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			rt.logger.Warn("failed to close storage", zap.Error(err))
		}
	}
	if rt.encoder != nil {
		if err := rt.encoder.Close(); err != nil {
			rt.logger.Warn("failed to close encoder", zap.Error(err))
		}
	}
	rt.logger.Sync()
}
