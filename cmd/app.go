package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/fitting-room/internal/ai"
	"github.com/spigell/fitting-room/internal/ai/gemini"
	"github.com/spigell/fitting-room/internal/apperr"
	"github.com/spigell/fitting-room/internal/imagestore"
	"github.com/spigell/fitting-room/internal/logger"
	"github.com/spigell/fitting-room/internal/measurement"
	"github.com/spigell/fitting-room/internal/recommend"
	"github.com/spigell/fitting-room/internal/secrets"
	"github.com/spigell/fitting-room/internal/store/cache"
	"github.com/spigell/fitting-room/internal/store/sqlstore"
	"github.com/spigell/fitting-room/internal/tryon"
)

const geminiKeyEnv = "GEMINI_API_KEY"

// application holds the wired dependencies shared by the subcommands.
type application struct {
	config  *Config
	logger  *zap.Logger
	store   *sqlstore.Store
	redis   *redis.Client
	catalog cache.CatalogStore
	cache   *cache.CatalogCache
}

// setup builds the logger, reads the config and opens the stores.
func setup(ctx context.Context) *application {
	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting", zap.String("version", version), zap.String("database", config.Database.Driver))

	store, err := sqlstore.Open(ctx, config.Database, logger, viper.GetBool("debug"))
	if err != nil {
		logger.Fatal("opening the database", zap.Error(err))
	}

	a := &application{
		config:  config,
		logger:  logger,
		store:   store,
		catalog: store.Catalog,
	}

	if config.Redis.Enabled() {
		client, err := cache.Connect(ctx, config.Redis)
		if err != nil {
			logger.Warn("skipping catalog cache", zap.Error(err))
			return a
		}
		a.redis = client
		a.cache = cache.NewCatalogCache(store.Catalog, client, config.Redis.TTL, logger.With(zap.String("component", "catalog_cache")))
		a.catalog = a.cache
	}

	return a
}

func newLogger() (*zap.Logger, error) {
	return logger.New(viper.GetBool("json"), viper.GetBool("debug"))
}

func (a *application) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing the database", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func (a *application) measurementService() *measurement.Service {
	return measurement.NewService(a.store.Measurements, a.logger)
}

func (a *application) recommendService() *recommend.Service {
	return recommend.NewService(a.store.Measurements, a.catalog, a.logger)
}

func (a *application) tryOnService(ctx context.Context) *tryon.Service {
	images, err := imagestore.Open(ctx, a.config.Images)
	if err != nil {
		a.logger.Fatal("opening the image store", zap.Error(err))
	}

	analyzer, err := newAnalyzer(ctx, a.config, images, a.logger)
	if err != nil {
		a.logger.Fatal("building the analyzer", zap.Error(err))
	}

	return tryon.NewService(tryon.Stores{
		Measurements: a.store.Measurements,
		Catalog:      a.catalog,
		Presets:      a.store.Presets,
		Requests:     a.store.TryOns,
	}, analyzer, a.config.TryOn.AnalyzerTimeout, a.logger)
}

// fatal logs err with its kind and exits.
func (a *application) fatal(msg string, err error) {
	fields := []zap.Field{zap.Error(err)}
	if kind := apperr.KindOf(err); kind != "" {
		fields = append(fields, zap.String("kind", string(kind)))
	}
	a.logger.Fatal(msg, fields...)
}

// newAnalyzer picks the fit analyzer. Without a configured api key the
// deterministic simulator is used unless gemini was requested explicitly.
func newAnalyzer(ctx context.Context, cfg *Config, images gemini.ImageLoader, logger *zap.Logger) (ai.Analyzer, error) {
	placeholder := cfg.TryOn.PlaceholderImage

	provider := strings.TrimSpace(strings.ToLower(cfg.AI.Provider))
	switch provider {
	case "simulator":
		return ai.NewSimulator(placeholder), nil
	case "", "gemini":
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.AI.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.AI.Gemini.APIKey,
		File:  cfg.AI.Gemini.APIKeyFile,
		Env:   geminiKeyEnv,
	})
	if err != nil {
		if secrets.Configured(err) || provider == "gemini" {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
		}
		logger.Info("gemini api key is not configured, using the simulator")
		return ai.NewSimulator(placeholder), nil
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.AI.Gemini.Model)
	if err != nil {
		return nil, err
	}

	return gemini.NewAnalyzer(generator, images, placeholder, cfg.AI.Gemini.MaxLogLength, logger), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
