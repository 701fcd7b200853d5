package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/food-waste-predictor/internal/domain/advisor"
	"github.com/yanqian/food-waste-predictor/internal/domain/prediction"
	"github.com/yanqian/food-waste-predictor/internal/domain/records"
	"github.com/yanqian/food-waste-predictor/internal/infra/advicecache"
	"github.com/yanqian/food-waste-predictor/internal/infra/config"
	"github.com/yanqian/food-waste-predictor/internal/infra/llm/chatgpt"
	"github.com/yanqian/food-waste-predictor/internal/infra/recordstore"
	"github.com/yanqian/food-waste-predictor/pkg/metrics"
)

const storeInitTimeout = 10 * time.Second

// NewRecordStore builds the configured store. Any initialization failure falls back to the no-op store.
func NewRecordStore(cfg *config.Config, logger *slog.Logger) records.Store {
	logger = logger.With("component", "bootstrap.store")
	ctx, cancel := context.WithTimeout(context.Background(), storeInitTimeout)
	defer cancel()

	store, err := openRecordStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("record store unavailable, using no-op store", "driver", cfg.Store.Driver, "error", err)
		return recordstore.NoopStore{}
	}
	logger.Info("record store enabled", "driver", cfg.Store.Driver)
	return store
}

func openRecordStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (records.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverNone, "":
		return recordstore.NoopStore{}, nil
	case config.DriverMemory:
		return recordstore.NewMemoryStore(), nil
	case config.DriverPostgres, config.DriverSQLite:
		db, dialect, err := OpenSQL(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Store.Migrate {
			if err := recordstore.Migrate(ctx, db, dialect); err != nil {
				db.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return recordstore.NewSQLStore(db, dialect), nil
	case config.DriverSheets:
		credentials, err := os.ReadFile(cfg.Store.Sheets.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read sheets credentials: %w", err)
		}
		return recordstore.NewSheetsStore(context.Background(), credentials, cfg.Store.Sheets.SpreadsheetID, cfg.Store.Sheets.Sheet)
	case config.DriverS3:
		return recordstore.NewObjectStore(recordstore.ObjectStoreConfig{
			Endpoint:  cfg.Store.S3.Endpoint,
			AccessKey: cfg.Store.S3.AccessKey,
			SecretKey: cfg.Store.S3.SecretKey,
			Bucket:    cfg.Store.S3.Bucket,
			Region:    cfg.Store.S3.Region,
			Prefix:    cfg.Store.S3.Prefix,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// OpenSQL opens the SQL database of the configured postgres or sqlite driver.
func OpenSQL(ctx context.Context, cfg *config.Config) (*sql.DB, recordstore.Dialect, error) {
	dialect, err := recordstore.ParseDialect(cfg.Store.Driver)
	if err != nil {
		return nil, "", err
	}
	sqlCfg := cfg.Store.Postgres
	if dialect == recordstore.DialectSQLite {
		sqlCfg = cfg.Store.SQLite
	}
	db, err := recordstore.OpenDB(ctx, dialect, sqlCfg.DSN, recordstore.Options{
		MaxOpenConns:    sqlCfg.MaxOpenConns,
		MaxIdleConns:    sqlCfg.MaxIdleConns,
		ConnMaxLifetime: sqlCfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, "", err
	}
	return db, dialect, nil
}

// NewChatClient returns nil when no API key is configured, which disables AI enrichment.
func NewChatClient(cfg *config.Config, logger *slog.Logger) advisor.ChatClient {
	if !cfg.AIEnabled() {
		logger.Info("ai api key not set, predictions use rule based suggestions only")
		return nil
	}
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	if err != nil {
		logger.Error("ai client unavailable", "error", err)
		return nil
	}
	return client
}

// NewAdviceCache returns nil when caching is disabled.
func NewAdviceCache(cfg *config.Config, logger *slog.Logger) advisor.Cache {
	cacheCfg := cfg.Advisor.Cache
	if !cacheCfg.Enabled {
		return nil
	}
	if strings.TrimSpace(cacheCfg.Addr) == "" {
		return advicecache.NewMemoryStore()
	}
	opt, err := buildValkeyOptions(cacheCfg.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		return advicecache.NewMemoryStore()
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		return advicecache.NewMemoryStore()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		client.Close()
		return advicecache.NewMemoryStore()
	}
	logger.Info("ai valkey cache enabled", "addr", cacheCfg.Addr)
	return advicecache.NewValkeyCache(client, cacheCfg.Prefix)
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

// NewTokenCounter loads the tiktoken encoding only when AI calls can happen.
func NewTokenCounter(cfg *config.Config, logger *slog.Logger) advisor.TokenCounter {
	if !cfg.AIEnabled() {
		return advisor.ApproxCounter{}
	}
	counter, err := advisor.NewTokenCounter(cfg.Advisor.TokenEncoding)
	if err != nil {
		logger.Warn("token encoding unavailable, estimating tokens by length", "encoding", cfg.Advisor.TokenEncoding, "error", err)
	}
	return counter
}

// NewAdvisorConfig maps configuration onto the advisor domain.
func NewAdvisorConfig(cfg *config.Config) advisor.Config {
	model := cfg.LLM.Model
	if strings.TrimSpace(model) == "" {
		model = chatgpt.DefaultModel
	}
	return advisor.Config{
		Model:       model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.Advisor.Timeout,
		CacheTTL:    cfg.Advisor.Cache.TTL,
	}
}

// NewAugmenter builds the AI adapter used by the prediction service.
func NewAugmenter(cfg advisor.Config, client advisor.ChatClient, cache advisor.Cache, counter advisor.TokenCounter, registry *metrics.Registry, logger *slog.Logger) prediction.Augmenter {
	return advisor.NewAdapter(cfg, client, cache, counter, registry, logger)
}

// NewReferenceTable returns the built-in table, or the stored history when configured and usable.
func NewReferenceTable(cfg *config.Config, store records.Store, logger *slog.Logger) prediction.ReferenceTable {
	logger = logger.With("component", "bootstrap.reference")
	if cfg.Reference.Source != config.ReferenceStore {
		return prediction.DefaultReferenceTable()
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeInitTimeout)
	defer cancel()

	history, err := store.ReadHistory(ctx)
	if err != nil {
		logger.Error("reference history unavailable, using built-in table", "error", err)
		return prediction.DefaultReferenceTable()
	}
	table, rejected := prediction.NewReferenceTable(history)
	if table.Len() == 0 {
		logger.Warn("stored history has no valid rows, using built-in table", "rejected", rejected)
		return prediction.DefaultReferenceTable()
	}
	logger.Info("reference table loaded from store", "rows", table.Len(), "rejected", rejected)
	return table
}
