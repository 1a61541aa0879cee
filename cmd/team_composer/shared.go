package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonathan/team-composer/internal/config"
	"github.com/jonathan/team-composer/internal/db"
	"github.com/jonathan/team-composer/internal/explain"
	"github.com/jonathan/team-composer/internal/feedback"
	"github.com/jonathan/team-composer/internal/llm"
	"github.com/jonathan/team-composer/internal/logger"
	"github.com/jonathan/team-composer/internal/pipeline"
	"github.com/jonathan/team-composer/internal/selection"
	"github.com/jonathan/team-composer/internal/snapshots"
)

// loadConfig resolves the configuration. Precedence: flags, then environment,
// then the config file, then defaults.
func loadConfig() (*config.Config, error) {
	loaded := config.Default()
	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		loaded = *cfg
	}

	env := config.FromEnv()
	merged := env.MergeWithDefaults(loaded)
	// FromEnv carries no numeric sections; take them from the loaded file
	merged.Scoring = loaded.Scoring
	merged.Seniority = loaded.Seniority
	merged.Constraints = loaded.Constraints
	merged.Optimizer = loaded.Optimizer
	merged.Retention = loaded.Retention
	merged.Cost = loaded.Cost

	if storageFlag != "" {
		merged.Storage.Backend = storageFlag
	}
	if dbURLFlag != "" {
		merged.Storage.DatabaseURL = dbURLFlag
	}
	if redisFlag != "" {
		merged.Storage.RedisAddr = redisFlag
	}

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// backend holds the stores a command runs against
type backend struct {
	snapshots snapshots.Store
	feedback  feedback.Store
	// durable is true when snapshots outlive the process
	durable bool
	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackend connects the configured storage. Postgres holds both snapshots
// and feedback; Redis holds snapshots, with feedback going to Postgres when a
// database URL is configured.
func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	policy, err := cfg.RetentionPolicy()
	if err != nil {
		return nil, err
	}

	connectDB := func(b *backend) (*db.DB, error) {
		database, err := db.Connect(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		b.closers = append(b.closers, database.Close)
		if err := database.Migrate(ctx); err != nil {
			return nil, err
		}
		return database, nil
	}

	b := &backend{}
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		database, err := connectDB(b)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.snapshots = db.NewSnapshotStore(database, policy)
		b.feedback = db.NewFeedbackStore(database)
		b.durable = true

	case config.BackendRedis:
		cli, err := snapshots.DialRedis(ctx, cfg.Storage.RedisAddr)
		if err != nil {
			return nil, err
		}
		store := snapshots.NewRedisStore(cli, cfg.Storage.RedisPrefix, policy)
		b.closers = append(b.closers, func() { _ = store.Close() })
		b.snapshots = store
		b.durable = true

		if cfg.Storage.DatabaseURL != "" {
			database, err := connectDB(b)
			if err != nil {
				b.Close()
				return nil, err
			}
			b.feedback = db.NewFeedbackStore(database)
		} else {
			log.Warn("no database configured, feedback will not outlive this process")
			b.feedback = feedback.NewMemoryStore()
		}

	default:
		b.snapshots = snapshots.NewMemoryStore(policy)
		b.feedback = feedback.NewMemoryStore()
	}

	log.Debug("storage opened", "backend", cfg.Storage.Backend, "database_url", cfg.Storage.DatabaseURL)
	return b, nil
}

// newExplainer builds the explainer named by mode: "", "none", "rule" or "llm".
// The returned close function releases the LLM client, if any.
func newExplainer(ctx context.Context, mode string, cfg *config.Config) (explain.Explainer, func(), error) {
	noop := func() {}
	switch mode {
	case "", "none":
		return nil, noop, nil
	case "rule":
		return &explain.RuleExplainer{Scorer: cfg.Scorer()}, noop, nil
	case "llm":
		if cfg.LLM.APIKey == "" {
			return nil, noop, fmt.Errorf("--explain llm requires GEMINI_API_KEY or llm.api_key")
		}
		client, err := llm.NewClient(ctx, llm.DefaultConfig().WithModel(cfg.LLM.Model), cfg.LLM.APIKey)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create LLM client: %w", err)
		}
		return explain.NewLLMExplainer(client, cfg.Scorer()), func() { _ = client.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown explain mode %q (use none, rule or llm)", mode)
	}
}

// newService wires the pipeline for a command
func newService(cfg *config.Config, b *backend, explainer explain.Explainer, log *logger.Logger) (*pipeline.Service, error) {
	return pipeline.NewService(pipeline.Deps{
		Optimizer:          selection.NewOptimizer(cfg.Scorer(), cfg.OptimizerOptions()),
		Policy:             cfg.Constraints,
		Snapshots:          b.snapshots,
		Feedback:           b.feedback,
		Explainer:          explainer,
		Logger:             log,
		ExplainConcurrency: 4,
		OnProgress: func(e pipeline.ProgressEvent) {
			log.Debug(e.Message, "step", e.Step)
		},
	})
}

// newLogger builds the command logger
func newLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(cfg.LogMode)
}

// writeJSON writes v as indented JSON to path, or to w when path is empty
func writeJSON(w io.Writer, path string, v any) error {
	jsonOutput, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output to JSON: %w", err)
	}

	if path == "" {
		_, err := fmt.Fprintln(w, string(jsonOutput))
		return err
	}

	// Ensure output directory exists
	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}
	if err := os.WriteFile(path, jsonOutput, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}
