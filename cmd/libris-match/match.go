package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/libris-match/engine/internal/archive"
	"github.com/libris-match/engine/internal/config"
	"github.com/libris-match/engine/internal/domain"
	"github.com/libris-match/engine/internal/domain/corpus"
	"github.com/libris-match/engine/internal/domain/vocab"
	logpkg "github.com/libris-match/engine/internal/logger"
	"github.com/libris-match/engine/internal/metrics"
	"github.com/libris-match/engine/internal/report"
	"github.com/libris-match/engine/internal/repository/exclusion"
	"github.com/libris-match/engine/internal/transport/openai"
	"github.com/libris-match/engine/internal/usecase/match"
)

func newMatchCmd() *cobra.Command {
	var (
		env        string
		inputPath  string
		outputPath string
		auditPath  string
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Run a batch of query records against the corpus",
		Long: `Reads a ZIP (or directory) of query cards, scores each against the
configured corpus, classifies the result, and writes one outcome row per
query to a JSON-lines file (and, if --audit is set, a parquet audit sink).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, env, inputPath, outputPath, auditPath)
		},
	}

	cmd.Flags().StringVarP(&env, "env", "e", config.GetEnv(), "environment (local, dev, prod)")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to the query archive (ZIP or directory)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "outcomes.jsonl", "path to the JSON-lines outcome file")
	cmd.Flags().StringVar(&auditPath, "audit", "", "optional path to a parquet audit sink")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runMatch(cmd *cobra.Command, env, inputPath, outputPath, auditPath string) error {
	runID := uuid.New().String()

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("run_id", runID))

	metrics.RegisterMatchMetrics()

	v, err := vocab.Load(corpusVocabPath(cfg.Corpus))
	if err != nil {
		return fmt.Errorf("load vocabulary: %w", err)
	}
	c, err := corpus.Load(cfg.Corpus.Dir, cfg.Corpus.Source, v.Size())
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	defer c.Close()

	weights := domain.DefaultFieldWeights()
	if cfg.Corpus.WeightsFile != "" {
		weights, err = domain.LoadFieldWeights(cfg.Corpus.WeightsFile)
		if err != nil {
			return fmt.Errorf("load field weights: %w", err)
		}
	}

	opts := buildEngineOptions(cfg, runID)

	deps := match.Deps{Logger: logger, PoolSize: cfg.Corpus.PoolSize}
	if cfg.Cache.Enabled {
		cacheDB, err := match.OpenCache(cfg.Cache.Path)
		if err != nil {
			return fmt.Errorf("open result cache: %w", err)
		}
		defer cacheDB.Close()
		deps.Cache = cacheDB
	}
	if len(cfg.ExclusionCache.RedisAddrs) > 0 {
		redisSet, err := exclusion.NewRedis(cfg.ExclusionCache.RedisAddrs)
		if err != nil {
			return fmt.Errorf("build exclusion cache: %w", err)
		}
		deps.Exclusions = redisSet
	} else {
		deps.Exclusions = exclusion.NewMemory()
	}
	if cfg.Disambiguation.Enabled {
		deps.Disambiguator = openai.New(openai.Config{
			APIKey:  cfg.Disambiguation.APIKey,
			BaseURL: cfg.Disambiguation.BaseURL,
			Model:   cfg.Disambiguation.Model,
			Logger:  logger,
		})
	}

	engine, err := match.New(c, v, weights, opts, deps)
	if err != nil {
		return fmt.Errorf("build matching engine: %w", err)
	}
	defer engine.Close()

	batch, err := archive.NewZipReader().Read(inputPath, opts.JSONSchemaVersion)
	if err != nil {
		return fmt.Errorf("read query archive %s: %w", inputPath, err)
	}
	logger.Info("read query archive", zap.Int("queries", len(batch.Queries)), zap.String("input", inputPath))

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file %s: %w", outputPath, err)
	}
	defer outFile.Close()

	var writer report.OutcomeWriter = report.NewJSONLWriter(outFile)
	if auditPath != "" {
		auditFile, err := os.Create(auditPath)
		if err != nil {
			return fmt.Errorf("create audit file %s: %w", auditPath, err)
		}
		defer auditFile.Close()
		writer = report.MultiWriter{writer, report.NewParquetWriter(auditFile)}
	}

	outcomes, summary := engine.RunBatch(cmd.Context(), batch.Queries)
	summary.PromptUsed = batch.PromptUsed

	for _, o := range outcomes {
		if err := writer.Write(o); err != nil {
			logger.Warn("failed to write outcome row", zap.Int("query_index", o.QueryIndex), zap.Error(err))
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close outcome writer: %w", err)
	}

	logger.Info("batch run complete",
		zap.Int("ok", summary.OK),
		zap.Int("errors", summary.Errors),
		zap.Int("tokens_spent", summary.Budget.Spent()),
	)
	fmt.Printf("run %s: %d ok, %d errors (tokens spent: %d)\n", runID, summary.OK, summary.Errors, summary.Budget.Spent())
	return nil
}

func corpusVocabPath(c config.CorpusConfig) string {
	return c.Dir + "/" + c.Source + "-vocab.bin"
}

func buildEngineOptions(cfg config.Config, runID string) domain.EngineOptions {
	opts := domain.DefaultEngineOptions()
	m := cfg.Matching
	opts.SimilarityThreshold = m.SimilarityThreshold
	opts.ZThreshold = m.ZThreshold
	opts.MinSingleSimilarity = m.MinSingleSimilarity
	opts.MinMultipleSimilarity = m.MinMultipleSimilarity
	opts.ForceYear = m.ForceYear
	opts.YearTolerance = m.YearTolerance
	opts.YearTolerancePenalty = m.YearTolerancePenalty
	opts.OverlapAdjustment = m.OverlapAdjustment
	opts.JaroWinklerAdjustment = m.JaroWinklerAdjustment
	opts.AddAuthorToTitle = m.AddAuthorToTitle
	opts.WeightsFile = cfg.Corpus.WeightsFile
	opts.JSONSchemaVersion = m.JSONSchemaVersion
	opts.RunLabel = m.RunLabel
	if opts.RunLabel == "" {
		opts.RunLabel = runID
	}
	opts.Disambiguation = domain.DisambiguationOptions{
		Enabled:        cfg.Disambiguation.Enabled,
		Model:          cfg.Disambiguation.Model,
		MaxClusterSize: cfg.Disambiguation.MaxClusterSize,
		TokenBudget:    cfg.Disambiguation.TokenBudget,
	}
	opts.Cache = domain.CacheOptions{Enabled: cfg.Cache.Enabled, Path: cfg.Cache.Path}
	opts.ExclusionCache = domain.ExclusionCacheOptions{RedisAddrs: cfg.ExclusionCache.RedisAddrs}
	return opts
}
