package main

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/Freeeeeet/tutorchain/internal/app"
	"github.com/Freeeeeet/tutorchain/internal/config"
	"github.com/Freeeeeet/tutorchain/internal/controller/handlers"
	"github.com/Freeeeeet/tutorchain/internal/controller/state"
	"github.com/Freeeeeet/tutorchain/internal/generator"
	"github.com/Freeeeeet/tutorchain/internal/handler"
	"github.com/Freeeeeet/tutorchain/internal/ledger"
	"github.com/Freeeeeet/tutorchain/internal/metrics"
	"github.com/Freeeeeet/tutorchain/internal/platform/ratelimiter"
	"github.com/Freeeeeet/tutorchain/internal/repository"
	"github.com/Freeeeeet/tutorchain/internal/secrets"
	"github.com/Freeeeeet/tutorchain/internal/service"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	gwei           = 1_000_000_000
	limiterIdleTTL = 10 * time.Minute
)

// application собранные зависимости процесса
type application struct {
	cfg    *config.Config
	logger *zap.Logger

	registry *prometheus.Registry
	metrics  *metrics.Metrics

	client      *ledger.EthClient
	pool        *pgxpool.Pool
	journal     *repository.TransactionRepository
	quizResults *repository.QuizResultRepository

	orchestrator *service.Orchestrator
	matching     *service.MatchingService
	quiz         *service.QuizService
	limiter      *ratelimiter.KeyLimiter
}

func wireApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &application{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		limiter:  ratelimiter.New(cfg.RateLimitRPS, cfg.RateLimitBurst, limiterIdleTTL),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(a.registry)

	store, err := secretStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("wire secret store: %w", err)
	}
	signer, err := ledger.LoadSigner(ctx, store, cfg.AccountKeyRef)
	if err != nil {
		return nil, fmt.Errorf("load signer: %w", err)
	}

	a.client, err = ledger.Dial(ctx, cfg.RPCURL, ledger.Options{
		CallTimeout: cfg.RPCTimeout,
		ReadRetries: cfg.ReadRetries,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("dial ledger: %w", err)
	}

	opts := []service.OrchestratorOption{service.WithMetrics(a.metrics)}
	var matchingOpts []service.MatchingOption
	if cfg.DBDSN != "" {
		a.pool, err = openPool(ctx, cfg.DBDSN)
		if err != nil {
			a.Close()
			return nil, err
		}
		if err := migrateUp(ctx, a.pool, cfg.MigrationsDir, logger); err != nil {
			a.Close()
			return nil, err
		}
		a.journal = repository.NewTransactionRepository(a.pool)
		a.quizResults = repository.NewQuizResultRepository(a.pool)
		opts = append(opts,
			service.WithJournal(a.journal),
			service.WithQuizResults(a.quizResults),
		)
		matchingOpts = append(matchingOpts, service.WithParticipantStore(repository.NewParticipantRepository(a.pool)))
	} else {
		logger.Warn("DB_DSN is not set, transaction journal is disabled")
	}

	orchCfg := service.OrchestratorConfig{
		Contracts: service.ContractAddresses{
			Session: common.HexToAddress(cfg.SessionContract),
			Score:   common.HexToAddress(cfg.ScoreContract),
		},
		GasLimit: cfg.GasLimit,
	}
	if cfg.RewardContract != "" {
		orchCfg.Contracts.Reward = common.HexToAddress(cfg.RewardContract)
	}
	if cfg.GasPriceGwei > 0 {
		orchCfg.GasPrice = new(big.Int).Mul(big.NewInt(cfg.GasPriceGwei), big.NewInt(gwei))
	}
	if cfg.ChainID > 0 {
		orchCfg.ChainID = big.NewInt(cfg.ChainID)
	}

	a.orchestrator = service.NewOrchestrator(a.client, signer, orchCfg, logger, opts...)
	a.matching = service.NewMatchingService(service.NewRoster(), logger, matchingOpts...)
	if _, err := a.matching.Restore(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("restore roster: %w", err)
	}

	var gen service.TextGenerator
	if cfg.GroqAPIKey != "" {
		gen = generator.NewGroqGenerator(generator.GroqConfig{
			APIKey:      cfg.GroqAPIKey,
			BaseURL:     cfg.GroqBaseURL,
			Model:       cfg.GroqModel,
			Temperature: cfg.GroqTemperature,
		}, &http.Client{Timeout: cfg.GenerationTimeout}, logger)
	} else {
		logger.Warn("GROQ_API_KEY is not set, quiz questions come from the static bank")
	}
	a.quiz = service.NewQuizService(gen, generator.DefaultBank(), a.metrics, cfg.GenerationTimeout, logger)

	logger.Info("Application wired",
		zap.String("account", a.orchestrator.Account().Hex()),
		zap.String("session_contract", cfg.SessionContract),
		zap.String("score_contract", cfg.ScoreContract),
		zap.Bool("reward_configured", cfg.RewardContract != ""),
		zap.Bool("journal", a.journal != nil),
	)

	return a, nil
}

// secretStore порядок: Vault (если задан токен), файлы ключей, переменные окружения
func secretStore(cfg *config.Config, logger *zap.Logger) (*secrets.ChainStore, error) {
	var stores []secrets.Store
	if cfg.VaultToken != "" {
		vault, err := secrets.NewVaultStore(secrets.VaultConfig{
			Address: cfg.VaultAddr,
			Token:   cfg.VaultToken,
			Mount:   cfg.VaultMount,
			Prefix:  cfg.VaultPrefix,
		})
		if err != nil {
			return nil, err
		}
		stores = append(stores, vault)
		logger.Info("Vault secret store enabled", zap.String("mount", cfg.VaultMount), zap.String("prefix", cfg.VaultPrefix))
	}
	stores = append(stores, secrets.NewKeyFileStore(cfg.SecretsDir), secrets.NewEnvStore())
	return secrets.NewChainStore(stores...)
}

// httpHandler и botHandlers собираются на одном оркестраторе и одном реестре
// участников: блокировки аккаунта и ростер общие для обеих границ
func (a *application) httpHandler() http.Handler {
	var opts []handler.Option
	if a.journal != nil {
		opts = append(opts, handler.WithTxHistory(a.journal))
	}
	if a.quizResults != nil {
		opts = append(opts, handler.WithQuizHistory(a.quizResults))
	}
	return handler.New(a.orchestrator, a.matching, a.quiz, a.limiter, a.metricsHandler(), a.logger, opts...).Routes()
}

func (a *application) botHandlers() *handlers.Handlers {
	return handlers.NewHandlers(a.orchestrator, a.matching, a.quiz, state.NewManager(), a.limiter, a.logger)
}

func (a *application) metricsHandler() http.Handler {
	return promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry})
}

func (a *application) Close() {
	if a.client != nil {
		a.client.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func migrateUp(ctx context.Context, pool *pgxpool.Pool, dir string, logger *zap.Logger) error {
	migrator, err := app.NewMigrator(pool, dir, logger)
	if err != nil {
		return err
	}
	defer migrator.Close()
	return migrator.Run(ctx)
}

func openPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
