// Package main runs the authoritative combat daemon: it wires persistence,
// opponent templates, Lua AI hooks, the AI policy and the combat engine, then
// supervises them until a termination signal arrives.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/ascend/internal/config"
	"github.com/cory-johannsen/ascend/internal/game/ai"
	"github.com/cory-johannsen/ascend/internal/game/combat"
	"github.com/cory-johannsen/ascend/internal/game/dice"
	"github.com/cory-johannsen/ascend/internal/game/opponent"
	"github.com/cory-johannsen/ascend/internal/observability"
	"github.com/cory-johannsen/ascend/internal/scripting"
	"github.com/cory-johannsen/ascend/internal/server"
	"github.com/cory-johannsen/ascend/internal/storage/postgres"
)

const healthInterval = 30 * time.Second

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "combatd")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting combat daemon",
		zap.Int("max_rounds", cfg.Combat.MaxRounds),
		zap.Duration("turn_timeout", cfg.Combat.TurnTimeout),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	chars := postgres.NewCharacterStatsRepository(pool.DB())
	pools := postgres.NewResourcePoolRepository(pool.DB(), nil)

	opponents, err := loadOpponents(cfg.Combat.OpponentsDir, logger)
	if err != nil {
		logger.Fatal("loading opponent templates", zap.Error(err))
	}

	src := randomSource(cfg.Combat.RandomSeed, logger)
	roller := dice.NewLoggedRoller(src, logger)

	var scripts ai.ScriptCaller
	var scriptMgr *scripting.Manager
	if cfg.Combat.ScriptDir != "" {
		scriptMgr = scripting.NewManager(roller, logger)
		if err := scriptMgr.Load(cfg.Combat.ScriptDir, cfg.Combat.ScriptInstructionLimit); err != nil {
			logger.Fatal("loading AI scripts", zap.Error(err))
		}
		scripts = scriptMgr
	}

	policy := ai.NewPolicy(src, scripts, logger)
	recorder := newPoolRecorder(chars, pools, logger)
	adapter := combat.NewStatsAdapter(chars, recorder, opponents, logger)
	engine := combat.NewEngine(combat.Config{
		MaxRounds:   cfg.Combat.MaxRounds,
		TurnTimeout: cfg.Combat.TurnTimeout,
	}, adapter, policy, roller, logger, combat.WithEndHandler(recorder.Record))

	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("postgres", server.NewTickerService(healthInterval, func(ctx context.Context) {
		if err := pool.Health(ctx, 5*time.Second); err != nil {
			logger.Warn("database health check failed", zap.Error(err))
			return
		}
		stat := pool.Stat()
		logger.Debug("database pool",
			zap.Int32("acquired", stat.AcquiredConns()),
			zap.Int32("idle", stat.IdleConns()),
			zap.Int32("total", stat.TotalConns()),
		)
	}, func() {
		recorder.Wait()
		pool.Close()
	}))

	lifecycle.Add("combat-stats", server.NewTickerService(cfg.Combat.StatsInterval, func(context.Context) {
		stats := engine.Stats()
		logger.Info("active combat sessions",
			zap.Int("sessions", stats.Sessions),
			zap.Int("participants", stats.Participants),
		)
	}, func() {
		engine.Close()
		if scriptMgr != nil {
			scriptMgr.Close()
		}
	}))

	logger.Info("combat daemon initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Strings("opponents", opponents.IDs()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// loadOpponents builds the template registry: the built-in training dummy plus
// every YAML template in dir. An empty dir keeps only the built-ins.
func loadOpponents(dir string, logger *zap.Logger) (*opponent.Registry, error) {
	reg := opponent.NewRegistry()
	if dir == "" {
		return reg, nil
	}
	templates, err := opponent.LoadTemplates(dir)
	if err != nil {
		return nil, err
	}
	for _, t := range templates {
		if err := reg.Register(t); err != nil {
			return nil, err
		}
	}
	logger.Info("opponent templates loaded",
		zap.String("dir", dir),
		zap.Int("count", len(templates)),
	)
	return reg, nil
}

// randomSource returns a crypto source, or a seeded one for reproducible runs.
func randomSource(seed int64, logger *zap.Logger) dice.Source {
	if seed == 0 {
		return dice.NewCryptoSource()
	}
	logger.Warn("using seeded random source; rolls are reproducible", zap.Int64("seed", seed))
	return dice.NewSeededSource(seed)
}
