// Package config loads the engine's runtime configuration from
// environment variables (and an optional .env file), following the
// viper-based load-and-validate pattern used elsewhere in the
// surgical-scheduling pack.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/schedcu/surgical-scheduler/internal/emergency"
	"github.com/schedcu/surgical-scheduler/internal/engine"
	"github.com/schedcu/surgical-scheduler/internal/optimizer"
)

// Config is the full runtime configuration surface (spec.md §6).
type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	WorkerPoolSize     int           `mapstructure:"WORKER_POOL_SIZE"`
	SoftTimeoutMS      int           `mapstructure:"SOFT_TIMEOUT_MS"`
	HardTimeoutMS      int           `mapstructure:"HARD_TIMEOUT_MS"`
	EmergencyBudgetMS  int           `mapstructure:"EMERGENCY_BUDGET_MS"`
	MissingSDSTMinutes int           `mapstructure:"MISSING_SDST_MINUTES"`

	TabuMaxIterations    int `mapstructure:"TABU_MAX_ITERATIONS"`
	TabuMaxNoImprovement int `mapstructure:"TABU_MAX_NO_IMPROVEMENT"`
	TabuTenure           int `mapstructure:"TABU_TENURE"`

	WeightMakespan float64 `mapstructure:"WEIGHT_MAKESPAN"`
	WeightIdle     float64 `mapstructure:"WEIGHT_IDLE"`
	WeightOvertime float64 `mapstructure:"WEIGHT_OVERTIME"`
	WeightSDST     float64 `mapstructure:"WEIGHT_SDST"`
	WeightPriority float64 `mapstructure:"WEIGHT_PRIORITY"`
	WeightUnplaced float64 `mapstructure:"WEIGHT_UNPLACED"`

	DisruptionWeightBumped   float64 `mapstructure:"DISRUPTION_WEIGHT_BUMPED"`
	DisruptionWeightOvertime float64 `mapstructure:"DISRUPTION_WEIGHT_OVERTIME"`
	DisruptionWeightWait     float64 `mapstructure:"DISRUPTION_WEIGHT_WAIT"`
}

// Load reads configuration from environment variables (and an .env
// file if present), applies spec.md-documented defaults, and returns
// the parsed Config.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("WORKER_POOL_SIZE", 4)
	v.SetDefault("SOFT_TIMEOUT_MS", 30_000)
	v.SetDefault("HARD_TIMEOUT_MS", 120_000)
	v.SetDefault("EMERGENCY_BUDGET_MS", 5_000)
	v.SetDefault("MISSING_SDST_MINUTES", 0)
	v.SetDefault("TABU_MAX_ITERATIONS", 100)
	v.SetDefault("TABU_MAX_NO_IMPROVEMENT", 20)
	v.SetDefault("TABU_TENURE", 10)
	v.SetDefault("WEIGHT_MAKESPAN", 1.0)
	v.SetDefault("WEIGHT_IDLE", 1.0)
	v.SetDefault("WEIGHT_OVERTIME", 2.0)
	v.SetDefault("WEIGHT_SDST", 0.5)
	v.SetDefault("WEIGHT_PRIORITY", 5.0)
	v.SetDefault("WEIGHT_UNPLACED", 1000.0)
	v.SetDefault("DISRUPTION_WEIGHT_BUMPED", 0.5)
	v.SetDefault("DISRUPTION_WEIGHT_OVERTIME", 0.3)
	v.SetDefault("DISRUPTION_WEIGHT_WAIT", 0.2)

	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "REDIS_URL",
		"WORKER_POOL_SIZE", "SOFT_TIMEOUT_MS", "HARD_TIMEOUT_MS", "EMERGENCY_BUDGET_MS", "MISSING_SDST_MINUTES",
		"TABU_MAX_ITERATIONS", "TABU_MAX_NO_IMPROVEMENT", "TABU_TENURE",
		"WEIGHT_MAKESPAN", "WEIGHT_IDLE", "WEIGHT_OVERTIME", "WEIGHT_SDST", "WEIGHT_PRIORITY", "WEIGHT_UNPLACED",
		"DISRUPTION_WEIGHT_BUMPED", "DISRUPTION_WEIGHT_OVERTIME", "DISRUPTION_WEIGHT_WAIT",
	} {
		_ = v.BindEnv(key)
	}

	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("config: DATABASE_URL is required")
	}
	return cfg, nil
}

// IsDev reports whether the engine is running in development mode.
func (c *Config) IsDev() bool { return c.Env == "development" }

// EngineConfig translates the flat environment-backed Config into the
// nested engine.Config the facade expects.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		WorkerPoolSize:     c.WorkerPoolSize,
		SoftTimeout:        time.Duration(c.SoftTimeoutMS) * time.Millisecond,
		HardTimeout:        time.Duration(c.HardTimeoutMS) * time.Millisecond,
		EmergencyBudget:    time.Duration(c.EmergencyBudgetMS) * time.Millisecond,
		MissingSDSTMinutes: c.MissingSDSTMinutes,
		DefaultWeights:     c.weights(),
		DefaultTabu: optimizer.Config{
			MaxIterations:    c.TabuMaxIterations,
			MaxNoImprovement: c.TabuMaxNoImprovement,
			TabuTenure:       c.TabuTenure,
			Weights:          c.weights(),
			Enabled:          optimizer.AllMoves(),
		},
		DisruptionWeights: emergency.DisruptionWeights{
			Bumped:   c.DisruptionWeightBumped,
			Overtime: c.DisruptionWeightOvertime,
			Wait:     c.DisruptionWeightWait,
		},
		BumpOptimizer: optimizer.Config{
			MaxIterations: 30, MaxNoImprovement: 15, TabuTenure: 5,
			Weights: c.weights(), Enabled: optimizer.AllMoves(),
		},
	}
}

func (c *Config) weights() optimizer.Weights {
	return optimizer.Weights{
		Makespan: c.WeightMakespan,
		Idle:     c.WeightIdle,
		Overtime: c.WeightOvertime,
		SDST:     c.WeightSDST,
		Priority: c.WeightPriority,
		Unplaced: c.WeightUnplaced,
	}
}
