package config

import (
	"os"
	"testing"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	if _, err := Load(); err == nil {
		t.Fatal("expected Load to fail without DATABASE_URL")
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost/test")
	defer os.Unsetenv("DATABASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.WorkerPoolSize != 4 {
		t.Errorf("WorkerPoolSize = %d, want 4", cfg.WorkerPoolSize)
	}
	if cfg.TabuMaxIterations != 100 {
		t.Errorf("TabuMaxIterations = %d, want 100", cfg.TabuMaxIterations)
	}
	if cfg.WeightUnplaced != 1000.0 {
		t.Errorf("WeightUnplaced = %v, want 1000", cfg.WeightUnplaced)
	}
	if !cfg.IsDev() {
		t.Error("expected default ENV to be development")
	}
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost/test")
	os.Setenv("TABU_TENURE", "25")
	defer os.Unsetenv("DATABASE_URL")
	defer os.Unsetenv("TABU_TENURE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TabuTenure != 25 {
		t.Errorf("TabuTenure = %d, want 25 (overridden by env)", cfg.TabuTenure)
	}
}

func TestEngineConfig_TranslatesNestedFields(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost/test")
	defer os.Unsetenv("DATABASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	engineCfg := cfg.EngineConfig()
	if engineCfg.WorkerPoolSize != cfg.WorkerPoolSize {
		t.Errorf("EngineConfig WorkerPoolSize = %d, want %d", engineCfg.WorkerPoolSize, cfg.WorkerPoolSize)
	}
	if engineCfg.DefaultTabu.MaxIterations != cfg.TabuMaxIterations {
		t.Errorf("EngineConfig.DefaultTabu.MaxIterations = %d, want %d", engineCfg.DefaultTabu.MaxIterations, cfg.TabuMaxIterations)
	}
	if engineCfg.DefaultWeights.Unplaced != cfg.WeightUnplaced {
		t.Errorf("EngineConfig.DefaultWeights.Unplaced = %v, want %v", engineCfg.DefaultWeights.Unplaced, cfg.WeightUnplaced)
	}
}
