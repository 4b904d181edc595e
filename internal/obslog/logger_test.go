package obslog

import (
	"context"
	"os"
	"testing"
)

func TestNew_DevelopmentAndProduction(t *testing.T) {
	dev, err := New("development")
	if err != nil {
		t.Fatalf("New(development) failed: %v", err)
	}
	dev.Info("test message")

	prod, err := New("production")
	if err != nil {
		t.Fatalf("New(production) failed: %v", err)
	}
	prod.Info("test message", "key", "value")
	prod.Sync()
}

func TestNew_InvalidEnvDefaultsToProduction(t *testing.T) {
	logger, err := New("not-a-real-env")
	if err != nil {
		t.Fatalf("New failed on invalid env: %v", err)
	}
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNew_ReadsAppEnvWhenEmpty(t *testing.T) {
	os.Setenv("APP_ENV", "development")
	defer os.Unsetenv("APP_ENV")

	logger, err := New("")
	if err != nil {
		t.Fatalf("New with empty env failed: %v", err)
	}
	logger.Debug("debug message")
}

func TestRequestAndCorrelationID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithCorrelationID(ctx, "corr-1")

	if got := ExtractRequestID(ctx); got != "req-1" {
		t.Errorf("ExtractRequestID = %q, want req-1", got)
	}
	if got := ExtractCorrelationID(ctx); got != "corr-1" {
		t.Errorf("ExtractCorrelationID = %q, want corr-1", got)
	}
}

func TestExtractRequestID_EmptyContext(t *testing.T) {
	if got := ExtractRequestID(context.Background()); got != "" {
		t.Errorf("ExtractRequestID on empty context = %q, want empty", got)
	}
	if got := ExtractCorrelationID(context.Background()); got != "" {
		t.Errorf("ExtractCorrelationID on empty context = %q, want empty", got)
	}
}

func TestLogOptimizeRunAndLogEmergencyInsertion_DoNotPanic(t *testing.T) {
	logger, err := New("development")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	LogOptimizeRun(logger, 42, 7, 1, 1200, false)
	LogEmergencyInsertion(logger, "bump", true, 0.35)
	LogEmergencyInsertion(logger, "manual", false, 0)
}
