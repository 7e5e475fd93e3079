package config

import (
	"strings"
	"testing"
	"time"

	"github.com/hoopsight/prospect-calendar/internal/platform/logging"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load default config: %v", err)
	}

	if cfg.AppEnv != EnvDev {
		t.Fatalf("expected default app env %q, got %q", EnvDev, cfg.AppEnv)
	}
	if cfg.ServiceName != "prospect-calendar-api" {
		t.Fatalf("unexpected service name %q", cfg.ServiceName)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected http addr %q", cfg.HTTPAddr)
	}
	if cfg.ScheduleCacheTTL != time.Hour {
		t.Fatalf("expected default schedule cache ttl 1h, got %s", cfg.ScheduleCacheTTL)
	}
	if cfg.ScheduleBatchSize != 5 {
		t.Fatalf("expected default schedule batch size 5, got %d", cfg.ScheduleBatchSize)
	}
	if cfg.SchedulePipelineTimeout != 10*time.Second {
		t.Fatalf("expected default pipeline timeout 10s, got %s", cfg.SchedulePipelineTimeout)
	}
	if !cfg.CacheEnabled {
		t.Fatal("expected cache enabled by default")
	}
	if cfg.BackgroundWorkers != 4 {
		t.Fatalf("expected 4 background workers by default, got %d", cfg.BackgroundWorkers)
	}
	if cfg.HoopDataEnabled || cfg.IntlBasketEnabled || cfg.LiveScoreEnabled {
		t.Fatal("expected upstream providers disabled by default")
	}
	if !cfg.SwaggerEnabled {
		t.Fatal("expected swagger enabled outside prod")
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("expected default log level info, got %v", cfg.LogLevel)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_ProviderEnv(t *testing.T) {
	t.Setenv("HOOPDATA_ENABLED", "true")
	t.Setenv("HOOPDATA_TOKEN", "hd-token")
	t.Setenv("HOOPDATA_BASE_URL", "https://hoopdata.test/v2")
	t.Setenv("HOOPDATA_TIMEOUT", "7s")
	t.Setenv("HOOPDATA_MAX_RETRIES", "2")
	t.Setenv("HOOPDATA_CIRCUIT_FAILURE_COUNT", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if !cfg.HoopDataEnabled {
		t.Fatal("expected hoopdata enabled")
	}
	if cfg.HoopDataBaseURL != "https://hoopdata.test/v2" {
		t.Fatalf("unexpected hoopdata base url %q", cfg.HoopDataBaseURL)
	}
	if cfg.HoopDataToken != "hd-token" {
		t.Fatalf("unexpected hoopdata token %q", cfg.HoopDataToken)
	}
	if cfg.HoopDataTimeout != 7*time.Second {
		t.Fatalf("unexpected hoopdata timeout %s", cfg.HoopDataTimeout)
	}
	if cfg.HoopDataMaxRetries != 2 {
		t.Fatalf("unexpected hoopdata max retries %d", cfg.HoopDataMaxRetries)
	}
	if cfg.HoopDataCircuitFailureCount != 3 {
		t.Fatalf("unexpected hoopdata circuit failure count %d", cfg.HoopDataCircuitFailureCount)
	}
}

func TestLoad_ProviderEnabledWithoutToken(t *testing.T) {
	t.Setenv("INTLBASKET_ENABLED", "true")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when provider is enabled without a token")
	}
	if !strings.Contains(err.Error(), "INTLBASKET_TOKEN") {
		t.Fatalf("expected INTLBASKET_TOKEN error, got %v", err)
	}
}

func TestLoad_ProdRequiresScheduleProvider(t *testing.T) {
	t.Setenv("APP_ENV", "prod")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when no schedule provider is enabled in prod")
	}
	if !strings.Contains(err.Error(), "schedule provider") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestLoad_ProdDisablesSwaggerByDefault(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("HOOPDATA_ENABLED", "true")
	t.Setenv("HOOPDATA_TOKEN", "hd-token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.SwaggerEnabled {
		t.Fatal("expected swagger disabled in prod by default")
	}
}

func TestLoad_QStashRequiresTargetAndTokens(t *testing.T) {
	t.Setenv("QSTASH_ENABLED", "true")
	t.Setenv("QSTASH_TOKEN", "qs-token")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when qstash target base url is missing")
	}
	if !strings.Contains(err.Error(), "QSTASH_TARGET_BASE_URL") {
		t.Fatalf("unexpected error %v", err)
	}

	t.Setenv("QSTASH_TARGET_BASE_URL", "https://api.prospect-calendar.test")

	_, err = Load()
	if err == nil {
		t.Fatal("expected error when internal job token is missing")
	}
	if !strings.Contains(err.Error(), "INTERNAL_JOB_TOKEN") {
		t.Fatalf("unexpected error %v", err)
	}

	t.Setenv("INTERNAL_JOB_TOKEN", "job-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.QStashEnabled || cfg.QStashTargetBaseURL == "" {
		t.Fatal("expected qstash fully configured")
	}
}

func TestLoad_InvalidScheduleBatchSize(t *testing.T) {
	t.Setenv("SCHEDULE_BATCH_SIZE", "0")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for zero schedule batch size")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `uptrace-dsn="https://token@api.uptrace.dev/123"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.UptraceDSN != "https://token@api.uptrace.dev/123" {
		t.Fatalf("unexpected uptrace dsn %q", cfg.UptraceDSN)
	}
}

func TestParseAppEnv(t *testing.T) {
	if _, err := parseAppEnv("staging-2"); err == nil {
		t.Fatal("expected error for unknown app env")
	}

	env, err := parseAppEnv(" Prod ")
	if err != nil {
		t.Fatalf("parse app env: %v", err)
	}
	if env != EnvProd {
		t.Fatalf("expected prod, got %q", env)
	}
}
