package config

import (
	"flag"
	"os"
	"testing"
)

// resetFlagSet создаёт новый FlagSet перед каждым вызовом NewConfig,
// чтобы избежать повторной регистрации одних и тех же флагов между тестами.
func resetFlagSet(t *testing.T) {
	t.Helper()
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flag.CommandLine.SetOutput(os.Stderr)
}

func TestNewConfig_DefaultsWhenEnvEmpty(t *testing.T) {
	t.Setenv("WIKID_DATA_DIR", "")
	t.Setenv("WIKID_QUOTA_BYTES", "")
	t.Setenv("WIKID_PLC_URL", "")
	t.Setenv("WIKID_APPVIEW_URL", "")
	t.Setenv("WIKID_CALLBACK_PORT", "")
	t.Setenv("WIKID_LOG_LEVEL", "")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.DataDir == "" {
		t.Fatalf("DataDir default must be non-empty")
	}
	if cfg.QuotaBytes != 256<<20 {
		t.Fatalf("QuotaBytes default expected %d, got %d", int64(256<<20), cfg.QuotaBytes)
	}
	if cfg.PLCDirectoryURL != "https://plc.directory" {
		t.Fatalf("PLCDirectoryURL default expected plc.directory, got %q", cfg.PLCDirectoryURL)
	}
	if cfg.AppViewURL != "https://public.api.bsky.app" {
		t.Fatalf("AppViewURL default unexpected: %q", cfg.AppViewURL)
	}
	if cfg.CallbackPort != 8917 {
		t.Fatalf("CallbackPort default expected 8917, got %d", cfg.CallbackPort)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel default expected info, got %q", cfg.LogLevel)
	}
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WIKID_DATA_DIR", dir)
	t.Setenv("WIKID_QUOTA_BYTES", "1048576")
	t.Setenv("WIKID_APPVIEW_URL", "http://appview.local")
	t.Setenv("WIKID_CALLBACK_PORT", "9001")
	t.Setenv("WIKID_LOG_LEVEL", "debug")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.DataDir != dir {
		t.Fatalf("DataDir expected %q, got %q", dir, cfg.DataDir)
	}
	if cfg.QuotaBytes != 1048576 {
		t.Fatalf("QuotaBytes expected 1048576, got %d", cfg.QuotaBytes)
	}
	if cfg.AppViewURL != "http://appview.local" {
		t.Fatalf("AppViewURL expected override, got %q", cfg.AppViewURL)
	}
	if cfg.CallbackPort != 9001 {
		t.Fatalf("CallbackPort expected 9001, got %d", cfg.CallbackPort)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel expected debug, got %q", cfg.LogLevel)
	}
}
