package main

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hyperjump/coachrag/internal/config"
	"go.uber.org/zap"
)

func TestReorderArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"how do I delegate", "--output", "json"},
			expected: []string{"--output", "json", "how do I delegate"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"--priority", "2", "handbook.pdf"},
			expected: []string{"--priority", "2", "handbook.pdf"},
		},
		{
			name:     "boolean flag does not consume the next argument",
			args:     []string{"--single-chunk", "tip.txt"},
			expected: []string{"--single-chunk", "tip.txt"},
		},
		{
			name:     "inline value",
			args:     []string{"tip.txt", "--priority=3"},
			expected: []string{"--priority=3", "tip.txt"},
		},
		{
			name:     "empty args",
			args:     []string{},
			expected: nil,
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"one", "two", "-server", "http://coach:9000"},
			expected: []string{"-server", "http://coach:9000", "one", "two"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reorderArgs(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("reorderArgs() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 9090
vector_store:
  type: sqlite
  sqlite:
    path: "./data/chunks.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "")
	t.Setenv("VECTOR_STORE_TYPE", "")
	chdir(t, dir)

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("loadConfig() err = %v", err)
	}
	if !cfg.Debug || cfg.Server.Port != 9090 {
		t.Errorf("cfg = %+v", cfg.Server)
	}
	wantResolved, _ := filepath.EvalSymlinks(configPath)
	gotResolved, _ := filepath.EvalSymlinks(resolved)
	if gotResolved != wantResolved {
		t.Errorf("resolved = %q, want %q", resolved, configPath)
	}
	if !filepath.IsAbs(cfg.VectorStore.SQLite.Path) {
		t.Errorf("sqlite path not expanded: %q", cfg.VectorStore.SQLite.Path)
	}
}

func TestLoadConfig_builtinDefaultsWhenNoFile(t *testing.T) {
	if _, err := os.Stat(defaultConfigPath); err == nil {
		t.Skip("system config present")
	}
	t.Setenv("PORT", "")
	t.Setenv("VECTOR_QUERY_SIZE", "")
	chdir(t, t.TempDir())

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("loadConfig() err = %v", err)
	}
	if resolved != "" {
		t.Errorf("resolved = %q, want empty", resolved)
	}
	if cfg.Server.Port != 8080 || cfg.VectorStore.QuerySize != 5 {
		t.Errorf("defaults not applied: port=%d k=%d", cfg.Server.Port, cfg.VectorStore.QuerySize)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "custom.toml")
	content := `
[server]
host = "127.0.0.1"
port = 7070

[vector_store]
query_size = 3
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "")
	t.Setenv("VECTOR_QUERY_SIZE", "")

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatalf("loadConfig() err = %v", err)
	}
	if resolved != configPath {
		t.Errorf("resolved = %q, want %q", resolved, configPath)
	}
	if cfg.Server.Port != 7070 || cfg.VectorStore.QuerySize != 3 {
		t.Errorf("cfg not loaded: port=%d k=%d", cfg.Server.Port, cfg.VectorStore.QuerySize)
	}
}

func TestLoadConfig_missingExplicitPath(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func componentsConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.VectorStore.Type = "memory"
	cfg.Embedding.Provider = "hash"
	cfg.Embedding.Dimensions = 64
	cfg.LLM.Provider = "anthropic"
	config.ApplyDefaults(cfg)
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	return cfg
}

func TestInitializeComponents(t *testing.T) {
	cfg := componentsConfig(t)
	c, err := initializeComponents(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("initializeComponents() err = %v", err)
	}
	defer c.Close()
	if c.Store.Type() != "memory" {
		t.Errorf("store type = %q", c.Store.Type())
	}
	if c.Engine.QuerySize() != cfg.VectorStore.QuerySize {
		t.Errorf("query size = %d, want %d", c.Engine.QuerySize(), cfg.VectorStore.QuerySize)
	}
	if c.Indexer == nil || c.Composer == nil || c.LLM == nil {
		t.Errorf("components incomplete: %+v", c)
	}
}

func TestInitializeComponents_badTemplate(t *testing.T) {
	cfg := componentsConfig(t)
	cfg.Prompt.TemplatePath = filepath.Join(t.TempDir(), "missing.tmpl")
	if _, err := initializeComponents(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for missing template")
	}
}

func TestInitializeComponents_missingAPIKey(t *testing.T) {
	cfg := componentsConfig(t)
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := initializeComponents(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error without API key")
	}
}
