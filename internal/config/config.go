// Package config provides configuration loading and structs for the coachrag server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug       bool              `yaml:"debug" toml:"debug" env:"COACHRAG_DEBUG"`
	Server      ServerConfig      `yaml:"server" toml:"server"`
	VectorStore VectorStoreConfig `yaml:"vector_store" toml:"vector_store"`
	Embedding   EmbeddingConfig   `yaml:"embedding" toml:"embedding"`
	Chunker     ChunkerConfig     `yaml:"chunker" toml:"chunker"`
	LLM         LLMConfig         `yaml:"llm" toml:"llm"`
	Prompt      PromptConfig      `yaml:"prompt" toml:"prompt"`
	Language    LanguageConfig    `yaml:"language" toml:"language"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host               string   `yaml:"host" toml:"host" validate:"required" env:"HOST"`
	Port               int      `yaml:"port" toml:"port" validate:"min=1,max=65535" env:"PORT"`
	Reload             bool     `yaml:"reload" toml:"reload" env:"RELOAD"`
	AllowedOrigins     []string `yaml:"allowed_origins" toml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	RequestTimeoutSecs int      `yaml:"request_timeout_secs" toml:"request_timeout_secs" validate:"min=1"`
	MaxUploadBytes     int64    `yaml:"max_upload_bytes" toml:"max_upload_bytes" validate:"min=1"`
}

// VectorStoreConfig selects and configures the chunk store.
type VectorStoreConfig struct {
	Type      string       `yaml:"type" toml:"type" validate:"oneof=chroma sqlite bleve memory" env:"VECTOR_STORE_TYPE"`
	QuerySize int          `yaml:"query_size" toml:"query_size" validate:"min=1" env:"VECTOR_QUERY_SIZE"`
	Chroma    ChromaConfig `yaml:"chroma" toml:"chroma"`
	SQLite    SQLiteConfig `yaml:"sqlite" toml:"sqlite"`
	Bleve     BleveConfig  `yaml:"bleve" toml:"bleve"`
}

// ChromaConfig holds the Chroma server address and collection settings.
type ChromaConfig struct {
	Scheme      string `yaml:"scheme" toml:"scheme" validate:"oneof=http https"`
	Host        string `yaml:"host" toml:"host" env:"CHROMA_DB_HOST"`
	Port        int    `yaml:"port" toml:"port" validate:"min=1,max=65535" env:"CHROMA_DB_PORT"`
	Collection  string `yaml:"collection" toml:"collection" env:"CHROMA_DB_COLLECTION_NAME"`
	Tenant      string `yaml:"tenant" toml:"tenant"`
	Database    string `yaml:"database" toml:"database"`
	Distance    string `yaml:"distance" toml:"distance" validate:"oneof=l2 cosine ip"`
	TimeoutSecs int    `yaml:"timeout_secs" toml:"timeout_secs" validate:"min=1"`
}

// BaseURL returns scheme://host:port.
func (c *ChromaConfig) BaseURL() string {
	return fmt.Sprintf("%s://%s:%d", c.Scheme, c.Host, c.Port)
}

// SQLiteConfig holds the path of the local chunk database.
type SQLiteConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// BleveConfig holds the path of the lexical index.
type BleveConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// EmbeddingConfig selects the embedder used to vectorise chunks and queries.
type EmbeddingConfig struct {
	Provider   string       `yaml:"provider" toml:"provider" validate:"oneof=hash openai gemini onnx" env:"EMBEDDING_PROVIDER"`
	Dimensions int          `yaml:"dimensions" toml:"dimensions" validate:"min=1"`
	CacheSize  int          `yaml:"cache_size" toml:"cache_size" validate:"gte=0"`
	OpenAI     OpenAIConfig `yaml:"openai" toml:"openai"`
	Gemini     GeminiConfig `yaml:"gemini" toml:"gemini"`
	ONNX       ONNXConfig   `yaml:"onnx" toml:"onnx"`
}

// OpenAIConfig configures an OpenAI-compatible /embeddings endpoint.
type OpenAIConfig struct {
	BaseURL     string `yaml:"base_url" toml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env" toml:"api_key_env"`
	Model       string `yaml:"model" toml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" toml:"timeout_secs" validate:"min=1"`
}

// GeminiConfig configures Gemini embeddings.
type GeminiConfig struct {
	APIKeyEnv string `yaml:"api_key_env" toml:"api_key_env"`
	Model     string `yaml:"model" toml:"model"`
}

// ONNXConfig holds ONNX embedder settings.
type ONNXConfig struct {
	ModelPath string `yaml:"model_path" toml:"model_path"`
	MaxTokens int    `yaml:"max_tokens" toml:"max_tokens" validate:"min=1"`
}

// ChunkerConfig holds chunking settings. Sizes are in characters.
type ChunkerConfig struct {
	ChunkSize        int `yaml:"chunk_size" toml:"chunk_size" validate:"min=1"`
	ChunkOverlap     int `yaml:"chunk_overlap" toml:"chunk_overlap" validate:"gte=0"`
	SingleChunkLimit int `yaml:"single_chunk_limit" toml:"single_chunk_limit" validate:"min=1"`
}

// LLMConfig selects the answer-generation provider.
type LLMConfig struct {
	Provider       string  `yaml:"provider" toml:"provider" validate:"oneof=bedrock anthropic gemini" env:"LLM_PROVIDER"`
	Model          string  `yaml:"model" toml:"model" validate:"required" env:"MODEL_ID"`
	Region         string  `yaml:"region" toml:"region" env:"AWS_REGION"`
	APIKeyEnv      string  `yaml:"api_key_env" toml:"api_key_env"`
	MaxTokens      int     `yaml:"max_tokens" toml:"max_tokens" validate:"min=1"`
	Temperature    float64 `yaml:"temperature" toml:"temperature" validate:"gte=0,lte=2"`
	TimeoutSecs    int     `yaml:"timeout_secs" toml:"timeout_secs" validate:"min=1"`
	MaxPromptChars int     `yaml:"max_prompt_chars" toml:"max_prompt_chars" validate:"gte=0"`
}

// PromptConfig points at an optional template overriding the built-in one.
type PromptConfig struct {
	TemplatePath string `yaml:"template_path" toml:"template_path"`
}

// LanguageConfig tunes language detection.
type LanguageConfig struct {
	Fallback      string  `yaml:"fallback" toml:"fallback" validate:"required"`
	MinConfidence float64 `yaml:"min_confidence" toml:"min_confidence" validate:"gte=0,lte=1"`
}

// Load reads the config file at path (YAML, or TOML for a .toml extension),
// applies environment overrides and defaults, expands relative paths and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if isTOML(path) {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return finish(&cfg, filepath.Dir(path))
}

// Default returns the built-in configuration with environment overrides applied.
// Relative paths resolve against the working directory.
func Default() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return finish(&Config{}, cwd)
}

func finish(cfg *Config, baseDir string) (*Config, error) {
	if err := ApplyEnv(cfg, Environ()); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	cfg.VectorStore.SQLite.Path = expandPath(cfg.VectorStore.SQLite.Path, baseDir)
	cfg.VectorStore.Bleve.Path = expandPath(cfg.VectorStore.Bleve.Path, baseDir)
	cfg.Embedding.ONNX.ModelPath = expandPath(cfg.Embedding.ONNX.ModelPath, baseDir)
	cfg.Prompt.TemplatePath = expandPath(cfg.Prompt.TemplatePath, baseDir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.VectorStore.Type == "chroma" {
		if c.VectorStore.Chroma.Host == "" || c.VectorStore.Chroma.Collection == "" {
			return fmt.Errorf("invalid config: vector_store.chroma host and collection are required")
		}
	}
	if c.VectorStore.Type == "sqlite" && c.VectorStore.SQLite.Path == "" {
		return fmt.Errorf("invalid config: vector_store.sqlite.path is required")
	}
	if c.VectorStore.Type == "bleve" && c.VectorStore.Bleve.Path == "" {
		return fmt.Errorf("invalid config: vector_store.bleve.path is required")
	}
	if c.Embedding.Provider == "onnx" && c.Embedding.ONNX.ModelPath == "" {
		return fmt.Errorf("invalid config: embedding.onnx.model_path is required")
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to baseDir;
// "~/" is the home directory. Empty paths stay empty.
func expandPath(path string, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
		return path
	}
	return filepath.Join(baseDir, path)
}
