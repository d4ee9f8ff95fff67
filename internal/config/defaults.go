package config

// DefaultAllowedOrigins are the browser origins accepted by CORS when none are configured.
var DefaultAllowedOrigins = []string{
	"https://suryansh-dey.github.io",
	"https://zenlearn.ai",
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	s := &cfg.Server
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.AllowedOrigins == nil {
		s.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}
	if s.RequestTimeoutSecs == 0 {
		s.RequestTimeoutSecs = 60
	}
	if s.MaxUploadBytes == 0 {
		s.MaxUploadBytes = 32 << 20
	}

	vs := &cfg.VectorStore
	if vs.Type == "" {
		vs.Type = "chroma"
	}
	if vs.QuerySize == 0 {
		vs.QuerySize = 5
	}
	ch := &vs.Chroma
	if ch.Scheme == "" {
		ch.Scheme = "http"
	}
	if ch.Host == "" {
		ch.Host = "localhost"
	}
	if ch.Port == 0 {
		ch.Port = 8000
	}
	if ch.Collection == "" {
		ch.Collection = "documents"
	}
	if ch.Tenant == "" {
		ch.Tenant = "default_tenant"
	}
	if ch.Database == "" {
		ch.Database = "default_database"
	}
	if ch.Distance == "" {
		ch.Distance = "l2"
	}
	if ch.TimeoutSecs == 0 {
		ch.TimeoutSecs = 30
	}
	if vs.SQLite.Path == "" {
		vs.SQLite.Path = "./data/chunks.db"
	}
	if vs.Bleve.Path == "" {
		vs.Bleve.Path = "./data/bleve"
	}

	e := &cfg.Embedding
	if e.Provider == "" {
		e.Provider = "hash"
	}
	if e.Dimensions == 0 {
		e.Dimensions = 384
	}
	if e.CacheSize == 0 {
		e.CacheSize = 10000
	}
	if e.OpenAI.BaseURL == "" {
		e.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if e.OpenAI.APIKeyEnv == "" {
		e.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if e.OpenAI.Model == "" {
		e.OpenAI.Model = "text-embedding-3-small"
	}
	if e.OpenAI.TimeoutSecs == 0 {
		e.OpenAI.TimeoutSecs = 30
	}
	if e.Gemini.APIKeyEnv == "" {
		e.Gemini.APIKeyEnv = "GEMINI_API_KEY"
	}
	if e.Gemini.Model == "" {
		e.Gemini.Model = "gemini-embedding-001"
	}
	if e.ONNX.MaxTokens == 0 {
		e.ONNX.MaxTokens = 256
	}

	c := &cfg.Chunker
	if c.ChunkSize == 0 {
		c.ChunkSize = 1000
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = 100
	}
	if c.SingleChunkLimit == 0 {
		c.SingleChunkLimit = 256
	}

	l := &cfg.LLM
	if l.Provider == "" {
		l.Provider = "bedrock"
	}
	if l.Model == "" {
		l.Model = defaultModel(l.Provider)
	}
	if l.Region == "" {
		l.Region = "us-east-1"
	}
	if l.APIKeyEnv == "" {
		switch l.Provider {
		case "anthropic":
			l.APIKeyEnv = "ANTHROPIC_API_KEY"
		case "gemini":
			l.APIKeyEnv = "GEMINI_API_KEY"
		}
	}
	if l.MaxTokens == 0 {
		l.MaxTokens = 512
	}
	if l.Temperature == 0 {
		l.Temperature = 0.5
	}
	if l.TimeoutSecs == 0 {
		l.TimeoutSecs = 60
	}

	if cfg.Language.Fallback == "" {
		cfg.Language.Fallback = "en"
	}
}

func defaultModel(provider string) string {
	switch provider {
	case "anthropic":
		return "claude-3-5-haiku-latest"
	case "gemini":
		return "gemini-2.0-flash"
	default:
		return "meta.llama3-8b-instruct-v1:0"
	}
}
