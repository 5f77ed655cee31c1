package ragdoc

import (
	"strconv"
	"strings"
	"time"
)

// Providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Index backends.
const (
	BackendPinecone = "pinecone"
	BackendSQLite   = "sqlite"
)

// Throttle policies.
const (
	ThrottleCompletion = "completion"
	ThrottleRate       = "rate"
	ThrottleNone       = "none"
)

// Output formats for extracted text.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// SelectorAuto picks the content selector from the detected framework.
const SelectorAuto = "auto"

// Config holds every tunable of the pipeline. Empty model names mean the
// provider's default model.
type Config struct {
	Provider       string
	OpenAIAPIKey   string
	GeminiAPIKey   string
	EmbeddingModel string
	Dimension      int
	ChatModel      string
	Temperature    float64
	Subject        string

	ChunkSize    int
	ChunkOverlap int
	BatchSize    int

	Workers       int
	Throttle      string
	ThrottleDelay time.Duration
	Timeout       time.Duration
	Retries       int
	UserAgent     string
	Selector      string
	Format        string
	MaxTextLength int
	Browser       bool
	CorpusPath    string
	SitemapURL    string

	IndexBackend   string
	PineconeAPIKey string
	IndexName      string
	Namespace      string
	Metric         Metric
	Cloud          string
	Region         string
	SQLitePath     string

	TopK int
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Provider:      ProviderOpenAI,
		Dimension:     DefaultEmbeddingDimension,
		Temperature:   0.2,
		ChunkSize:     DefaultChunkSize,
		ChunkOverlap:  DefaultChunkOverlap,
		BatchSize:     200,
		Workers:       10,
		Throttle:      ThrottleCompletion,
		ThrottleDelay: 100 * time.Millisecond,
		Timeout:       10 * time.Second,
		UserAgent:     "Mozilla/5.0 (compatible; ragdoc/1.0)",
		Selector:      "div.theme-doc-markdown.markdown",
		Format:        FormatText,
		MaxTextLength: 100000,
		CorpusPath:    "output.json",
		IndexBackend:  BackendPinecone,
		Namespace:     "default",
		Metric:        MetricCosine,
		Cloud:         "aws",
		Region:        "us-east-1",
		SQLitePath:    "ragdoc.db",
		TopK:          DefaultTopK,
	}
}

// ChunkOptions returns the chunking parameters.
func (c Config) ChunkOptions() ChunkOptions {
	return ChunkOptions{Size: c.ChunkSize, Overlap: c.ChunkOverlap}
}

// IndexSpec returns the spec of the configured index.
func (c Config) IndexSpec() IndexSpec {
	return IndexSpec{
		Name:      c.IndexName,
		Dimension: c.Dimension,
		Metric:    c.Metric,
		Cloud:     c.Cloud,
		Region:    c.Region,
	}
}

// LoadEnv overrides fields from environment variables read with getenv.
// Unset or empty variables leave the field unchanged.
func (c *Config) LoadEnv(getenv func(string) string) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"OPENAI_API_KEY", &c.OpenAIAPIKey},
		{"GEMINI_API_KEY", &c.GeminiAPIKey},
		{"PINECONE_API_KEY", &c.PineconeAPIKey},
		{"PINECONE_INDEX", &c.IndexName},
		{"PINECONE_NAMESPACE", &c.Namespace},
		{"PINECONE_ENVIRONMENT", &c.Region},
		{"RAGDOC_PROVIDER", &c.Provider},
		{"RAGDOC_EMBEDDING_MODEL", &c.EmbeddingModel},
		{"RAGDOC_CHAT_MODEL", &c.ChatModel},
		{"RAGDOC_INDEX_BACKEND", &c.IndexBackend},
		{"RAGDOC_SQLITE_PATH", &c.SQLitePath},
		{"RAGDOC_SITEMAP_URL", &c.SitemapURL},
	}
	for _, s := range strs {
		if v := getenv(s.name); v != "" {
			*s.dst = v
		}
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"CHUNK_SIZE", &c.ChunkSize},
		{"CHUNK_OVERLAP", &c.ChunkOverlap},
		{"BATCH_SIZE", &c.BatchSize},
		{"RAGDOC_WORKERS", &c.Workers},
		{"RAGDOC_TOP_K", &c.TopK},
		{"RAGDOC_DIMENSION", &c.Dimension},
	}
	for _, i := range ints {
		v := getenv(i.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return Errorf(ECONFIG, "%s must be an integer, got %q", i.name, v)
		}
		*i.dst = n
	}

	if v := getenv("RAGDOC_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Errorf(ECONFIG, "RAGDOC_TIMEOUT must be a duration, got %q", v)
		}
		c.Timeout = d
	}
	return nil
}

// ValidateCrawl checks the options needed to crawl a site.
func (c Config) ValidateCrawl() error {
	return configError(c.crawlProblems())
}

// ValidateIndex checks the options and secrets needed to build the index.
func (c Config) ValidateIndex() error {
	problems := c.serviceProblems()
	if err := c.ChunkOptions().Validate(); err != nil {
		problems = append(problems, ErrorMessage(err))
	}
	if c.BatchSize <= 0 {
		problems = append(problems, "batch size must be positive")
	}
	return configError(problems)
}

// ValidateQuery checks the options and secrets needed to answer questions.
func (c Config) ValidateQuery() error {
	problems := c.serviceProblems()
	if c.TopK <= 0 {
		problems = append(problems, "top-k must be positive")
	}
	return configError(problems)
}

func (c Config) crawlProblems() []string {
	var problems []string
	if c.SitemapURL == "" {
		problems = append(problems, "sitemap URL is not set")
	}
	if c.Workers <= 0 {
		problems = append(problems, "workers must be positive")
	}
	if c.Timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}
	if c.Retries < 0 {
		problems = append(problems, "retries must not be negative")
	}
	switch c.Throttle {
	case ThrottleCompletion, ThrottleRate, ThrottleNone:
	default:
		problems = append(problems, "unknown throttle policy "+strconv.Quote(c.Throttle))
	}
	if c.Throttle == ThrottleRate && c.ThrottleDelay <= 0 {
		problems = append(problems, "rate throttle requires a positive delay")
	}
	switch c.Format {
	case FormatText, FormatMarkdown:
	default:
		problems = append(problems, "unknown format "+strconv.Quote(c.Format))
	}
	if c.MaxTextLength <= 0 {
		problems = append(problems, "max text length must be positive")
	}
	return problems
}

func (c Config) serviceProblems() []string {
	var problems []string
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			problems = append(problems, "OPENAI_API_KEY is not set")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			problems = append(problems, "GEMINI_API_KEY is not set")
		}
	default:
		problems = append(problems, "unknown provider "+strconv.Quote(c.Provider))
	}
	switch c.IndexBackend {
	case BackendPinecone:
		if c.PineconeAPIKey == "" {
			problems = append(problems, "PINECONE_API_KEY is not set")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			problems = append(problems, "sqlite path is not set")
		}
	default:
		problems = append(problems, "unknown index backend "+strconv.Quote(c.IndexBackend))
	}
	if c.IndexName == "" {
		problems = append(problems, "PINECONE_INDEX is not set")
	}
	if c.Dimension <= 0 {
		problems = append(problems, "dimension must be positive")
	}
	if err := c.Metric.Validate(); err != nil {
		problems = append(problems, ErrorMessage(err))
	}
	if c.Timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}
	return problems
}

func configError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return Errorf(ECONFIG, "invalid configuration: %s", strings.Join(problems, "; "))
}
