// Package config loads and validates application configuration.
// Settings come from a TOML file with defaults applied for anything
// unset; secrets come from the environment (optionally via a .env file).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
)

// Entity describes one configured reporting entity.
type Entity struct {
	// Ticker is the entity identifier (e.g., "NVDA").
	Ticker string `toml:"ticker"`

	// Name is the display name.
	Name string `toml:"name"`

	// Sector groups entities for display.
	Sector string `toml:"sector"`
}

// Chunking configures how documents are split for indexing.
type Chunking struct {
	// Size is the window size in words.
	Size int `toml:"size"`

	// Overlap is the number of words shared between consecutive
	// windows. Must be strictly smaller than Size.
	Overlap int `toml:"overlap"`
}

// Retrieval configures similarity search and answer synthesis.
type Retrieval struct {
	// SimilarityThreshold is the minimum score T in [0,1] below which
	// retrieved chunks are discarded regardless of rank.
	SimilarityThreshold float64 `toml:"similarity_threshold"`

	// MaxResults is the top-k cut for similarity search.
	MaxResults int `toml:"max_results"`

	// ContextDocs caps how many retrieved chunks feed the prompt.
	ContextDocs int `toml:"context_docs"`

	// MaxAnswerTokens bounds generated output length.
	MaxAnswerTokens int `toml:"max_answer_tokens"`
}

// Embedding configures the embedding backend.
type Embedding struct {
	// Model is the embedding model name.
	Model string `toml:"model"`

	// Dimensions is the fixed embedding dimension D. Must match the
	// model and the index.
	Dimensions int `toml:"dimensions"`

	// TimeoutSecs is the per-request timeout.
	TimeoutSecs int `toml:"timeout_secs"`

	// RequestsPerSecond rate-limits backend calls (0 = unlimited).
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Generation configures the text-generation backend.
type Generation struct {
	// Model is the generation model name.
	Model string `toml:"model"`

	// TimeoutSecs is the per-request timeout.
	TimeoutSecs int `toml:"timeout_secs"`

	// Temperature is the sampling temperature.
	Temperature float64 `toml:"temperature"`
}

// Scheduler configures the recurring background jobs.
type Scheduler struct {
	// Enabled is the master switch for default job registration.
	Enabled bool `toml:"enabled"`

	// DailyTime is the daily extraction time in "HH:MM".
	DailyTime string `toml:"daily_time"`

	// WeeklyDay is the weekly full-sync weekday name.
	WeeklyDay string `toml:"weekly_day"`

	// BackupTime is the nightly backup time in "HH:MM".
	BackupTime string `toml:"backup_time"`

	// HealthCheckHours is the health-check interval in hours.
	HealthCheckHours int `toml:"health_check_hours"`

	// HistoryKeep bounds persisted run history per job.
	HistoryKeep int `toml:"history_keep"`

	// DailyEntityLimit bounds how many entities the daily job covers.
	DailyEntityLimit int `toml:"daily_entity_limit"`
}

// Config is the root application configuration.
type Config struct {
	// DataDir is the root for the index database, raw artifacts,
	// backups and logs.
	DataDir string `toml:"data_dir"`

	// OllamaHost is the backend address for embedding and generation.
	// Overridden by the OLLAMA_HOST environment variable.
	OllamaHost string `toml:"ollama_host"`

	Chunking   Chunking   `toml:"chunking"`
	Retrieval  Retrieval  `toml:"retrieval"`
	Embedding  Embedding  `toml:"embedding"`
	Generation Generation `toml:"generation"`
	Scheduler  Scheduler  `toml:"scheduler"`

	// Entities is the configured entity catalog. The daily extraction
	// job covers the first DailyEntityLimit of them; the weekly full
	// sync covers all.
	Entities []Entity `toml:"entities"`

	// AlphaVantageKey is the optional data-provider API key, read from
	// the ALPHA_VANTAGE_KEY environment variable. Absence disables the
	// provider, nothing else.
	AlphaVantageKey string `toml:"-"`
}

// Load reads the config file at path. A missing file yields defaults.
// Environment variables are applied last (a .env file is honoured when
// present) and validation runs before returning.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	applyDefaults(cfg)
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:    "data",
		OllamaHost: "http://localhost:11434",
		Chunking:   Chunking{Size: 1000, Overlap: 200},
		Retrieval: Retrieval{
			SimilarityThreshold: 0.7,
			MaxResults:          5,
			ContextDocs:         3,
			MaxAnswerTokens:     512,
		},
		Embedding: Embedding{
			Model:       "nomic-embed-text",
			Dimensions:  384,
			TimeoutSecs: 30,
		},
		Generation: Generation{
			Model:       "llama3",
			TimeoutSecs: 120,
			Temperature: 0.3,
		},
		Scheduler: Scheduler{
			Enabled:          true,
			DailyTime:        "09:00",
			WeeklyDay:        "sunday",
			BackupTime:       "02:00",
			HealthCheckHours: 6,
			HistoryKeep:      100,
			DailyEntityLimit: 5,
		},
		Entities: defaultEntities(),
	}
}

// applyDefaults restores defaults for fields left at their zero value.
// SimilarityThreshold and Temperature are deliberately not covered:
// zero is a valid setting for both, and absent keys already keep the
// defaults they were unmarshalled over.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.OllamaHost == "" {
		cfg.OllamaHost = def.OllamaHost
	}
	if cfg.Chunking.Size == 0 {
		cfg.Chunking = def.Chunking
	}
	if cfg.Retrieval.MaxResults == 0 {
		cfg.Retrieval.MaxResults = def.Retrieval.MaxResults
	}
	if cfg.Retrieval.ContextDocs == 0 {
		cfg.Retrieval.ContextDocs = def.Retrieval.ContextDocs
	}
	if cfg.Retrieval.MaxAnswerTokens == 0 {
		cfg.Retrieval.MaxAnswerTokens = def.Retrieval.MaxAnswerTokens
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = def.Embedding.Model
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = def.Embedding.Dimensions
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = def.Embedding.TimeoutSecs
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = def.Generation.Model
	}
	if cfg.Generation.TimeoutSecs == 0 {
		cfg.Generation.TimeoutSecs = def.Generation.TimeoutSecs
	}
	if cfg.Scheduler.DailyTime == "" {
		cfg.Scheduler.DailyTime = def.Scheduler.DailyTime
	}
	if cfg.Scheduler.WeeklyDay == "" {
		cfg.Scheduler.WeeklyDay = def.Scheduler.WeeklyDay
	}
	if cfg.Scheduler.BackupTime == "" {
		cfg.Scheduler.BackupTime = def.Scheduler.BackupTime
	}
	if cfg.Scheduler.HealthCheckHours == 0 {
		cfg.Scheduler.HealthCheckHours = def.Scheduler.HealthCheckHours
	}
	if cfg.Scheduler.HistoryKeep == 0 {
		cfg.Scheduler.HistoryKeep = def.Scheduler.HistoryKeep
	}
	if cfg.Scheduler.DailyEntityLimit == 0 {
		cfg.Scheduler.DailyEntityLimit = def.Scheduler.DailyEntityLimit
	}
	if len(cfg.Entities) == 0 {
		cfg.Entities = defaultEntities()
	}
}

// applyEnv overlays environment-level settings. A .env file in the
// working directory is loaded first when present; absence is fine.
func applyEnv(cfg *Config) {
	_ = godotenv.Load()

	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		cfg.OllamaHost = host
	}
	cfg.AlphaVantageKey = os.Getenv("ALPHA_VANTAGE_KEY")
}

// Validate rejects configurations that would misbehave at runtime.
// In particular overlap >= chunk size would produce a non-advancing
// chunking stride and must fail here, before any ingestion.
func (c *Config) Validate() error {
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunking.size must be positive", domain.ErrInvalidInput)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("%w: chunking.overlap must be in [0, size)", domain.ErrInvalidInput)
	}
	if t := c.Retrieval.SimilarityThreshold; t < 0 || t > 1 {
		return fmt.Errorf("%w: retrieval.similarity_threshold must be in [0,1]", domain.ErrInvalidInput)
	}
	if c.Retrieval.MaxResults <= 0 {
		return fmt.Errorf("%w: retrieval.max_results must be positive", domain.ErrInvalidInput)
	}
	if c.Retrieval.ContextDocs <= 0 {
		return fmt.Errorf("%w: retrieval.context_docs must be positive", domain.ErrInvalidInput)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("%w: embedding.dimensions must be positive", domain.ErrInvalidInput)
	}
	if _, _, err := ParseClock(c.Scheduler.DailyTime); err != nil {
		return fmt.Errorf("scheduler.daily_time: %w", err)
	}
	if _, _, err := ParseClock(c.Scheduler.BackupTime); err != nil {
		return fmt.Errorf("scheduler.backup_time: %w", err)
	}
	if _, err := ParseWeekday(c.Scheduler.WeeklyDay); err != nil {
		return fmt.Errorf("scheduler.weekly_day: %w", err)
	}
	if c.Scheduler.HealthCheckHours < 1 {
		return fmt.Errorf("%w: scheduler.health_check_hours must be >= 1", domain.ErrInvalidInput)
	}
	return nil
}

// ParseClock parses a "HH:MM" time-of-day string.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: time %q is not HH:MM", domain.ErrInvalidInput, s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: hour in %q out of range", domain.ErrInvalidInput, s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: minute in %q out of range", domain.ErrInvalidInput, s)
	}
	return hour, minute, nil
}

// ParseWeekday maps a lowercase weekday name to time.Weekday.
func ParseWeekday(s string) (time.Weekday, error) {
	days := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
	d, ok := days[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return time.Sunday, fmt.Errorf("%w: unknown weekday %q", domain.ErrInvalidInput, s)
	}
	return d, nil
}

// EmbeddingTimeout returns the embedding request timeout.
func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.Embedding.TimeoutSecs) * time.Second
}

// GenerationTimeout returns the generation request timeout.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.Generation.TimeoutSecs) * time.Second
}

// RawDir returns the directory for raw ingestion artifacts.
func (c *Config) RawDir() string { return filepath.Join(c.DataDir, "raw") }

// BackupDir returns the directory that receives backups.
func (c *Config) BackupDir() string { return filepath.Join(c.DataDir, "backups") }

// LogFile returns the application log path.
func (c *Config) LogFile() string { return filepath.Join(c.DataDir, "logs", "earnings_rag.log") }

// DailyEntities returns the bounded entity subset for the daily job.
func (c *Config) DailyEntities() []string {
	limit := c.Scheduler.DailyEntityLimit
	if limit > len(c.Entities) {
		limit = len(c.Entities)
	}
	out := make([]string, 0, limit)
	for _, e := range c.Entities[:limit] {
		out = append(out, e.Ticker)
	}
	return out
}

// AllEntities returns every configured entity ticker.
func (c *Config) AllEntities() []string {
	out := make([]string, 0, len(c.Entities))
	for _, e := range c.Entities {
		out = append(out, e.Ticker)
	}
	return out
}

func defaultEntities() []Entity {
	return []Entity{
		{Ticker: "NVDA", Name: "NVIDIA Corporation", Sector: "AI Hardware"},
		{Ticker: "MSFT", Name: "Microsoft Corporation", Sector: "AI Software"},
		{Ticker: "GOOGL", Name: "Alphabet Inc.", Sector: "AI Software"},
		{Ticker: "META", Name: "Meta Platforms Inc.", Sector: "AI Software"},
		{Ticker: "TSLA", Name: "Tesla Inc.", Sector: "AI/Automotive"},
		{Ticker: "AMZN", Name: "Amazon.com Inc.", Sector: "AI/Cloud"},
		{Ticker: "CRM", Name: "Salesforce Inc.", Sector: "AI Software"},
		{Ticker: "ORCL", Name: "Oracle Corporation", Sector: "AI/Database"},
		{Ticker: "AMD", Name: "Advanced Micro Devices", Sector: "AI Hardware"},
		{Ticker: "INTC", Name: "Intel Corporation", Sector: "AI Hardware"},
		{Ticker: "IBM", Name: "International Business Machines", Sector: "Quantum Computing"},
		{Ticker: "IONQ", Name: "IonQ Inc.", Sector: "Quantum Computing"},
	}
}
