package model

import "time"

// Config is the complete runtime configuration
type Config struct {
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Matching    MatchingConfig    `yaml:"matching" mapstructure:"matching"`
	Embedding   EmbeddingConfig   `yaml:"embedding" mapstructure:"embedding"`
	Scoring     ScoringConfig     `yaml:"scoring" mapstructure:"scoring"`
	Credibility CredibilityConfig `yaml:"credibility" mapstructure:"credibility"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Import      ImportConfig      `yaml:"import" mapstructure:"import"`
	RulesFile   string            `yaml:"rules_file" mapstructure:"rules_file"` // Optional YAML overlay for the rule table
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // sqlite3, pgx, memory
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// MatchingConfig holds the versioned acceptance thresholds.
// Lower thresholds trade precision for recall.
type MatchingConfig struct {
	KeywordThreshold   float64 `yaml:"keyword_threshold" mapstructure:"keyword_threshold"`
	EmbeddingThreshold float64 `yaml:"embedding_threshold" mapstructure:"embedding_threshold"`
	ThresholdVersion   string  `yaml:"threshold_version" mapstructure:"threshold_version"`
	LiteralBonus       float64 `yaml:"literal_bonus" mapstructure:"literal_bonus"`
	MinKeywordLength   int     `yaml:"min_keyword_length" mapstructure:"min_keyword_length"`
}

// EmbeddingConfig configures the optional embedding provider
type EmbeddingConfig struct {
	Provider          string        `yaml:"provider" mapstructure:"provider"` // "", openai, ollama
	Model             string        `yaml:"model" mapstructure:"model"`
	APIKey            string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL           string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Delay             time.Duration `yaml:"delay" mapstructure:"delay"` // Fixed pause between upstream calls
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	CacheDir          string        `yaml:"cache_dir" mapstructure:"cache_dir"`
	CacheTTL          time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// ScoringConfig weights the composite consistency score
type ScoringConfig struct {
	ConsistencyWeight  float64 `yaml:"consistency_weight" mapstructure:"consistency_weight"`
	AttendanceWeight   float64 `yaml:"attendance_weight" mapstructure:"attendance_weight"`
	ActivityWeight     float64 `yaml:"activity_weight" mapstructure:"activity_weight"`
	ExpectedActions    int     `yaml:"expected_actions" mapstructure:"expected_actions"`
	EvidenceConfidence float64 `yaml:"evidence_confidence" mapstructure:"evidence_confidence"`
}

// CredibilityConfig bounds the credibility ledger
type CredibilityConfig struct {
	Min          float64 `yaml:"min" mapstructure:"min"`
	Max          float64 `yaml:"max" mapstructure:"max"`
	Baseline     float64 `yaml:"baseline" mapstructure:"baseline"`
	KeptDelta    float64 `yaml:"kept_delta" mapstructure:"kept_delta"`
	BrokenDelta  float64 `yaml:"broken_delta" mapstructure:"broken_delta"`
	PartialDelta float64 `yaml:"partial_delta" mapstructure:"partial_delta"`
}

// ConcurrencyConfig bounds per-official fan-out
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LoggingConfig configures logrus output
type LoggingConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	Format     string `yaml:"format" mapstructure:"format"` // text, json
	File       string `yaml:"file,omitempty" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"`
}

// HTTPConfig is used when fetching a source page for classification
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ImportConfig controls dataset import batching
type ImportConfig struct {
	BatchSize  int           `yaml:"batch_size" mapstructure:"batch_size"`
	BatchDelay time.Duration `yaml:"batch_delay" mapstructure:"batch_delay"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver: "sqlite3",
			DSN:    "politikcred.db",
		},
		Matching: MatchingConfig{
			KeywordThreshold:   0.10,
			EmbeddingThreshold: 0.55,
			ThresholdVersion:   "2026-10-keyword10-embed55",
			LiteralBonus:       0.05,
			MinKeywordLength:   4,
		},
		Embedding: EmbeddingConfig{
			Provider:          "", // Disabled: keyword path only
			Model:             "",
			Timeout:           10 * time.Second,
			Delay:             200 * time.Millisecond,
			RequestsPerSecond: 2,
			CacheDir:          ".politikcred-cache/embeddings",
			CacheTTL:          30 * 24 * time.Hour,
		},
		Scoring: ScoringConfig{
			ConsistencyWeight:  0.7,
			AttendanceWeight:   0.2,
			ActivityWeight:     0.1,
			ExpectedActions:    50,
			EvidenceConfidence: 0.25,
		},
		Credibility: CredibilityConfig{
			Min:          0,
			Max:          200,
			Baseline:     100,
			KeptDelta:    5,
			BrokenDelta:  -8,
			PartialDelta: 1,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "PolitikCred/0.1 (+https://github.com/ppiankov/politikcred)",
			MaxBodyBytes: 2_000_000,
		},
		Import: ImportConfig{
			BatchSize:  50,
			BatchDelay: 500 * time.Millisecond,
		},
	}
}
