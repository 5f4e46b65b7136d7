// Package config loads typed configuration for every component of the
// memory tier from the environment, following the reference stack's
// per-concern loadXConfig()/getEnv* convention.
package config

import (
	"strconv"
	"time"
)

// Config is the root configuration object, composed of one section per
// infrastructure concern.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Oracle       OracleConfig
	MemoryEngine MemoryEngineConfig
	WorkPipeline WorkPipelineConfig
}

// Load reads the full configuration from the environment.
func Load() *Config {
	return &Config{
		Server:       loadServerConfig(),
		Database:     loadDatabaseConfig(),
		Redis:        loadRedisConfig(),
		Oracle:       loadOracleConfig(),
		MemoryEngine: loadMemoryEngineConfig(),
		WorkPipeline: loadWorkPipelineConfig(),
	}
}

// ServerConfig configures the HTTP façade.
type ServerConfig struct {
	Port            string
	LogLevel        string
	CORSOrigins     string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSOrigins:     getEnv("CORS_ORIGINS", "*"),
		ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		RequestTimeout:  getEnvDuration("SERVER_REQUEST_TIMEOUT", 45*time.Second),
	}
}

// DatabaseConfig configures the durable relational store.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SyncBatchSize   int
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		Name:            getEnv("DB_NAME", "memoria"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 20),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		SyncBatchSize:   getEnvInt("DB_SYNC_BATCH_SIZE", 100),
	}
}

// RedisConfig configures the VKC and the work pipeline's queue broker.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnvInt("REDIS_PORT", 6379),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}
}

func (r RedisConfig) Address() string {
	return r.Host + ":" + strconv.Itoa(r.Port)
}

// OracleConfig selects and configures the LLM oracle provider.
type OracleConfig struct {
	// Provider selects the generation backend: "anthropic", "openai",
	// "bedrock", or "gemini".
	Provider string

	// EmbeddingProvider selects the embedding backend independently, since
	// Anthropic and Bedrock-hosted models have no first-party embeddings
	// endpoint. Defaults to "openai".
	EmbeddingProvider string

	AnthropicAPIKey string
	AnthropicModel  string

	OpenAIAPIKey        string
	OpenAIModel         string
	OpenAIEmbeddingModel string

	BedrockModel  string
	BedrockRegion string

	GeminiAPIKey        string
	GeminiModel         string
	GeminiEmbeddingModel string

	EmbeddingDimensions int
	RequestTimeout      time.Duration
}

func loadOracleConfig() OracleConfig {
	return OracleConfig{
		Provider:             getEnv("ORACLE_PROVIDER", "anthropic"),
		EmbeddingProvider:    getEnv("ORACLE_EMBEDDING_PROVIDER", "openai"),
		AnthropicAPIKey:      getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:       getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:          getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIEmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		BedrockModel:         getEnv("BEDROCK_MODEL", "anthropic.claude-sonnet-4-20250514-v1:0"),
		BedrockRegion:        getEnv("AWS_REGION", "us-east-1"),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiEmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
		EmbeddingDimensions:  getEnvInt("EMBEDDING_DIMENSIONS", 768),
		RequestTimeout:       getEnvDuration("ORACLE_REQUEST_TIMEOUT", 30*time.Second),
	}
}

// MemoryEngineConfig configures retrieval/write-path defaults.
type MemoryEngineConfig struct {
	SemanticK            int
	RFMK                 int
	RecentChats          int
	SemanticCutoff       float32 // pure-semantic mode
	CombinedCutoff       float32 // combined mode's semantic leg
	DecisionK            int
	ExtractMaxCandidates int
}

func loadMemoryEngineConfig() MemoryEngineConfig {
	return MemoryEngineConfig{
		SemanticK:            getEnvInt("ME_SEMANTIC_K", 3),
		RFMK:                 getEnvInt("ME_RFM_K", 3),
		RecentChats:          getEnvInt("ME_RECENT_CHATS", 10),
		SemanticCutoff:       float32(getEnvFloat("ME_SEMANTIC_CUTOFF", 0.0)),
		CombinedCutoff:       float32(getEnvFloat("ME_COMBINED_CUTOFF", 0.4)),
		DecisionK:            getEnvInt("ME_DECISION_K", 3),
		ExtractMaxCandidates: getEnvInt("ME_EXTRACT_MAX_CANDIDATES", 2),
	}
}

// WorkPipelineConfig configures the dynamic per-user queue fan-out.
type WorkPipelineConfig struct {
	DiscoveryInterval time.Duration
	CleanupInterval   time.Duration
	MemoryPrefetch    int
	LogPrefetch       int
	DequeueTimeout    time.Duration
}

func loadWorkPipelineConfig() WorkPipelineConfig {
	return WorkPipelineConfig{
		DiscoveryInterval: getEnvDuration("WP_DISCOVERY_INTERVAL", 20*time.Second),
		CleanupInterval:   getEnvDuration("WP_CLEANUP_INTERVAL", 60*time.Second),
		MemoryPrefetch:    getEnvInt("WP_MEMORY_PREFETCH", 3),
		LogPrefetch:       getEnvInt("WP_LOG_PREFETCH", 10),
		DequeueTimeout:    getEnvDuration("WP_DEQUEUE_TIMEOUT", 5*time.Second),
	}
}
