// cmd/container.go
//
// Composition root. Owns infrastructure (Postgres, Redis) and wires the
// memory tier's five components — VKC, Ranking Kernel, Memory Engine, Work
// Pipeline, Session Controller — into one Container the HTTP façade and
// background workers are built from.
package main

import (
	"context"
	"fmt"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/memoria-systems/memoria/pkg/config"
	"github.com/memoria-systems/memoria/pkg/logx"
	"github.com/memoria-systems/memoria/pkg/memoryengine"
	"github.com/memoria-systems/memoria/pkg/oracle"
	"github.com/memoria-systems/memoria/pkg/oracle/oracleanthropic"
	"github.com/memoria-systems/memoria/pkg/oracle/oraclebedrock"
	"github.com/memoria-systems/memoria/pkg/oracle/oraclegemini"
	"github.com/memoria-systems/memoria/pkg/oracle/oracleopenai"
	"github.com/memoria-systems/memoria/pkg/sessioncontroller"
	"github.com/memoria-systems/memoria/pkg/store"
	"github.com/memoria-systems/memoria/pkg/store/postgres"
	"github.com/memoria-systems/memoria/pkg/vkc"
	"github.com/memoria-systems/memoria/pkg/vkc/redisvkc"
	"github.com/memoria-systems/memoria/pkg/workpipeline"
)

// Container holds shared infrastructure and the composed memory-tier
// components.
type Container struct {
	Config *config.Config

	// Infrastructure
	DB    *sqlx.DB
	Redis *redis.Client

	// Memory-tier components
	Store             store.Store
	VKC               vkc.Store
	Oracle            oracle.Oracle
	Engine            *memoryengine.Engine
	SessionController *sessioncontroller.Controller
	WPProducer        *workpipeline.Producer
	WPDispatcher      *workpipeline.Dispatcher
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("Initializing application container...")

	c := &Container{Config: cfg}
	c.initInfrastructure()
	c.initModules()

	logx.Info("Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure — Postgres, Redis
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() {
	logx.Info("Initializing infrastructure...")

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Config.Database.Host,
		c.Config.Database.Port,
		c.Config.Database.User,
		c.Config.Database.Password,
		c.Config.Database.Name,
		c.Config.Database.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
	db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)

	if err := postgres.Migrate(context.Background(), db); err != nil {
		logx.Fatalf("Failed to migrate schema: %v", err)
	}
	c.DB = db
	logx.Info("  Database connected and migrated")

	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Address(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Fatalf("Failed to connect to Redis: %v (Redis is required)", err)
	}
	logx.Info("  Redis connected")

	logx.Info("Infrastructure initialized")
}

// ---------------------------------------------------------------------------
// Module composition
// ---------------------------------------------------------------------------

func (c *Container) initModules() {
	logx.Info("Initializing modules...")

	c.Store = postgres.New(c.DB)
	c.VKC = redisvkc.New(c.Redis)

	gen, err := c.selectGenerator()
	if err != nil {
		logx.Fatalf("Failed to initialize oracle generator: %v", err)
	}
	emb, err := c.selectEmbedder()
	if err != nil {
		logx.Fatalf("Failed to initialize oracle embedder: %v", err)
	}
	c.Oracle = oracle.Compose(gen, emb)
	logx.Infof("  Oracle composed: generator=%s embedder=%s", c.Config.Oracle.Provider, c.Config.Oracle.EmbeddingProvider)

	c.Engine = memoryengine.New(c.VKC, c.Oracle, c.Config.MemoryEngine)
	c.SessionController = sessioncontroller.New(c.VKC, c.Store)

	c.WPProducer = workpipeline.NewProducer(c.Redis)
	c.WPDispatcher = workpipeline.NewDispatcher(c.Redis, c.Config.WorkPipeline, c.memoryWorker, c.logWorker)

	logx.Info("Modules initialized")
}

// memoryWorker is the Work Pipeline's memory-queue handler: parse →
// generate candidates → update the user's memories (spec.md §4.5).
func (c *Container) memoryWorker(ctx context.Context, msg workpipeline.Message) error {
	return c.Engine.WriteTurn(ctx, msg.UserID, msg.UserMessage, msg.BotResponse)
}

// logWorker is the Work Pipeline's log-queue handler: parse → append to the
// chat log (spec.md §4.5).
func (c *Container) logWorker(ctx context.Context, msg workpipeline.Message) error {
	return c.Engine.LogMessage(ctx, msg.UserID, msg.UserMessage, msg.BotResponse)
}

// selectGenerator picks the LLM backend that answers chat turns and drives
// the write-path's extract/decide/consolidate/magnitude prompts.
func (c *Container) selectGenerator() (oracle.Generator, error) {
	switch c.Config.Oracle.Provider {
	case "anthropic":
		return oracleanthropic.New(c.Config.Oracle.AnthropicAPIKey, c.Config.Oracle.AnthropicModel), nil
	case "bedrock":
		awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(), awsConfig.WithRegion(c.Config.Oracle.BedrockRegion))
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		return oraclebedrock.New(awsCfg, c.Config.Oracle.BedrockModel), nil
	case "openai":
		return oracleopenai.New(c.Config.Oracle.OpenAIAPIKey, c.Config.Oracle.OpenAIModel, c.Config.Oracle.OpenAIEmbeddingModel, c.Config.Oracle.EmbeddingDimensions), nil
	case "gemini":
		return oraclegemini.New(context.Background(), c.Config.Oracle.GeminiAPIKey, c.Config.Oracle.GeminiModel, c.Config.Oracle.GeminiEmbeddingModel)
	default:
		return nil, fmt.Errorf("unknown ORACLE_PROVIDER: %s", c.Config.Oracle.Provider)
	}
}

// selectEmbedder picks the embeddings backend independently of the
// generator, since Anthropic and Bedrock-hosted models have no first-party
// embeddings endpoint.
func (c *Container) selectEmbedder() (oracle.Embedder, error) {
	switch c.Config.Oracle.EmbeddingProvider {
	case "openai":
		return oracleopenai.New(c.Config.Oracle.OpenAIAPIKey, c.Config.Oracle.OpenAIModel, c.Config.Oracle.OpenAIEmbeddingModel, c.Config.Oracle.EmbeddingDimensions), nil
	case "gemini":
		return oraclegemini.New(context.Background(), c.Config.Oracle.GeminiAPIKey, c.Config.Oracle.GeminiModel, c.Config.Oracle.GeminiEmbeddingModel)
	default:
		return nil, fmt.Errorf("unknown ORACLE_EMBEDDING_PROVIDER: %s", c.Config.Oracle.EmbeddingProvider)
	}
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (c *Container) StartBackgroundServices(ctx context.Context) {
	logx.Info("Starting background services...")
	c.WPDispatcher.Start(ctx)
}

func (c *Container) Cleanup() {
	logx.Info("Cleaning up resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		} else {
			logx.Info("  Database connection closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("  Redis connection closed")
		}
	}

	logx.Info("Cleanup complete")
}
