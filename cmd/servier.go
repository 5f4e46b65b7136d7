package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/memoria-systems/memoria/pkg/config"
	"github.com/memoria-systems/memoria/pkg/errx"
	"github.com/memoria-systems/memoria/pkg/kernel"
	"github.com/memoria-systems/memoria/pkg/logx"
	"github.com/memoria-systems/memoria/pkg/memoryengine"
)

func main() {
	cfg := config.Load()

	switch cfg.Server.LogLevel {
	case "debug":
		logx.SetLevel(logx.LevelDebug)
	case "warn":
		logx.SetLevel(logx.LevelWarn)
	case "error":
		logx.SetLevel(logx.LevelError)
	default:
		logx.SetLevel(logx.LevelInfo)
	}

	logx.Info("Starting Memoria chat service...")

	container := NewContainer(cfg)
	defer container.Cleanup()

	bgCtx, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()
	container.StartBackgroundServices(bgCtx)

	app := fiber.New(fiber.Config{
		AppName:               "Memoria",
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
		IdleTimeout:           120,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return uuid.New().String()
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
		AllowMethods: "GET, POST",
	}))
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${reqHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	app.Get("/", infoHandler)
	app.Post("/login", loginHandler(container))
	app.Post("/logout", logoutHandler(container))
	app.Post("/chat-semantic", chatHandler(container, memoryengine.ModeSemantic))
	app.Post("/chat-rfm", chatHandler(container, memoryengine.ModeRFM))
	app.Post("/chat-rfm-semantic", chatHandler(container, memoryengine.ModeCombined))

	app.Use(notFoundHandler)

	startServer(app, cfg)
}

// ============================================================================
// Handlers
// ============================================================================

// infoHandler answers GET / per spec.md §6.
func infoHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "chat service running"})
}

type userRequest struct {
	UserID string `json:"user_id"`
}

func loginHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req userRequest
		if err := c.BodyParser(&req); err != nil {
			return httpErrors.NewWithCause(ErrBadRequest, err)
		}
		if req.UserID == "" {
			return httpErrors.New(ErrMissingUserID)
		}

		result, err := container.SessionController.Login(c.Context(), kernel.NewUserID(req.UserID))
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"status":          "ok",
			"memories_loaded": result.MemoriesLoaded,
			"chats_loaded":    result.ChatsLoaded,
		})
	}
}

func logoutHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req userRequest
		if err := c.BodyParser(&req); err != nil {
			return httpErrors.NewWithCause(ErrBadRequest, err)
		}
		if req.UserID == "" {
			return httpErrors.New(ErrMissingUserID)
		}

		result, err := container.SessionController.Logout(c.Context(), kernel.NewUserID(req.UserID))
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"status":          "ok",
			"memories_synced": result.MemoriesSynced,
			"chats_synced":    result.ChatsSynced,
		})
	}
}

type chatRequest struct {
	UserID    string `json:"user_id"`
	UserInput string `json:"user_input"`
}

// chatHandler answers one of the three chat turn endpoints. After the
// oracle produces a response, the exchange is published to both Work
// Pipeline queues so the memory and log workers pick it up asynchronously
// (spec.md §6, §4.5): the HTTP turn handler never blocks on memory
// extraction or logging.
func chatHandler(container *Container, mode memoryengine.Mode) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req chatRequest
		if err := c.BodyParser(&req); err != nil {
			return httpErrors.NewWithCause(ErrBadRequest, err)
		}
		if req.UserID == "" {
			return httpErrors.New(ErrMissingUserID)
		}
		if req.UserInput == "" {
			return httpErrors.New(ErrMissingInput)
		}

		userID := kernel.NewUserID(req.UserID)
		result, err := container.Engine.Chat(c.Context(), userID, req.UserInput, mode)
		if err != nil {
			return err
		}

		if err := container.WPProducer.Publish(c.Context(), userID, req.UserInput, result.Answer); err != nil {
			return err
		}

		body := fiber.Map{
			"response":      result.Answer,
			"fetch_time":    result.FetchTime.Seconds(),
			"response_time": result.ResponseTime.Seconds(),
		}

		memoriesRetrieved := fiber.Map{}
		switch mode {
		case memoryengine.ModeSemantic:
			body["embeddings_time"] = result.EmbeddingTime.Seconds()
			memoriesRetrieved["semantic"] = result.MemoriesRetrieved.Semantic
		case memoryengine.ModeRFM:
			memoriesRetrieved["rfm"] = result.MemoriesRetrieved.RFM
		case memoryengine.ModeCombined:
			body["embedding_time"] = result.EmbeddingTime.Seconds()
			memoriesRetrieved["semantic"] = result.MemoriesRetrieved.Semantic
			memoriesRetrieved["rfm"] = result.MemoriesRetrieved.RFM
		}
		body["memories_retrieved"] = memoriesRetrieved

		return c.JSON(body)
	}
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":      "Route not found",
		"code":       "NOT_FOUND",
		"path":       c.Path(),
		"method":     c.Method(),
		"request_id": c.Get("X-Request-ID"),
	})
}

// ============================================================================
// Error Handler
// ============================================================================

func globalErrorHandler(c *fiber.Ctx, err error) error {
	logx.WithFields(logx.Fields{
		"path":       c.Path(),
		"method":     c.Method(),
		"request_id": c.Get("X-Request-ID"),
	}).Errorf("Request error: %v", err)

	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(fiber.Map{
			"error":      e.Message,
			"code":       "FIBER_ERROR",
			"status":     e.Code,
			"request_id": c.Get("X-Request-ID"),
		})
	}

	if e, ok := err.(*errx.Error); ok {
		response := fiber.Map{
			"error":      e.Message,
			"code":       e.Code,
			"type":       string(e.Type),
			"status":     e.HTTPStatus,
			"request_id": c.Get("X-Request-ID"),
		}
		if len(e.Details) > 0 {
			response["details"] = e.Details
		}
		return c.Status(e.HTTPStatus).JSON(response)
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":      "Internal Server Error",
		"code":       "INTERNAL_ERROR",
		"request_id": c.Get("X-Request-ID"),
	})
}

// ============================================================================
// Server lifecycle
// ============================================================================

func startServer(app *fiber.App, cfg *config.Config) {
	go func() {
		logx.Infof("Server listening on port %s", cfg.Server.Port)
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	gracefulShutdown(app, cfg)
}

func gracefulShutdown(app *fiber.App, cfg *config.Config) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logx.Infof("Received signal: %v", sig)
	logx.Info("Shutting down gracefully...")

	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	logx.Info("Server exited successfully")
}
