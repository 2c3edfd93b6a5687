package main

import (
	"context"
	"fmt"
	"time"

	"task-manager-go/configs"
	v1 "task-manager-go/internal/api/v1"
	"task-manager-go/internal/api/v1/handlers"
	"task-manager-go/internal/auth"
	"task-manager-go/internal/middleware"
	"task-manager-go/internal/store"
	"task-manager-go/internal/store/memory"
	pgstore "task-manager-go/internal/store/postgres"
	myws "task-manager-go/internal/websocket"
	"task-manager-go/pkg/database"
	"task-manager-go/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

func main() {
	logger.InitLoggers()
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	cfg := configs.LoadConfig()

	// Storage: in-memory by default, postgres when configured. Restarting an
	// in-memory deployment discards all data.
	var users store.UserStore
	var tasks store.TaskStore
	var reviews store.ReviewStore
	if cfg.DBHost != "" {
		db := database.ConnectDB(cfg)
		defer db.Close()
		pg := pgstore.New(db)
		if err := pg.CreateTables(context.Background()); err != nil {
			logger.ErrorLogger.Fatal("Error creating tables", zap.Error(err))
		}
		users, tasks, reviews = pg.Users(), pg.Tasks(), pg.Reviews()
		logger.SystemLogger.Info("Database connected")
	} else {
		mem := memory.New()
		if cfg.SeedDemo {
			if err := mem.SeedDemo(); err != nil {
				logger.ErrorLogger.Fatal("Error seeding demo data", zap.Error(err))
			}
		}
		users, tasks, reviews = mem.Users(), mem.Tasks(), mem.Reviews()
		logger.SystemLogger.Info("Using in-memory storage")
	}

	authSvc := auth.NewService(users, []byte(cfg.JWTSecret),
		time.Duration(cfg.TokenTTLHours)*time.Hour)

	h := handlers.New(authSvc, tasks, reviews)

	if cfg.RedisHost != "" {
		h.Cache = database.ConnectRedis(cfg)
		defer h.Cache.Close()
		logger.SystemLogger.Info("Redis connected")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	// WebSocket task event feed
	hub := myws.NewHub()
	go hub.Run()
	h.Hub = hub
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		client := &myws.Client{Conn: c}
		hub.Register <- client
		defer func() {
			hub.Unregister <- client
		}()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	v1.RegisterRoutes(app, h)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}
