package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"vampyr-backend/handlers"
	"vampyr-backend/models"
	"vampyr-backend/services"
	"vampyr-backend/utils"
	"vampyr-backend/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // avatars are the largest upload
	})

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Player{},
		&models.Item{},
		&models.Achievement{},
		&models.Character{},
		&models.LinkCode{},
		&models.Conversation{},
		&models.Message{},
		&models.Lead{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	ragURL := os.Getenv("RAG_API_URL")
	if ragURL == "" {
		log.Println("⚠️  RAG_API_URL environment variable not set, using default: http://localhost:8000")
		ragURL = "http://localhost:8000"
	}
	ragClient := services.NewRAGClient(ragURL)

	authService := services.NewAuthService(db)
	userService := services.NewUserService(db)
	playerService := services.NewPlayerService(db)
	linkService := services.NewLinkService(db)
	conversationService := services.NewConversationService(db)
	chatService := services.NewChatService(db, ragClient)
	leadService := services.NewLeadService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go workers.PollChatService(ctx, ragClient, 30*time.Second)
	leadService.StartArchiveScheduler()

	handlers.SetupAuthRoutes(app, authService, userService, linkService)
	handlers.SetupUserRoutes(app, userService)
	handlers.SetupPlayerRoutes(app, playerService)
	handlers.SetupConversationRoutes(app, conversationService)
	handlers.SetupChatRoutes(app, chatService)
	handlers.SetupLeadRoutes(app, leadService)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Vampyr Assistant Backend is running",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Chat service prober running (every 30s)")
	log.Printf("✅ CORS configured for origins: %s", strings.Join(origins, ","))

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
