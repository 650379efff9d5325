package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"playarena-backend/handlers"
	"playarena-backend/middleware"
	"playarena-backend/models"
	"playarena-backend/services"
	"playarena-backend/utils"
	"playarena-backend/workers"

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

	app := fiber.New()

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Println("⚠️  ALLOWED_ORIGINS not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	originsList := strings.Split(allowedOrigins, ",")
	for i, origin := range originsList {
		originsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(originsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.GameProfile{},
		&models.CreditTransaction{},
		&models.Tournament{},
		&models.TournamentParticipant{},
		&models.TournamentMessage{},
		&models.MatchRequest{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	ledgerService := services.NewLedgerService(db)
	userService := services.NewUserService(db)
	rewardService := services.NewRewardService(db, ledgerService)
	subscriptionService := services.NewSubscriptionService(db, ledgerService)
	matchService := services.NewMatchService(db, ledgerService)
	notifyClient := services.NewNotifyClientFromEnv()
	tournamentService := services.NewTournamentService(db, ledgerService, notifyClient)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Profile sync worker keeps local display data fresh (optional)
	if profileURL := os.Getenv("PROFILE_SERVICE_URL"); profileURL != "" {
		syncWorker := workers.NewProfileSyncWorker(db, profileURL, "/api/v1/public/profiles", os.Getenv("GATEWAY_SERVICE_TOKEN"))
		go syncWorker.Start(ctx)
	} else {
		log.Println("⚠️  PROFILE_SERVICE_URL not set — profile sync disabled")
	}

	tournamentService.StartActivationScheduler()

	handlers.SetupCreditRoutes(app, ledgerService, rewardService, userService)
	handlers.SetupSubscriptionRoutes(app, subscriptionService, matchService)
	handlers.SetupTournamentRoutes(app, tournamentService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Tournament activation scheduler running (every 1m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}
