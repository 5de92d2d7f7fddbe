package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/auth"
	"github.com/rajivgeraev/ecoswap-api/internal/config"
	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/middleware"
	"github.com/rajivgeraev/ecoswap-api/internal/outbox"
	"github.com/rajivgeraev/ecoswap-api/internal/services/admin"
	"github.com/rajivgeraev/ecoswap-api/internal/services/chat"
	"github.com/rajivgeraev/ecoswap-api/internal/services/cloudinary"
	"github.com/rajivgeraev/ecoswap-api/internal/services/exchange"
	"github.com/rajivgeraev/ecoswap-api/internal/services/favorite"
	"github.com/rajivgeraev/ecoswap-api/internal/services/listing"
	"github.com/rajivgeraev/ecoswap-api/internal/services/notification"
	"github.com/rajivgeraev/ecoswap-api/internal/services/profile"
	"github.com/rajivgeraev/ecoswap-api/internal/services/proposal"
	"github.com/rajivgeraev/ecoswap-api/internal/services/rating"
	"github.com/rajivgeraev/ecoswap-api/internal/utils"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Ошибка конфигурации: %v", err)
	}
	db.SetDefaultTimeout(cfg.DBTimeout)

	// Инициализируем базу данных
	pool, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("❌ Ошибка при инициализации базы данных: %v", err)
	}
	defer pool.Close()

	store := db.NewStore(pool)
	dispatcher := outbox.NewDispatcher(store, cfg.DBTimeout)

	jwtService := utils.NewJWTService(cfg.JWTSecret, cfg.JWTAudience)
	gate := auth.NewGate(jwtService, store)

	cloudinaryService, err := cloudinary.NewCloudinaryService(cfg)
	if err != nil {
		log.Fatalf("❌ Ошибка при инициализации Cloudinary: %v", err)
	}
	if !cfg.CloudinaryConfig.Enabled() {
		log.Println("⚠️ Cloudinary не настроен, загрузка изображений недоступна")
	}

	// Создаём сервисы
	ratingService := rating.NewRatingService(store, dispatcher)
	exchangeService := exchange.NewExchangeService(cfg, store, dispatcher, ratingService)
	proposalService := proposal.NewProposalService(store, dispatcher)
	chatService := chat.NewChatService(store, dispatcher, cloudinaryService)
	listingService := listing.NewListingService(store)
	favoriteService := favorite.NewFavoriteService(store)
	notificationService := notification.NewNotificationService(store)
	adminService := admin.NewAdminService(store, dispatcher)
	profileService := profile.NewProfileService(store)

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "EcoSwap API",
		ErrorHandler: errorHandler,
		BodyLimit:    12 * 1024 * 1024,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitPerMinute,
		Expiration: time.Minute,
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Demasiadas solicitudes"})
		},
	}))

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})

	// Публичный каталог регистрируется до группы с авторизацией
	listingService.SetupPublicRoutes(app)

	// Защищенные маршруты
	api := app.Group("/api", middleware.AuthMiddleware(gate))
	profileService.SetupRoutes(api)
	listingService.SetupRoutes(api)
	favoriteService.SetupRoutes(api)
	exchangeService.SetupRoutes(api)
	chatService.SetupRoutes(api)
	proposalService.SetupRoutes(api)
	notificationService.SetupRoutes(api)
	adminService.SetupRoutes(api)
	cloudinaryService.SetupRoutes(api)

	// Маршруты администратора
	adminGroup := api.Group("/admin", middleware.RequireAdmin(gate))
	adminService.SetupAdminRoutes(adminGroup)
	chatService.SetupAdminRoutes(adminGroup)

	// Запускаем сервер
	log.Printf("✅ EcoSwap API запущен на порту %s (%s)", cfg.Port, cfg.AppEnv)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// errorHandler обрабатывает ошибки, не перехваченные обработчиками
func errorHandler(c fiber.Ctx, err error) error {
	return apperr.Respond(c, err)
}
