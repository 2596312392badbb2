package main

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/melodia/melodia-backend/internal/config"
	"github.com/melodia/melodia-backend/internal/controller"
	"github.com/melodia/melodia-backend/internal/handler"
	"github.com/melodia/melodia-backend/internal/middleware"
	"github.com/melodia/melodia-backend/internal/repository"
	"github.com/melodia/melodia-backend/internal/service"
	"github.com/melodia/melodia-backend/pkg/database"
	"github.com/melodia/melodia-backend/pkg/email"
	"github.com/melodia/melodia-backend/pkg/gateway"
	"github.com/melodia/melodia-backend/pkg/logger"
	"github.com/melodia/melodia-backend/pkg/payment"
	"github.com/melodia/melodia-backend/pkg/qrcode"
	"github.com/melodia/melodia-backend/pkg/storage"
	"github.com/melodia/melodia-backend/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	cfg := config.LoadConfig()

	zapLogger := logger.New()
	defer zapLogger.Sync()

	db := database.NewDatabase()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	bundleRepo := repository.NewCreditBundleRepository(db)
	purchaseRepo := repository.NewCreditPurchaseRepository(db)
	taskRepo := repository.NewGenerationTaskRepository(db)

	// Storage
	r2Storage, err := storage.NewR2Storage(cfg)
	if err != nil {
		zapLogger.Fatal("failed to initialize R2 storage", zap.Error(err))
	}
	imgStorage := storage.NewCloudflareImages(
		cfg.CloudflareImages.AccountID,
		cfg.CloudflareImages.Token,
		cfg.CloudflareImages.Hash,
	)

	// External collaborators
	emailService := email.NewEmailService(zapLogger)
	stripeService := payment.NewStripeService(cfg.Stripe.SecretKey, cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL)
	generationGateway := gateway.NewClient(
		cfg.Gateway.BaseURL,
		cfg.Gateway.APIKey,
		os.Getenv("PUBLIC_API_URL")+"/api/generation/callback?token="+cfg.Gateway.CallbackToken,
	)
	qrService := qrcode.NewQRService(cfg.ShareBaseURL)

	// Services
	authService := service.NewAuthService(userRepo, emailService)
	userService := service.NewUserService(userRepo, emailService)
	entitlementService := service.NewEntitlementService()
	creditService := service.NewCreditService(userRepo, zapLogger)
	bundleService := service.NewBundleService(bundleRepo)
	paymentService := service.NewPaymentService(
		stripeService,
		stripeService,
		creditService,
		userRepo,
		bundleRepo,
		purchaseRepo,
		emailService,
		zapLogger,
	)
	generationService := service.NewGenerationService(
		generationGateway,
		taskRepo,
		creditService,
		entitlementService,
		userRepo,
		r2Storage,
		imgStorage,
		qrService,
		cfg.Gateway.CallbackToken,
		zapLogger,
	)

	// Controllers
	authController := controller.NewAuthController(authService)
	userController := controller.NewUserController(userService)
	creditController := controller.NewCreditController(creditService, entitlementService)
	paymentController := controller.NewPaymentController(paymentService)
	generationController := controller.NewGenerationController(generationService)

	// Validator
	validator := utils.NewValidator()

	// Handlers
	authHandler := handler.NewAuthHandler(authController, validator)
	userHandler := handler.NewUserHandler(userController)
	creditHandler := handler.NewCreditHandler(creditController)
	paymentHandler := handler.NewPaymentHandler(paymentController, zapLogger)
	bundleHandler := handler.NewBundleHandler(bundleService)
	generationHandler := handler.NewGenerationHandler(generationController, validator)

	// Router
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "https://melodia.app, https://www.melodia.app, http://localhost:5173",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE",
		AllowCredentials: true,
	}))
	app.Use(fiberLogger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	api := app.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/verify-email", userHandler.CompleteEmailChange)

	// Public catalog routes
	api.Get("/plans", creditHandler.GetPlans)
	api.Get("/payments/bundles", paymentHandler.GetCreditBundles)

	// Public share page lookup
	api.Get("/tracks/:slug", generationHandler.GetSharedTask)

	// Stripe webhook (public, signature-verified)
	api.Post("/payments/webhook", paymentHandler.HandleStripeWebhook)

	// Gateway callback (public, token-checked)
	api.Post("/generation/callback", generationHandler.HandleCallback)

	// Protected routes
	api.Use(middleware.AuthMiddleware())
	{
		user := api.Group("/user")
		user.Get("/profile", userHandler.GetMyProfile)
		user.Put("/profile", userHandler.UpdateProfile)
		user.Post("/change-password", userHandler.ChangePassword)
		user.Post("/change-email", userHandler.InitiateEmailChange)

		// Credit routes
		credits := api.Group("/credits")
		credits.Get("/", creditHandler.GetCredits)
		credits.Get("/check", creditHandler.CheckCredits)
		credits.Post("/reset", creditHandler.ResetDailyAllowance)

		// Payment routes
		payments := api.Group("/payments")
		payments.Get("/history", paymentHandler.GetPurchaseHistory)
		payments.Post("/checkout/:bundleId", paymentHandler.CreateCheckoutSession)
		payments.Post("/confirm", paymentHandler.ConfirmCheckout)

		// Bundle routes
		bundles := api.Group("/bundles")
		bundles.Get("/", bundleHandler.GetAllBundles)
		bundles.Get("/:id", bundleHandler.GetBundleByID)

		// Generation routes
		generate := api.Group("/generate")
		generate.Post("/music", generationHandler.GenerateMusic)
		generate.Post("/music/extend", generationHandler.ExtendMusic)
		generate.Post("/wav", generationHandler.ConvertToWAV)
		generate.Post("/video", generationHandler.GenerateVideo)
		generate.Post("/image", generationHandler.GenerateImage)
		generate.Post("/lyrics", generationHandler.GenerateLyrics)

		// Task routes
		tasks := api.Group("/tasks")
		tasks.Get("/", generationHandler.ListTasks)
		tasks.Get("/:taskId", generationHandler.GetTask)
		tasks.Get("/:taskId/qr", generationHandler.GetTaskQR)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	zapLogger.Info("starting api", zap.String("port", port))
	log.Fatal(app.Listen(":" + port))
}
