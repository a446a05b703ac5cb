package routes

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lendly/lendly/internal/auth"
	"github.com/lendly/lendly/internal/config"
	"github.com/lendly/lendly/internal/loan"
	"github.com/lendly/lendly/internal/middleware"
	"github.com/lendly/lendly/internal/notification"
	"github.com/lendly/lendly/internal/otp"
	"github.com/lendly/lendly/internal/upload"
	"github.com/lendly/lendly/internal/user"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	Mongo  *mongo.Database
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.Cfg.CORSOrigin,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))
	if d.Cache != nil {
		app.Use(middleware.RateLimit(d.Cache, d.Cfg.RateLimitMax, d.Cfg.RateLimitWindow))
		app.Use(middleware.Idempotency(d.Cache, 24*time.Hour, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	// Repositories
	var userRepo user.Repository
	if d.Mongo != nil {
		repo, err := user.NewMongoRepository(context.Background(), d.Mongo)
		if err != nil {
			return err
		}
		userRepo = repo
	} else {
		userRepo = user.NewMemoryRepository()
	}

	var loanRepo loan.Repository
	var repaymentRepo loan.RepaymentRepository
	if d.DB != nil {
		loanRepo = loan.NewPostgresRepository(d.DB)
		repaymentRepo = loan.NewPostgresRepaymentRepository(d.DB)
	} else {
		loanRepo = loan.NewMemoryRepository()
		repaymentRepo = loan.NewMemoryRepaymentRepository()
	}

	// Services and handlers
	tokens := auth.NewTokenIssuer(d.Cfg.JWTSecret, d.Cfg.TokenTTL)
	codes := otp.NewGenerator(d.Cfg.OTPMode == config.OTPModeLive, d.Cfg.TestOTP, d.Cfg.OTPTTL)
	notifier := notification.NewLoggerNotifier(d.Logger)
	admin := auth.AdminIdentity{Email: d.Cfg.AdminEmail, Phone: d.Cfg.AdminPhone, FixedCode: d.Cfg.TestOTP}

	authSvc := auth.NewService(userRepo, codes, tokens, admin, notifier, d.Cfg.DevMode())
	authHandler := auth.NewHandler(authSvc)

	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	loanSvc := loan.NewService(loanRepo, repaymentRepo)
	loanHandler := loan.NewHandler(loanSvc)

	var uploader upload.Uploader
	if os.Getenv("CLOUDINARY_URL") != "" {
		cu, err := upload.NewCloudinaryUploader()
		if err != nil {
			return err
		}
		uploader = cu
	}

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	otpLimiter := middleware.OTPRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, otpLimiter)

	authmw := middleware.Auth(tokens, userRepo)
	RegisterUserRoutes(api.Group("/user", authmw), userHandler, uploader, d.Logger)
	RegisterLoanRoutes(api, authmw, loanHandler)

	return nil
}
