package api

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/SundayYogurt/lending_portal/config"
	"github.com/SundayYogurt/lending_portal/infra/queue"
	"github.com/SundayYogurt/lending_portal/internal/api/rest/handlers"
	"github.com/SundayYogurt/lending_portal/internal/api/rest/middleware"
	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/SundayYogurt/lending_portal/internal/helper"
	"github.com/SundayYogurt/lending_portal/internal/helper/utils"
	"github.com/SundayYogurt/lending_portal/internal/interfaces"
	"github.com/SundayYogurt/lending_portal/internal/repository"
	"github.com/SundayYogurt/lending_portal/internal/services"
	"github.com/SundayYogurt/lending_portal/internal/session"
	"github.com/SundayYogurt/lending_portal/pkg/cloudinary"
	"github.com/SundayYogurt/lending_portal/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Deps are the connected backends the HTTP app is built on. Producer and
// Uploader may be nil.
type Deps struct {
	DB       *gorm.DB
	Redis    redis.UniversalClient
	Producer interfaces.ProducerHandler
	Uploader interfaces.Uploader
	Config   config.Config
}

// NewApp wires repositories, services and handlers onto a fiber app.
func NewApp(d Deps) *fiber.App {
	cfg := d.Config

	bodyLimit := 4 * 1024 * 1024
	if cfg.MaxFileBytes > 0 {
		// data URLs inflate files by a third, plus room for the other fields
		bodyLimit = int(cfg.MaxFileBytes)*3 + 1024*1024
	}

	app := fiber.New(fiber.Config{
		AppName:      "lending-portal",
		BodyLimit:    bodyLimit,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.BaseURL,
		AllowHeaders:     "Content-Type, Accept, Authorization, If-Match",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: cfg.BaseURL != "*",
	}))

	// ---------- Repositories ----------
	memberRepo := repository.NewMemberRepository(d.DB)
	kycRepo := repository.NewKYCRepository(d.DB)
	loanRepo := repository.NewLoanRepository(d.DB)
	bankRepo := repository.NewBankAccountRepository(d.DB)
	auditRepo := repository.NewAuditRepository(d.DB)

	// ---------- Services ----------
	auth := helper.SetupAuth(cfg.AccessSecret, cfg.TokenTTL)
	sessions := session.NewRedisStore(d.Redis)

	kycSvc := services.NewKYCService(kycRepo, memberRepo, d.Uploader, d.Producer, cfg.MaxFileBytes)
	memberSvc := services.NewMemberService(memberRepo, kycSvc, auth, sessions, d.Producer, cfg.MaxFileBytes)
	loanSvc := services.NewLoanService(loanRepo, memberRepo, d.Producer, cfg.MaxFileBytes)
	bankSvc := services.NewBankAccountService(bankRepo, memberRepo)
	auditSvc := services.NewAuditService(auditRepo)

	// ---------- Routes ----------
	authMw := middleware.AuthMiddleware(auth, sessions)
	apiGroup := app.Group("/api")
	members := apiGroup.Group("/members")
	r := handlers.Routes{
		API:     apiGroup,
		Members: members,
		Self:    members.Group("/:memberID", authMw, middleware.SelfOrAdmin("memberID")),
		Auth:    authMw,
	}

	handlers.NewAuthHandler(memberSvc).SetupRoutes(r, loginLimiter(cfg.LoginPerMin))
	handlers.NewMemberHandler(memberSvc).SetupRoutes(r)
	handlers.NewKYCHandler(kycSvc, auditSvc).SetupRoutes(r)
	handlers.NewLoanHandler(loanSvc).SetupRoutes(r)
	handlers.NewBankAccountHandler(bankSvc).SetupRoutes(r)
	handlers.NewUploadHandler(d.Uploader, cfg.MaxFileBytes).SetupRoutes(r)

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return app
}

func loginLimiter(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return utils.ResponseError(c, fiber.StatusTooManyRequests, "too many login attempts, try again later")
		},
	})
}

// StartServer connects every backend, migrates, and serves until SIGINT or
// SIGTERM.
func StartServer(cfg config.Config) error {
	if cfg.AccessSecret == "" {
		return errors.New("ACCESS_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---------- DB ----------
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}
	logger.Info("database connected")

	if err := migrate(db); err != nil {
		return err
	}
	if err := seedAdmin(db, cfg); err != nil {
		return err
	}

	// ---------- Infra ----------
	rdb, err := session.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("redis connection: %w", err)
	}
	defer rdb.Close()

	producer := queue.NewProducer(cfg.KafkaBroker, cfg.KafkaTopic, cfg.KafkaUsername, cfg.KafkaPassword)
	defer producer.Close()
	if producer == nil {
		logger.Warn("kafka not configured, events are dropped")
	}

	deps := Deps{DB: db, Redis: rdb, Producer: producer, Config: cfg}

	cld, err := cloudinary.New(cfg.CloudinaryURL)
	if err != nil {
		return fmt.Errorf("cloudinary init: %w", err)
	}
	if cld != nil {
		deps.Uploader = cloudinary.NewCloudinaryUploader(cld)
	} else {
		logger.Warn("cloudinary not configured, attachments are stored inline")
	}

	app := NewApp(deps)

	// ---------- Listen ----------
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.ServerPort))
		errCh <- app.Listen(cfg.ServerPort)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

// migrate runs schema migration under a postgres advisory lock so that
// replicas starting together do not race.
func migrate(db *gorm.DB) error {
	const migrateLockID int64 = 20260222

	err := withAdvisoryLock(db, migrateLockID, func(tx *gorm.DB) error {
		if err := repository.Migrate(tx); err != nil {
			return fmt.Errorf("migration: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("migration successful")
	return nil
}

// withAdvisoryLock holds a session-level advisory lock around fn. The lock
// belongs to a connection, so lock, fn and unlock share one pinned conn.
func withAdvisoryLock(db *gorm.DB, id int64, fn func(tx *gorm.DB) error) error {
	return db.Connection(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_lock(?)", id).Error; err != nil {
			return fmt.Errorf("migration lock: %w", err)
		}
		defer func() {
			if err := tx.Exec("SELECT pg_advisory_unlock(?)", id).Error; err != nil {
				logger.Warn("advisory unlock failed", zap.Int64("lock_id", id), zap.Error(err))
			}
		}()
		return fn(tx)
	})
}

// seedAdmin creates the bootstrap admin account, or promotes an existing
// member with that email.
func seedAdmin(db *gorm.DB, cfg config.Config) error {
	email := utils.NormalizeEmail(cfg.AdminEmail)
	if email == "" || cfg.AdminPassword == "" {
		return nil
	}

	repo := repository.NewMemberRepository(db)
	existing, err := repo.FindMemberByEmail(email)
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return nil
		}
		return db.Model(&domain.Member{}).
			Where("id = ?", existing.ID).
			Updates(map[string]any{"role": domain.RoleAdmin, "version": gorm.Expr("version + 1")}).Error
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("seed admin: %w", err)
	}

	hash, err := helper.SetupAuth(cfg.AccessSecret, cfg.TokenTTL).HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	name, _, _ := strings.Cut(email, "@")
	admin := &domain.Member{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Status:       domain.MemberStatusActive,
		Role:         domain.RoleAdmin,
	}
	if err := repo.CreateMember(admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	logger.Info("admin account created", zap.String("email", email))
	return nil
}
