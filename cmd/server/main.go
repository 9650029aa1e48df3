package main

import (
	"log"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"meetbase/internal/config"
	"meetbase/internal/controllers"
	"meetbase/internal/db"
	"meetbase/internal/mailer"
	"meetbase/internal/middleware"
	"meetbase/internal/redis"
	"meetbase/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	dbConn, err := db.Init(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}

	var rdb *goredis.Client
	if cfg.RedisAddr != "" {
		rdb, err = redis.Init(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
	} else {
		logger.Warn("REDIS_ADDR not set, auth rate limiting disabled")
	}

	mail := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.FromEmail)

	store, err := storage.NewLocalStore(cfg.UploadDir, "/uploads")
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	authC := controllers.NewAuthController(dbConn, mail, store, logger, cfg)
	usersC := controllers.NewUsersController(dbConn, store)
	meetingsC := controllers.NewMeetingsController(dbConn)
	participantsC := controllers.NewParticipantsController(dbConn)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))
	r.Static("/uploads", cfg.UploadDir)

	limited := r.Group("/")
	limited.Use(middleware.RateLimit(rdb, logger, cfg.AuthRatePerMinute))
	{
		limited.POST("/register", authC.Register)
		limited.POST("/login", authC.Login)
		limited.POST("/verify-otp", authC.VerifyOTP)
	}

	protected := r.Group("/")
	protected.Use(middleware.RequireAuth(cfg.JWTSecret))
	{
		protected.GET("/verify-token", authC.VerifyToken)
		protected.GET("/me", authC.Me)

		protected.GET("/users", usersC.List)
		protected.PUT("/users/:id", usersC.Update)
		protected.DELETE("/users/:id", usersC.Delete)

		protected.POST("/meetings", meetingsC.Create)
		protected.PATCH("/meetings/:id/end-date", meetingsC.UpdateEndDate)
		protected.PUT("/meetings/:id", meetingsC.Update)
		protected.DELETE("/meetings/:id", meetingsC.Delete)

		protected.POST("/participants", participantsC.Create)
		protected.PUT("/participants/:id", participantsC.Update)
		protected.DELETE("/participants/:id", participantsC.Delete)
	}

	logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
