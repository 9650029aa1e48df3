package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string

	JWTSecret   string
	JWTTTLHours int

	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	FromEmail string

	OTPLength         int
	UploadDir         string
	AuthRatePerMinute int
}

func Load() *Config {
	_ = godotenv.Load()

	c := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "dev"),
		DatabaseDSN:       mustEnv("DATABASE_DSN"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		JWTSecret:         mustEnv("JWT_SECRET"),
		JWTTTLHours:       getEnvInt("JWT_TTL_HOURS", 24),
		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPPort:          getEnvInt("SMTP_PORT", 587),
		SMTPUser:          os.Getenv("SMTP_USER"),
		SMTPPass:          os.Getenv("SMTP_PASS"),
		FromEmail:         os.Getenv("FROM_EMAIL"),
		OTPLength:         getEnvInt("OTP_LENGTH", 6),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		AuthRatePerMinute: getEnvInt("AUTH_RATE_PER_MIN", 30),
	}
	return c
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing env: %s", k)
	}
	return v
}
