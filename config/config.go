package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yeremiapane/honda-dealer/models"
	"github.com/yeremiapane/honda-dealer/services"
	"github.com/yeremiapane/honda-dealer/utils"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DBDriver string // mysql, postgres or sqlite
	DBDSN    string

	JWTSecret string
	TokenTTL  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CatalogTTL    time.Duration

	KafkaBrokers     []string
	KafkaTopicPrefix string

	UploadDir      string
	SeedFile       string
	AllowedOrigins []string

	RateLimit float64
	RateBurst int

	PaymentExpiry   time.Duration
	SweepInterval   time.Duration
	PaymentSettings services.PaymentSettings

	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Load reads .env (when present) and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Debugf(".env file not loaded: %v", err)
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBDSN:    getEnv("DB_DSN", "honda_dealer.db"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getDuration("TOKEN_TTL", 24*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),
		CatalogTTL:    getDuration("CATALOG_CACHE_TTL", 5*time.Minute),

		KafkaBrokers:     getList("KAFKA_BROKERS"),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", "honda-dealer."),

		UploadDir:      getEnv("UPLOAD_DIR", "public/uploads"),
		SeedFile:       getEnv("SEED_FILE", ""),
		AllowedOrigins: getList("CORS_ALLOWED_ORIGINS"),

		RateLimit: getFloat("RATE_LIMIT", 5),
		RateBurst: getInt("RATE_BURST", 10),

		PaymentExpiry: getDuration("PAYMENT_EXPIRY", 24*time.Hour),
		SweepInterval: getDuration("PAYMENT_SWEEP_INTERVAL", 5*time.Minute),

		AdminName:     getEnv("ADMIN_NAME", "Administrator"),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	cfg.PaymentSettings = services.PaymentSettings{
		Expiry: cfg.PaymentExpiry,
		Bank: models.BankTransferDetails{
			BankName:      getEnv("BANK_NAME", "BCA"),
			AccountNumber: getEnv("BANK_ACCOUNT_NUMBER", "1234567890"),
			AccountHolder: getEnv("BANK_ACCOUNT_HOLDER", "PT Honda Dealer Indonesia"),
		},
		EWallet: models.EWalletDetails{
			WalletType:   getEnv("EWALLET_TYPE", "GoPay"),
			WalletNumber: getEnv("EWALLET_NUMBER", "081234567890"),
			WalletName:   getEnv("EWALLET_NAME", "Honda Dealer"),
		},
		QRMerchant:        getEnv("QR_MERCHANT_ID", "HONDA-DEALER"),
		CashPickupAddress: getEnv("CASH_PICKUP_ADDRESS", "Jl. Raya Honda No. 1, Jakarta"),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
