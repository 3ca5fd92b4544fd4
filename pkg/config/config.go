package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	AppEnv       string
	IsStaging    bool
	IsProduction bool

	Port      string
	JWTSecret string

	// MySQLDSN selects the production database; when empty the server falls
	// back to a local sqlite file (SQLitePath).
	MySQLDSN   string
	SQLitePath string

	GeminiAPIKey string
	GeminiModel  string
	// IsVisionEnabled gates the AI listing-draft endpoint (enum: "1" or "0").
	IsVisionEnabled bool

	// runtime tunables
	RateLimitWindowSeconds int
	RateLimitCapacity      int
	UserConcurrencyLimit   int
	ItemsCacheTTLSeconds   int
	CacheMaxItems          int
)

// loadAppEnv loads .env only outside production; production reads the host
// environment directly.
func loadAppEnv() {
	AppEnv = os.Getenv("APP_ENV")
	if AppEnv == "production" {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file loaded: %v", err)
	}
}

func init() {
	loadAppEnv()

	AppEnv = os.Getenv("APP_ENV")
	if AppEnv == "" {
		AppEnv = "staging"
	}
	IsStaging = AppEnv == "staging"
	IsProduction = AppEnv == "production"

	JWTSecret = os.Getenv("JWT_SECRET_KEY")
	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "5000"
	}

	MySQLDSN = os.Getenv("MYSQL_DSN")
	SQLitePath = os.Getenv("SQLITE_PATH")
	if SQLitePath == "" {
		SQLitePath = "app.db"
	}

	GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	GeminiModel = os.Getenv("GEMINI_MODEL")
	if GeminiModel == "" {
		GeminiModel = "gemini-2.0-flash"
	}
	IsVisionEnabled = os.Getenv("IS_VISION_ENABLED") == "1"

	RateLimitWindowSeconds = atoiOr(os.Getenv("RATE_LIMIT_WINDOW_SECONDS"), 10)
	RateLimitCapacity = atoiOr(os.Getenv("RATE_LIMIT_CAPACITY"), 5)
	UserConcurrencyLimit = atoiOr(os.Getenv("USER_CONCURRENCY_LIMIT"), 3)
	ItemsCacheTTLSeconds = atoiOr(os.Getenv("ITEMS_CACHE_TTL_SECONDS"), 30)
	CacheMaxItems = atoiOr(os.Getenv("CACHE_MAX_ITEMS"), 500)

	if IsProduction && JWTSecret == "" {
		log.Fatal("JWT_SECRET_KEY must be set in production")
	}

	log.Printf("[config] AppEnv=%s IsStaging=%v IsProduction=%v", AppEnv, IsStaging, IsProduction)
	log.Printf("[config] IsVisionEnabled=%v GeminiAPIKeyPresent=%v GeminiModel=%s", IsVisionEnabled, GeminiAPIKey != "", GeminiModel)
	log.Printf("[config] RateLimit window=%ds capacity=%d userConc=%d itemsCacheTTL=%ds cacheMax=%d",
		RateLimitWindowSeconds, RateLimitCapacity, UserConcurrencyLimit, ItemsCacheTTLSeconds, CacheMaxItems)
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
