package config

import (
	"cardclash/internal/model"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// Question sources
const (
	QuestionsEmbedded = "embedded"
	QuestionsMongo    = "mongo"
)

type Config struct {
	Port   string
	AppEnv string

	StoreBackend      string
	DataDir           string
	StoreVerifyWrites bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI string
	MongoDB  string

	PostgresDSN string

	LeaderboardBackend string
	QuestionSource     string

	AdminUsername string
	AdminPassword string
	JWTSecret     string

	DisconnectGrace  time.Duration
	MatchHoldover    time.Duration
	MaxRooms         int
	MaxQueuePlayers  int
	TurnTimerSeconds int

	CORSAllowedOrigins []string
}

// Load reads .env when present, then the environment
func Load(logger *zap.Logger) *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not read .env", zap.Error(err))
	}

	return &Config{
		Port:   getEnv("PORT", "8080"),
		AppEnv: getEnv("APP_ENV", "production"),

		StoreBackend:      getEnv("STORE_BACKEND", BackendFile),
		DataDir:           getEnv("DATA_DIR", "./data"),
		StoreVerifyWrites: getEnvAsBool(logger, "STORE_VERIFY_WRITES", true),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt(logger, "REDIS_DB", 0),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "cardclash"),

		PostgresDSN: getEnv("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=cardclash port=5432 sslmode=disable"),

		LeaderboardBackend: getEnv("LEADERBOARD_BACKEND", "store"),
		QuestionSource:     getEnv("QUESTION_SOURCE", QuestionsEmbedded),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),

		DisconnectGrace:  getEnvAsDuration(logger, "DISCONNECT_GRACE", 5*time.Second),
		MatchHoldover:    getEnvAsDuration(logger, "MATCH_HOLDOVER", 30*time.Second),
		MaxRooms:         getEnvAsInt(logger, "MAX_ROOMS", 10),
		MaxQueuePlayers:  getEnvAsInt(logger, "MAX_QUEUE_PLAYERS", 20),
		TurnTimerSeconds: getEnvAsInt(logger, "TURN_TIMER_SECONDS", 60),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
}

// GameDefaults seeds the game config document from the environment
func (c *Config) GameDefaults() model.GameConfig {
	cfg := model.DefaultGameConfig()
	if c.MaxRooms > 0 {
		cfg.MaxRooms = c.MaxRooms
	}
	if c.MaxQueuePlayers > 0 {
		cfg.MaxQueuePlayers = c.MaxQueuePlayers
	}
	if c.TurnTimerSeconds > 0 {
		cfg.TurnTimerSeconds = c.TurnTimerSeconds
	}
	return cfg
}

// IsDevelopment reports whether APP_ENV selects development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(logger *zap.Logger, key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		logger.Warn("invalid integer, using default", zap.String("key", key), zap.String("value", valueStr), zap.Int("default", defaultValue))
		return defaultValue
	}
	return value
}

func getEnvAsBool(logger *zap.Logger, key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		logger.Warn("invalid boolean, using default", zap.String("key", key), zap.String("value", valueStr), zap.Bool("default", defaultValue))
		return defaultValue
	}
	return value
}

func getEnvAsDuration(logger *zap.Logger, key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		logger.Warn("invalid duration, using default", zap.String("key", key), zap.String("value", valueStr), zap.Duration("default", defaultValue))
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
