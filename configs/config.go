package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          int
	JWTSecret     string
	TokenTTLHours int
	SeedDemo      bool
	DBHost        string
	DBPort        int
	DBUser        string
	DBPassword    string
	DBName        string
	RedisHost     string
	RedisPort     int
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	return Config{
		Port:          envInt("PORT", 3000),
		JWTSecret:     envString("JWT_SECRET", "your-secret-key-change-in-production"),
		TokenTTLHours: envInt("TOKEN_TTL_HOURS", 24),
		SeedDemo:      os.Getenv("SEED_DEMO") != "false",
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        envInt("DB_PORT", 5432),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     envInt("REDIS_PORT", 6379),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
