package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 服务配置 (全部来自环境变量, 可由 .env 文件提供)
type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret string
	JWTTTL    time.Duration

	MaxTurbinesPerString int
	AutoRoute            bool
	CORSOrigins          []string
}

// LoadConfig 加载配置, .env 不存在时直接使用环境变量和默认值
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件, 使用环境变量和默认值")
	}

	return Config{
		Port:       getEnvOrDefault("PORT", "8080"),
		DBHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DBPort:     getEnvOrDefault("DB_PORT", "5432"),
		DBUser:     getEnvOrDefault("DB_USER", "windfarm"),
		DBPassword: getEnvOrDefault("DB_PASSWORD", "windfarm"),
		DBName:     getEnvOrDefault("DB_NAME", "windfarm"),
		DBSSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),

		JWTSecret: getEnvOrDefault("JWT_SECRET", "change-me-in-production"),
		JWTTTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,

		MaxTurbinesPerString: getEnvInt("MAX_TURBINES_PER_STRING", 5),
		AutoRoute:            getEnvOrDefault("AUTO_ROUTE", "true") == "true",
		CORSOrigins:          splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
	}
}

// getEnvOrDefault 获取环境变量，如果不存在则返回默认值
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("环境变量 %s=%q 不是整数, 使用默认值 %d", key, raw, defaultVal)
		return defaultVal
	}
	return v
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
