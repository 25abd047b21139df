package config

import "os"

type Config struct {
	MongoURI   string
	MongoDB    string
	RedisAddr  string
	HTTPPort   string
	JWTSecret  string
	PolicyFile string
}

func Load() *Config {
	return &Config{
		MongoURI:   getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:    getEnv("MONGO_DB", "prepdeck"),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:   getEnv("HTTP_PORT", "8080"),
		JWTSecret:  getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		PolicyFile: getEnv("POLICY_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
