package config

import (
	"os"
	"strconv"
)

type Config struct {
	Addr    string
	BaseURL string
	DBPath  string

	IDLength      int
	PathMaxLen    int
	QRSize        int
	ScanQueueSize int

	CreatePerMinute   int
	RedirectPerMinute int
}

func Load() Config {
	return Config{
		Addr:    getEnv("ADDR", ":8080"),
		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),
		DBPath:  getEnv("DB_PATH", "deeplinkqr.db"),

		IDLength:      8,
		PathMaxLen:    64,
		QRSize:        256,
		ScanQueueSize: getEnvInt("SCAN_QUEUE_SIZE", 256),

		CreatePerMinute:   getEnvInt("CREATE_RATE_LIMIT", 10),
		RedirectPerMinute: getEnvInt("REDIRECT_RATE_LIMIT", 100),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
