package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort string
	DataDir  string

	EventStore   string // "json" or "sqlite"
	SQLitePath   string
	CatalogFile  string
	HistoryLimit int

	TTSTimeout      time.Duration
	GoogleTTSAPIKey string
	LocalTTS        bool

	TelegramBotToken string
	TelegramChatID   string
	TelegramAPIURL   string

	JWTSecret string

	LogLevel  string
	LogFormat string
	LogFile   string
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = FromEnv()
}

// FromEnv reads the server settings from the process environment without
// touching .env files.
func FromEnv() Config {
	return Config{
		HTTPPort:         getEnv("HTTP_PORT", "8000"),
		DataDir:          getEnv("DATA_DIR", "."),
		EventStore:       strings.ToLower(getEnv("EVENT_STORE", "json")),
		SQLitePath:       getEnv("SQLITE_PATH", "events.db"),
		CatalogFile:      getEnv("CATALOG_FILE", ""),
		HistoryLimit:     getEnvAsInt("HISTORY_LIMIT", 1000),
		TTSTimeout:       getEnvAsDuration("TTS_TIMEOUT", 5*time.Second),
		GoogleTTSAPIKey:  getEnv("GOOGLE_TTS_API_KEY", ""),
		LocalTTS:         getEnvAsBool("LOCAL_TTS", true),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		TelegramAPIURL:   getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", "json")),
		LogFile:          getEnv("LOG_FILE", ""),
	}
}

// ButtonBox holds the settings of the remote trigger client.
type ButtonBox struct {
	ServerURL string
	DeviceID  string
	UserID    string
	Language  string
	GPIORoot  string
	LogLevel  string
	LogFormat string
}

func LoadButtonBox() ButtonBox {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	return ButtonBox{
		ServerURL: getEnv("BUTTONBOX_SERVER_URL", "http://127.0.0.1:8000"),
		DeviceID:  getEnv("BUTTONBOX_DEVICE_ID", "esp32_hackathon_1"),
		UserID:    getEnv("BUTTONBOX_USER_ID", "default"),
		Language:  getEnv("BUTTONBOX_LANGUAGE", "en"),
		GPIORoot:  getEnv("BUTTONBOX_GPIO_ROOT", "/sys/class/gpio"),
		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "console")),
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("5s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.ParseFloat(valueStr, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}
