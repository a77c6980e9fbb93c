package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration loaded from environment variables.
// It is constructed once at startup and passed by reference; nothing
// re-reads the environment afterwards.
type Config struct {
	Port                 string
	StatePath            string
	DatabaseURL          string
	OpenAIAPIKey         string
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioWhatsAppNumber string
	CaregiverNumber      string
	CaregiverTargetID    string
	WatchInterval        time.Duration
	LocalTimezone        *time.Location
}

// Load reads configuration values and prepares defaults where applicable.
func Load() *Config {
	_ = godotenv.Load()

	port := getenvDefault("PORT", "8080")
	statePath := os.Getenv("MEDTRACK_STATE_PATH")
	databaseURL := os.Getenv("DATABASE_URL")
	openAIKey := os.Getenv("OPENAI_API_KEY")
	accountSID := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	whatsAppNumber := os.Getenv("TWILIO_WHATSAPP_NUMBER")
	caregiverNumber := os.Getenv("CAREGIVER_WHATSAPP_NUMBER")
	caregiverTargetID := os.Getenv("CAREGIVER_TARGET_ID")
	watchSeconds := ParseIntEnv("WATCH_INTERVAL_SECONDS", 2)
	timezoneName := getenvDefault("LOCAL_TIMEZONE", "Local")

	location, err := time.LoadLocation(timezoneName)
	if err != nil {
		log.Printf("config: invalid LOCAL_TIMEZONE %q, defaulting to system local: %v", timezoneName, err)
		location = time.Local
	}

	return &Config{
		Port:                 port,
		StatePath:            statePath,
		DatabaseURL:          databaseURL,
		OpenAIAPIKey:         openAIKey,
		TwilioAccountSID:     accountSID,
		TwilioAuthToken:      authToken,
		TwilioWhatsAppNumber: whatsAppNumber,
		CaregiverNumber:      caregiverNumber,
		CaregiverTargetID:    caregiverTargetID,
		WatchInterval:        time.Duration(watchSeconds) * time.Second,
		LocalTimezone:        location,
	}
}

// CaregiverMode reports whether this process runs as a caregiver
// following another patient's document.
func (c *Config) CaregiverMode() bool {
	return c.CaregiverTargetID != ""
}

func getenvDefault(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	return value
}

// ParseIntEnv returns the integer value for an environment variable or the provided default.
func ParseIntEnv(key string, def int) int {
	value := os.Getenv(key)
	if value == "" {
		return def
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("config: unable to parse %s=%q as int: %v", key, value, err)
		return def
	}
	return parsed
}
