package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"dispatch_crm_go/services/telephony"

	"github.com/joho/godotenv"
)

const (
	// DefaultPollInterval is the wait between report status checks
	DefaultPollInterval = 2 * time.Second
	// DefaultPollAttempts bounds the report status checks (15 x 2s = 30s)
	DefaultPollAttempts = 15
)

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string
	UploadDir   string
	// Hosted database (libsql / Turso)
	TursoDatabaseURL string
	TursoAuthToken   string
	// Telephony reporting API (Telnyx)
	TelnyxAPIKey         string
	TelnyxAPIBaseURL     string
	TelnyxConnectionID   string
	CallSyncPollInterval time.Duration
	CallSyncMaxAttempts  int
	CallSyncCron         string // Empty disables the scheduled sync
	CallSyncTimezone     string
	// SIP softphone credentials, injected into the session adapter
	SIPUsername    string
	SIPPassword    string
	SIPDisplayName string
	SIPAutoRecord  bool
	DeskPhoneHost  string
	// Email (Resend)
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	EmailTestMode bool // When true, emails are logged instead of sent
	// Cloudflare R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
	// Documents
	ChromePath     string
	DispatcherName string
	CompanyName    string
	// Other
	AllowedOrigins []string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		DBPath:               getEnv("DB_PATH", "db/app.db"),
		Environment:          getEnv("ENVIRONMENT", "development"),
		UploadDir:            getEnv("UPLOAD_DIR", "static/uploads"),
		TursoDatabaseURL:     getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:       getEnv("TURSO_AUTH_TOKEN", ""),
		TelnyxAPIKey:         getEnv("TELNYX_API_KEY", ""),
		TelnyxAPIBaseURL:     getEnv("TELNYX_API_BASE_URL", telephony.DefaultBaseURL),
		TelnyxConnectionID:   getEnv("TELNYX_CONNECTION_ID", ""),
		CallSyncPollInterval: getEnvDuration("CALL_SYNC_POLL_INTERVAL", DefaultPollInterval),
		CallSyncMaxAttempts:  getEnvInt("CALL_SYNC_MAX_ATTEMPTS", DefaultPollAttempts),
		CallSyncCron:         getEnv("CALL_SYNC_CRON", ""),
		CallSyncTimezone:     getEnv("CALL_SYNC_TIMEZONE", "America/Chicago"),
		SIPUsername:          getEnv("SIP_USERNAME", ""),
		SIPPassword:          getEnv("SIP_PASSWORD", ""),
		SIPDisplayName:       getEnv("SIP_DISPLAY_NAME", "Dispatcher"),
		SIPAutoRecord:        getEnvBool("SIP_AUTO_RECORD", false),
		DeskPhoneHost:        getEnv("DESK_PHONE_HOST", ""),
		ResendAPIKey:         getEnv("RESEND_API_KEY", ""),
		EmailFrom:            getEnv("EMAIL_FROM", "dispatch@example.com"),
		EmailFromName:        getEnv("EMAIL_FROM_NAME", "Dispatch Desk"),
		EmailTestMode:        getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
		R2AccountID:          getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:        getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey:    getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:         getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:          getEnv("R2_PUBLIC_URL", ""),
		ChromePath:           getEnv("CHROME_PATH", ""),
		DispatcherName:       getEnv("DISPATCHER_NAME", "Dispatcher"),
		CompanyName:          getEnv("COMPANY_NAME", "Dispatch Solutions"),
		AllowedOrigins:       strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// SIP returns the softphone credentials for the telephony session adapter
func (c *Config) SIP() telephony.SIPConfig {
	return telephony.SIPConfig{
		Username:    c.SIPUsername,
		Password:    c.SIPPassword,
		DisplayName: c.SIPDisplayName,
		AutoRecord:  c.SIPAutoRecord,
	}
}

// ReportClientOptions returns the reporting API settings for call reconciliation
func (c *Config) ReportClientOptions() telephony.ReportOptions {
	return telephony.ReportOptions{
		BaseURL:      c.TelnyxAPIBaseURL,
		APIKey:       c.TelnyxAPIKey,
		ConnectionID: c.TelnyxConnectionID,
		PollInterval: c.CallSyncPollInterval,
		MaxAttempts:  c.CallSyncMaxAttempts,
	}
}

// IsProduction reports whether the app runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("[WARNING] Invalid value for %s: %q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("[WARNING] Invalid duration for %s: %q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
