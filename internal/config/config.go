package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL     string
	HTTPAddr        string
	ShutdownTimeout int // seconds
	JWTSecret       string

	// Zoho CRM
	ZohoClientID     string
	ZohoClientSecret string
	ZohoRefreshToken string
	ZohoAccountsURL  string
	ZohoAPIURL       string
	ZohoRedirectURL  string

	// Gmail API (sync reports)
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	GmailUser         string
	SyncReportTo      string

	SyncInterval int // minutes, 0 disables scheduled sync
	SyncLimit    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error in production)
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	jwtSecret := os.Getenv("PORTAL_JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("PORTAL_JWT_SECRET is required")
	}

	zohoClientID := os.Getenv("ZOHO_CLIENT_ID")
	zohoClientSecret := os.Getenv("ZOHO_CLIENT_SECRET")
	if zohoClientID == "" || zohoClientSecret == "" {
		fmt.Println("Warning: ZOHO_CLIENT_ID or ZOHO_CLIENT_SECRET not set, Zoho sync will not work")
	}

	gmailClientID := os.Getenv("GMAIL_CLIENT_ID")
	gmailClientSecret := os.Getenv("GMAIL_CLIENT_SECRET")
	gmailRefreshToken := os.Getenv("GMAIL_REFRESH_TOKEN")
	syncReportTo := os.Getenv("SYNC_REPORT_TO")
	if syncReportTo != "" && (gmailClientID == "" || gmailClientSecret == "" || gmailRefreshToken == "") {
		fmt.Println("Warning: SYNC_REPORT_TO set but Gmail credentials are incomplete, sync reports will not be sent")
	}

	syncInterval, err := intEnv("SYNC_INTERVAL_MINUTES", 0)
	if err != nil {
		return nil, err
	}
	syncLimit, err := intEnv("SYNC_LIMIT", 10000)
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:       dbURL,
		HTTPAddr:          stringEnv("HTTP_ADDR", ":8080"),
		ShutdownTimeout:   30,
		JWTSecret:         jwtSecret,
		ZohoClientID:      zohoClientID,
		ZohoClientSecret:  zohoClientSecret,
		ZohoRefreshToken:  os.Getenv("ZOHO_REFRESH_TOKEN"),
		ZohoAccountsURL:   stringEnv("ZOHO_ACCOUNTS_URL", "https://accounts.zoho.com"),
		ZohoAPIURL:        stringEnv("ZOHO_API_URL", "https://www.zohoapis.com"),
		ZohoRedirectURL:   os.Getenv("ZOHO_REDIRECT_URL"),
		GmailClientID:     gmailClientID,
		GmailClientSecret: gmailClientSecret,
		GmailRefreshToken: gmailRefreshToken,
		GmailUser:         os.Getenv("GMAIL_USER"),
		SyncReportTo:      syncReportTo,
		SyncInterval:      syncInterval,
		SyncLimit:         syncLimit,
	}, nil
}

// ReportsEnabled reports whether sync summaries can be mailed out
func (c *Config) ReportsEnabled() bool {
	return c.SyncReportTo != "" && c.GmailClientID != "" && c.GmailClientSecret != "" && c.GmailRefreshToken != ""
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}
