package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "secret"

type Config struct {
	Port        string
	RelayPort   string
	AppEnv      string
	LogLevel    string
	LogFormat   string
	FrontendURL string
	LoginPath   string

	// Proxies whose X-Forwarded-For is believed. Empty means client IP is the
	// socket address.
	TrustedProxies []string

	// Report store
	StoreDriver string
	MongoURI    string
	MongoDB     string

	// Photo storage
	StorageDriver            string
	CloudinaryCloudName      string
	CloudinaryAPIKey         string
	CloudinaryAPISecret      string
	CloudinaryUploadFolder   string
	S3Region                 string
	S3Bucket                 string
	S3Endpoint               string
	S3AccessKeyID            string
	S3SecretAccessKey        string
	S3PublicURL              string
	DefaultWalletAddress     string
	MaxImageBytes            int64

	// Reviewer identity
	FirebaseServiceAccountPath string
	FirebaseAPIKey             string
	JWTSecret                  string
	SessionTTLHours            int

	// Outbound collaborators
	RelayURL    string
	RelayAPIKey string
	AnchorURL   string

	// Relay providers
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	TwilioToNumber   string
	TwilioVoiceURL   string
	SMTPHost         string
	SMTPPort         int
	EmailUser        string
	EmailPassword    string
	EmailRecipient   string

	// Rate limiting, ulule formatted rates ("5-M" = 5 per minute)
	RedisURL        string
	RateLimitRelay  string
	RateLimitSubmit string
	RateLimitLogin  string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		RelayPort:   getEnv("RELAY_PORT", "2000"),
		AppEnv:      getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		LoginPath:   getEnv("LOGIN_PATH", "/login"),

		TrustedProxies: getEnvList("TRUSTED_PROXIES"),

		StoreDriver: getEnv("STORE_DRIVER", "mongo"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "civicguard"),

		StorageDriver:          getEnv("STORAGE_DRIVER", "cloudinary"),
		CloudinaryCloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:       getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "civicguard"),
		S3Region:               getEnv("S3_REGION", "us-east-1"),
		S3Bucket:               getEnv("S3_BUCKET", ""),
		S3Endpoint:             getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:          getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:      getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3PublicURL:            getEnv("S3_PUBLIC_URL", ""),
		DefaultWalletAddress:   getEnv("DEFAULT_WALLET_ADDRESS", "0xCbB7Fc4A9CE612C65DcB0151F29b67Cf66a4C2f2"),
		MaxImageBytes:          int64(getEnvInt("MAX_IMAGE_MB", 10)) * 1024 * 1024,

		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", "firebase-service-account.json"),
		FirebaseAPIKey:             getEnv("FIREBASE_API_KEY", ""),
		JWTSecret:                  getEnv("JWT_SECRET", DefaultJWTSecret),
		SessionTTLHours:            getEnvInt("SESSION_TTL_HOURS", 12),

		RelayURL:    strings.TrimRight(getEnv("RELAY_URL", "http://localhost:2000"), "/"),
		RelayAPIKey: getEnv("RELAY_API_KEY", ""),
		AnchorURL:   strings.TrimRight(getEnv("ANCHOR_URL", ""), "/"),

		TwilioAccountSID: getEnv("TWILIO_ACC_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		TwilioToNumber:   getEnv("TWILIO_TO_NUMBER", ""),
		TwilioVoiceURL:   getEnv("TWILIO_VOICE_URL", "https://demo.twilio.com/welcome/voice/"),
		SMTPHost:         getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:         getEnvInt("SMTP_PORT", 587),
		EmailUser:        getEnv("EMAIL_USER", ""),
		EmailPassword:    getEnv("EMAIL_PASSWORD", ""),
		EmailRecipient:   getEnv("EMAIL_RECIPIENT", ""),

		RedisURL:        getEnv("REDIS_URL", ""),
		RateLimitRelay:  getEnv("RATE_LIMIT_RELAY", "5-M"),
		RateLimitSubmit: getEnv("RATE_LIMIT_SUBMIT", "20-M"),
		RateLimitLogin:  getEnv("RATE_LIMIT_LOGIN", "10-M"),
	}
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ValidateAPI rejects settings the api binary must not run with in production.
func (c *Config) ValidateAPI() error {
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret) {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

// ValidateRelay rejects settings the relay binary must not run with in production.
func (c *Config) ValidateRelay() error {
	if c.IsProduction() && c.RelayAPIKey == "" {
		return errors.New("RELAY_API_KEY is required in production")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
