// Package config builds the service configuration once at startup. The
// resulting *Config is passed explicitly to every component that needs it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreCloudinary = "cloudinary"
	StoreMinio      = "minio"
)

// Config holds runtime settings for the API process.
type Config struct {
	Addr           string
	AllowedOrigin  string
	JWTSecret      string
	TokenTTL       time.Duration
	MaxUploadBytes int64

	// AdminSignupCode must be presented at signup to receive the admin role.
	// Empty disables admin self-registration.
	AdminSignupCode string

	ObjectStore string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string

	RedisAddr      string
	RedisPassword  string
	AuthRateLimit  int
	AuthRateWindow time.Duration

	StripeSecretKey     string
	StripeWebhookSecret string
	FrontendURL         string
	InvoiceDir          string
}

// FromEnv reads the configuration from environment variables, applying defaults.
func FromEnv() *Config {
	return &Config{
		Addr:            ":" + getenv("PORT", "3000"),
		AllowedOrigin:   getenv("CLIENT_URL", "https://tohfabox25.vercel.app"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        getDuration("JWT_TTL", time.Hour),
		MaxUploadBytes:  int64(getInt("MAX_UPLOAD_MB", 100)) << 20,
		AdminSignupCode: os.Getenv("ADMIN_SIGNUP_CODE"),

		ObjectStore: strings.ToLower(getenv("OBJECT_STORE", StoreCloudinary)),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		MinioEndpoint:  getenv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getenv("MINIO_BUCKET", "media"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		MinioPublicURL: os.Getenv("MINIO_PUBLIC_URL"),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		AuthRateLimit:  getInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow: getDuration("AUTH_RATE_WINDOW", time.Minute),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		FrontendURL:         getenv("FRONTEND_URL", "http://localhost:5173"),
		InvoiceDir:          getenv("INVOICE_DIR", "./invoices"),
	}
}

// Validate reports settings the process cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	switch c.ObjectStore {
	case StoreCloudinary:
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			return errors.New("cloudinary credentials are required")
		}
	case StoreMinio:
		if c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return errors.New("minio credentials are required")
		}
	default:
		return fmt.Errorf("unknown OBJECT_STORE %q", c.ObjectStore)
	}
	return nil
}

// PaymentsEnabled reports whether the Stripe routes should be mounted.
func (c *Config) PaymentsEnabled() bool { return c.StripeSecretKey != "" }

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}
