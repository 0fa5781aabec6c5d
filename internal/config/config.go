package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PresignGet redirects file downloads to time-limited pre-signed URLs
	// instead of streaming object bytes through the API.
	PresignGet bool
}

// StoreConfig holds settings for consumers of the document store API:
// the discovery client and the sitemap generator.
type StoreConfig struct {
	// BaseURL is the root of the document store API, e.g. https://api.filesgo.example.
	BaseURL string
	// FileBaseURL is prefixed to bare file/thumbnail storage keys. References
	// that already carry a URI scheme are passed through verbatim.
	FileBaseURL string
	// MaxRetries is the number of additional attempts after the first when
	// fetching a single document.
	MaxRetries int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost string
	Port    string
	// AdminAPIKey gates the upload/delete endpoints. Empty disables them.
	AdminAPIKey string
	// SiteBaseURL is the public site root used for canonical document URLs.
	SiteBaseURL string
	Database    DatabaseConfig
	MinIO       MinIOConfig
	Store       StoreConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:     getEnv("APP_HOST", "localhost:8080"),
		Port:        getEnv("PORT", "8080"), // default only for non-sensitive value
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
		SiteBaseURL: getEnv("SITE_BASE_URL", "http://localhost:8080"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:   getEnv("MINIO_ENDPOINT", ""),
			AccessKey:  getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:  getEnv("MINIO_SECRET_KEY", ""),
			Bucket:     getEnv("MINIO_BUCKET", ""),
			UseSSL:     getEnvBool("MINIO_USE_SSL", false),
			PresignGet: getEnvBool("MINIO_PRESIGN_GET", false),
		},
		Store: StoreConfig{
			BaseURL:     getEnv("STORE_BASE_URL", "http://localhost:8080"),
			FileBaseURL: getEnv("FILE_BASE_URL", ""),
			MaxRetries:  getEnvInt("STORE_MAX_RETRIES", 5),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
