package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dandantas/physicsai/internal/llm"
)

// Config holds all application configuration
type Config struct {
	// HTTP Server Configuration
	HTTPPort         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration

	// Gemini Configuration
	GeminiAPIKey      string
	GeminiModel       string
	GeminiBaseURL     string
	GeminiTemperature float64
	GeminiMaxTokens   int
	GeminiTimeout     time.Duration

	// Cloudinary Configuration
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	UploadTimeout       time.Duration

	// Render Configuration
	RenderMaxAttempts int
	RenderTimeout     time.Duration
	RenderWorkRoot    string
	RepairStrict      bool

	// MongoDB Configuration (optional render-history archive)
	MongoURI      string
	MongoDatabase string
	MongoTimeout  time.Duration

	// Logging Configuration
	LogLevel  string
	LogFormat string

	// CORS Configuration
	CORSAllowedOrigins   string
	CORSAllowedMethods   string
	CORSAllowedHeaders   string
	CORSAllowCredentials bool
	CORSMaxAge           int

	// Sweeper Configuration
	SweeperEnabled  bool
	SweeperSchedule string
	SweeperMaxAge   time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	return &Config{
		// HTTP Server
		HTTPPort:         getEnv("HTTP_PORT", "8000"),
		HTTPReadTimeout:  getDurationEnv("HTTP_READ_TIMEOUT_SEC", 30) * time.Second,
		HTTPWriteTimeout: getDurationEnv("HTTP_WRITE_TIMEOUT_SEC", 300) * time.Second,

		// Gemini
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-pro"),
		GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiTemperature: getFloatEnv("GEMINI_TEMPERATURE", 0.2),
		GeminiMaxTokens:   getIntEnv("GEMINI_MAX_TOKENS", 8000),
		GeminiTimeout:     getDurationEnv("GEMINI_TIMEOUT_SEC", 90) * time.Second,

		// Cloudinary
		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "physicsai"),
		UploadTimeout:       getDurationEnv("UPLOAD_TIMEOUT_SEC", 60) * time.Second,

		// Render
		RenderMaxAttempts: getIntEnv("RENDER_MAX_ATTEMPTS", 3),
		RenderTimeout:     getDurationEnv("RENDER_TIMEOUT_SEC", 120) * time.Second,
		RenderWorkRoot:    getEnv("RENDER_WORK_ROOT", ""),
		RepairStrict:      getBoolEnv("RENDER_REPAIR_STRICT", false),

		// MongoDB (archive disabled when MONGO_URI is empty)
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "physicsai"),
		MongoTimeout:  getDurationEnv("MONGO_TIMEOUT_SEC", 10) * time.Second,

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// CORS
		CORSAllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "*"),
		CORSAllowedMethods:   getEnv("CORS_ALLOWED_METHODS", "GET, POST, OPTIONS"),
		CORSAllowedHeaders:   getEnv("CORS_ALLOWED_HEADERS", "*"),
		CORSAllowCredentials: getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
		CORSMaxAge:           getIntEnv("CORS_MAX_AGE", 3600),

		// Sweeper
		SweeperEnabled:  getBoolEnv("SWEEPER_ENABLED", true),
		SweeperSchedule: getEnv("SWEEPER_SCHEDULE", "@hourly"),
		SweeperMaxAge:   getDurationEnv("SWEEPER_MAX_AGE_SEC", 6*3600) * time.Second,
	}
}

// Validate checks that credentials the service cannot run without are present.
// Failing at startup beats a deferred opaque failure mid-request.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
		return fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET must all be set")
	}
	if c.RenderMaxAttempts < 1 {
		return fmt.Errorf("RENDER_MAX_ATTEMPTS must be at least 1")
	}
	if worst := c.SimulateWorstCase(); c.HTTPWriteTimeout <= worst {
		return fmt.Errorf("HTTP_WRITE_TIMEOUT_SEC (%s) must exceed the worst-case generation time (%s); otherwise slow generations succeed server-side but the client never receives the job id", c.HTTPWriteTimeout, worst)
	}
	return nil
}

// SimulateWorstCase is the longest a synchronous generation request can take:
// every retry attempt running into the gateway timeout, plus the backoff
// sleeps between attempts. The HTTP write timeout must stay above this or the
// connection is cut mid-response, orphaning the render job.
func (c *Config) SimulateWorstCase() time.Duration {
	return c.GeminiTimeout*time.Duration(llm.DefaultMaxAttempts) +
		3*llm.DefaultBaseDelay
}

// ArchiveEnabled reports whether the optional render-history archive is configured
func (c *Config) ArchiveEnabled() bool {
	return c.MongoURI != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
		log.Printf("Warning: Invalid float value for %s, using default %g", key, defaultValue)
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return time.Duration(intVal)
		}
		log.Printf("Warning: Invalid duration value for %s, using default %d", key, defaultValue)
	}
	return time.Duration(defaultValue)
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
	}
	return defaultValue
}
