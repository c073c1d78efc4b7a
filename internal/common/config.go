package common

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Extract   ExtractConfig
	LLM       LLMConfig
	Gateway   GatewayConfig
	Assistant AssistantConfig
	System    SystemConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	GRPCAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds the analysis history store configuration
type DatabaseConfig struct {
	DSN          string
	MaxOpenConns int
	DialTimeout  time.Duration
}

// ExtractConfig holds PDF text/raster extraction configuration
type ExtractConfig struct {
	Pdftoppm  string
	DPI       int
	MaxPages  int
	TempDir   string
	Tesseract string // empty disables OCR of scanned documents
	OCRLang   string
}

// LLMConfig holds compliance analyzer configuration
type LLMConfig struct {
	Provider      string // "openai" | "vertex"
	Model         string
	APIKey        string
	BaseURL       string
	Temperature   float32
	MaxTokens     int
	Timeout       time.Duration
	VertexProject string
	VertexRegion  string
	VertexModel   string
}

// GatewayConfig holds the authority/terminal/agency API configuration
type GatewayConfig struct {
	Simulate     bool
	APIKey       string
	CapitaniaURL string
	TerminalURL  string
	AgenciaURL   string
	Timeout      time.Duration
}

// AssistantConfig holds the scheduling assistant webhook configuration
type AssistantConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// SystemConfig holds process-wide limits
type SystemConfig struct {
	MaxFileSizeMB    int
	MaxNotifications int
	RulesFile        string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string // "json" | "text"
}

// LoadConfig loads configuration from environment variables. A .env file in the
// working directory is read first; variables already set in the environment win.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
			GRPCAddr:        getEnv("GRPC_ADDR", ":9090"),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 60*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 90*time.Second),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			DSN:          getEnv("DB_DSN", "file:port?mode=memory&cache=shared"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 4),
			DialTimeout:  getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Extract: ExtractConfig{
			Pdftoppm:  getEnv("PDFTOPPM", "pdftoppm"),
			DPI:       getEnvAsInt("RENDER_DPI", 200),
			MaxPages:  getEnvAsInt("RENDER_MAX_PAGES", 3),
			TempDir:   getEnv("RENDER_TMP_DIR", ""),
			Tesseract: getEnv("TESSERACT", ""),
			OCRLang:   getEnv("OCR_LANG", "por"),
		},
		LLM: LLMConfig{
			Provider:      strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
			Model:         getEnv("OPENAI_MODEL", "gpt-4o"),
			APIKey:        getEnv("OPENAI_API_KEY", ""),
			BaseURL:       getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature:   getEnvAsFloat32("OPENAI_TEMPERATURE", 0.1),
			MaxTokens:     getEnvAsInt("OPENAI_MAX_TOKENS", 1000),
			Timeout:       getEnvAsDuration("AI_TIMEOUT", 30*time.Second),
			VertexProject: getEnv("VERTEX_PROJECT", ""),
			VertexRegion:  getEnv("VERTEX_REGION", "us-central1"),
			VertexModel:   getEnv("VERTEX_MODEL", "gemini-1.5-pro"),
		},
		Gateway: GatewayConfig{
			Simulate:     getEnvAsBool("GATEWAY_SIMULATE", true),
			APIKey:       getEnv("AMIGU_API_KEY", ""),
			CapitaniaURL: getEnv("CAPITANIA_URL", "https://api.hackathon.souamigu.org.br/capitania-portos"),
			TerminalURL:  getEnv("TERMINAL_URL", "https://api.hackathon.souamigu.org.br/terminal-portuario"),
			AgenciaURL:   getEnv("AGENCIA_URL", "https://api.hackathon.souamigu.org.br/agencia-maritima"),
			Timeout:      getEnvAsDuration("GATEWAY_TIMEOUT", 15*time.Second),
		},
		Assistant: AssistantConfig{
			WebhookURL: getEnv("ASSISTANT_WEBHOOK_URL", ""),
			Timeout:    getEnvAsDuration("ASSISTANT_TIMEOUT", 30*time.Second),
		},
		System: SystemConfig{
			MaxFileSizeMB:    getEnvAsInt("MAX_FILE_SIZE_MB", 25),
			MaxNotifications: getEnvAsInt("MAX_NOTIFICATIONS", 10),
			RulesFile:        getEnv("RULES_FILE", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// AnalyzerConfigured reports whether credentials for the selected AI provider are present.
func (c *Config) AnalyzerConfigured() bool {
	switch c.LLM.Provider {
	case "vertex":
		return c.LLM.VertexProject != ""
	default:
		return c.LLM.APIKey != ""
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_DSN is required", ErrInvalidInput)
	}
	switch c.LLM.Provider {
	case "openai", "vertex":
	default:
		return NewAppError("CONFIG_ERROR", "LLM_PROVIDER must be openai or vertex", ErrInvalidInput)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return NewAppError("CONFIG_ERROR", "OPENAI_TEMPERATURE must be within 0..2", ErrInvalidInput)
	}
	if c.Extract.DPI <= 0 {
		return NewAppError("CONFIG_ERROR", "RENDER_DPI must be positive", ErrInvalidInput)
	}
	if c.System.MaxFileSizeMB <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_FILE_SIZE_MB must be positive", ErrInvalidInput)
	}
	if !c.Gateway.Simulate && c.Gateway.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "AMIGU_API_KEY is required when GATEWAY_SIMULATE=false", ErrInvalidInput)
	}
	return nil
}

// NewLogger builds the process logger from LogConfig, writing to stdout.
func (c LogConfig) NewLogger() *slog.Logger {
	return c.NewLoggerTo(os.Stdout)
}

// NewLoggerTo is NewLogger with an explicit destination.
func (c LogConfig) NewLoggerTo(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
