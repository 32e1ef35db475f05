package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	OCR   OCRConfig
	LLM   LLMConfig
	Store StoreConfig
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	TesseractLang string
	DPI           int
	MaxPages      int
	TessdataDir   string
}

// LLMConfig holds configuration for the structured-extraction service
type LLMConfig struct {
	BaseURL       string
	Model         string
	APIKey        string
	Temperature   float32
	Timeout       time.Duration
	LenientFields bool
}

// StoreConfig holds configuration for the optional results history store
type StoreConfig struct {
	DSN string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			TesseractLang: getEnv("OCR_LANG", "eng"),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 0),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
		},
		LLM: LLMConfig{
			BaseURL:       getEnv("LLM_BASE_URL", "http://localhost:1234/v1"),
			Model:         getEnv("LLM_MODEL", "fused_3b"),
			APIKey:        getEnv("LLM_API_KEY", "lm-studio"),
			Temperature:   getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			Timeout:       getEnvAsDuration("LLM_TIMEOUT", 45*time.Second),
			LenientFields: getEnvAsBool("LLM_LENIENT_FIELDS", true),
		},
		Store: StoreConfig{
			DSN: getEnv("DOCPROC_DB", ""),
		},
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.LLM.BaseURL == "" {
		return NewAppError("CONFIG_ERROR", "LLM_BASE_URL is required", ErrInvalidInput)
	}
	if c.LLM.Model == "" {
		return NewAppError("CONFIG_ERROR", "LLM_MODEL is required", ErrInvalidInput)
	}
	if c.OCR.DPI <= 0 {
		return NewAppError("CONFIG_ERROR", "OCR_DPI must be positive", ErrInvalidInput)
	}
	return nil
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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
