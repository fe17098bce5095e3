package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	LogLevel    string
	Port        string
	DatabaseURL string
	JWTSecret   string

	StoragePath    string
	StorageBaseURL string
	GeoIPDBPath    string
	CatalogFile    string

	GeminiAPIKey        string
	GeminiTextModel     string
	GeminiImageModel    string
	CatalogToolsEnabled bool
	UpstreamTimeout     time.Duration
	BackgroundTimeout   time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	CORSOrigins      []string

	S3Bucket         string
	S3Region         string
	S3Endpoint       string
	S3PublicURL      string
	S3KeyPrefix      string
	S3ForcePathStyle bool

	TuningFile string
	Tuning     Tuning
}

// Tuning groups the knobs of the generation pipeline. Zero values mean the
// component default.
type Tuning struct {
	MaxToolIterations  int           `yaml:"max_tool_iterations"`
	CatalogLimit       int           `yaml:"catalog_limit"`
	ImagePromptBudget  int           `yaml:"image_prompt_budget"`
	PrimaryTick        time.Duration `yaml:"primary_tick"`
	FallbackTick       time.Duration `yaml:"fallback_tick"`
	BreakerFailures    int           `yaml:"breaker_failures"`
	BreakerOpenTimeout time.Duration `yaml:"breaker_open_timeout"`
	Stages             StageTuning   `yaml:"stages"`
	SimulatedSteps     []StepTuning  `yaml:"simulated_steps"`
}

// StageTuning sets the fixed progress percentages of a render.
type StageTuning struct {
	PreparingPrompt int `yaml:"preparing_prompt"`
	PromptReady     int `yaml:"prompt_ready"`
	GeneratingImage int `yaml:"generating_image"`
	ProcessingImage int `yaml:"processing_image"`
	ImageSaved      int `yaml:"image_saved"`
	Finalizing      int `yaml:"finalizing"`
}

// StepTuning is one cosmetic step shown while the image model works.
type StepTuning struct {
	Percentage int    `yaml:"percentage"`
	MessageKey string `yaml:"message_key"`
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		Port:        port,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		StoragePath:    getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL: getEnv("STORAGE_BASE_URL", "http://localhost:"+port+"/static"),
		GeoIPDBPath:    os.Getenv("GEOIP_DB_PATH"),
		CatalogFile:    os.Getenv("CATALOG_FILE"),

		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiTextModel:     getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		GeminiImageModel:    getEnv("GEMINI_IMAGE_MODEL", "imagen-4.0-generate-001"),
		CatalogToolsEnabled: getEnvBool("CATALOG_TOOLS_ENABLED", true),
		UpstreamTimeout:     getEnvSeconds("UPSTREAM_TIMEOUT_SECONDS", 0),
		BackgroundTimeout:   getEnvSeconds("BACKGROUND_TIMEOUT_SECONDS", 300),

		HTTPReadTimeout:  getEnvSeconds("HTTP_READ_TIMEOUT_SECONDS", 15),
		HTTPWriteTimeout: getEnvSeconds("HTTP_WRITE_TIMEOUT_SECONDS", 180),
		HTTPIdleTimeout:  getEnvSeconds("HTTP_IDLE_TIMEOUT_SECONDS", 60),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSOrigins:      splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3Region:         os.Getenv("S3_REGION"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3PublicURL:      os.Getenv("S3_PUBLIC_URL"),
		S3KeyPrefix:      os.Getenv("S3_KEY_PREFIX"),
		S3ForcePathStyle: getEnvBool("S3_FORCE_PATH_STYLE", false),

		TuningFile: os.Getenv("TUNING_FILE"),
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("PORT must be numeric, got %q", cfg.Port)
	}
	if cfg.UpstreamTimeout < 0 {
		return nil, fmt.Errorf("UPSTREAM_TIMEOUT_SECONDS must not be negative")
	}
	if cfg.TuningFile != "" {
		tuning, err := LoadTuning(cfg.TuningFile)
		if err != nil {
			return nil, err
		}
		cfg.Tuning = tuning
	}

	return cfg, nil
}

// LoadTuning reads a YAML tuning file.
func LoadTuning(path string) (Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("read tuning file: %w", err)
	}
	return ParseTuning(data)
}

// ParseTuning decodes and checks tuning YAML.
func ParseTuning(data []byte) (Tuning, error) {
	var t Tuning
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tuning{}, fmt.Errorf("parse tuning file: %w", err)
	}
	if t.MaxToolIterations < 0 || t.CatalogLimit < 0 || t.ImagePromptBudget < 0 || t.BreakerFailures < 0 {
		return Tuning{}, fmt.Errorf("tuning values must not be negative")
	}
	if t.PrimaryTick < 0 || t.FallbackTick < 0 || t.BreakerOpenTimeout < 0 {
		return Tuning{}, fmt.Errorf("tuning durations must not be negative")
	}
	last := 0
	for i, step := range t.SimulatedSteps {
		if step.Percentage <= last || step.Percentage >= 100 {
			return Tuning{}, fmt.Errorf("simulated step %d: percentage %d must rise and stay below 100", i+1, step.Percentage)
		}
		if strings.TrimSpace(step.MessageKey) == "" {
			return Tuning{}, fmt.Errorf("simulated step %d: message_key is required", i+1)
		}
		last = step.Percentage
	}
	return t, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Second * time.Duration(getEnvInt(key, fallback))
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
