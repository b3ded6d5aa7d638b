package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DataDir     string
	DatabaseURL string

	MaxUploadBytes int64

	// CORSOrigins limits which origins may call the API with credentials.
	// Empty means any origin is echoed back.
	CORSOrigins []string

	LLM      LLMConfig
	Artifact ArtifactConfig
}

type LLMConfig struct {
	APIKey          string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
	CacheEnabled    bool
	CacheSize       int
	CacheTTL        time.Duration
}

type ArtifactConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// CanUseS3 reports whether the S3 configuration is complete enough to open
// a client.
func (a ArtifactConfig) CanUseS3() bool {
	return a.Endpoint != "" && a.AccessKey != "" && a.SecretKey != "" && a.Bucket != ""
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8080", "server port")
	dataDir := flag.String("data-dir", "data/sessions", "session storage directory")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}
	if envDir := strings.TrimSpace(os.Getenv("DATA_DIR")); envDir != "" {
		*dataDir = envDir
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:           *port,
		Env:            env,
		DataDir:        *dataDir,
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10<<20),
		CORSOrigins:    splitCSV(os.Getenv("CORS_ORIGINS")),
		LLM:            loadLLMConfig(),
		Artifact:       loadArtifactConfig(env),
	}, nil
}

func loadLLMConfig() LLMConfig {
	return LLMConfig{
		APIKey:          strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		Model:           firstNonEmpty(strings.TrimSpace(os.Getenv("LLM_MODEL")), "gemini-2.5-flash"),
		Temperature:     envFloat("LLM_TEMPERATURE", 0.1),
		MaxOutputTokens: int(envInt64("LLM_MAX_OUTPUT_TOKENS", 4000)),
		Timeout:         envDuration("LLM_TIMEOUT", 120*time.Second),
		CacheEnabled:    envBool("LLM_CACHE_ENABLED", true),
		CacheSize:       int(envInt64("LLM_CACHE_SIZE", 128)),
		CacheTTL:        envDuration("LLM_CACHE_TTL", time.Hour),
	}
}

func loadArtifactConfig(env string) ArtifactConfig {
	endpoint := strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
	return ArtifactConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), "ctxoptimizer-artifacts"),
		UseSSL:    resolveArtifactUseSSL(env),
	}
}

func resolveArtifactUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("ARTIFACT_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
