package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration, loaded once at startup.
type Config struct {
	Addr          string
	JWTSigningKey string

	DatabaseURL  string
	RedisURL     string
	KafkaBrokers string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	PushGatewayURL string

	Verification Verification
}

// Verification captures the age-restriction policy knobs.
type Verification struct {
	MinimumAgeTobacco        int
	MinimumAgeAlcohol        int
	MinimumSubmissionAge     int
	VerificationExpiryMonths int
	MaxUploadSizeBytes       int64
	AllowedDocumentTypes     []string
	ExpirySweepInterval      time.Duration
}

// Defaults for the verification policy. Overridable via environment.
const (
	DefaultMinimumAgeTobacco        = 21
	DefaultMinimumAgeAlcohol        = 21
	DefaultMinimumSubmissionAge     = 18
	DefaultVerificationExpiryMonths = 24
	DefaultMaxUploadSizeBytes       = 5 << 20 // 5 MB
	DefaultExpirySweepInterval      = time.Hour
)

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:           envOr("FDM_ADDR", ":8080"),
		JWTSigningKey:  envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		KafkaBrokers:   os.Getenv("KAFKA_BROKERS"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    envOr("MINIO_BUCKET", "verification-documents"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		PushGatewayURL: os.Getenv("PUSH_GATEWAY_URL"),
		Verification: Verification{
			MinimumAgeTobacco:        envIntOr("MIN_AGE_TOBACCO", DefaultMinimumAgeTobacco),
			MinimumAgeAlcohol:        envIntOr("MIN_AGE_ALCOHOL", DefaultMinimumAgeAlcohol),
			MinimumSubmissionAge:     envIntOr("MIN_SUBMISSION_AGE", DefaultMinimumSubmissionAge),
			VerificationExpiryMonths: envIntOr("VERIFICATION_EXPIRY_MONTHS", DefaultVerificationExpiryMonths),
			MaxUploadSizeBytes:       envInt64Or("MAX_UPLOAD_SIZE_BYTES", DefaultMaxUploadSizeBytes),
			ExpirySweepInterval:      envDurationOr("EXPIRY_SWEEP_INTERVAL_SECONDS", DefaultExpirySweepInterval),
		},
	}

	if raw := os.Getenv("ALLOWED_DOCUMENT_TYPES"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				cfg.Verification.AllowedDocumentTypes = append(cfg.Verification.AllowedDocumentTypes, t)
			}
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
