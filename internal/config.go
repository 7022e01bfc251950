package internal

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        int
	DatabaseURL string

	UploadDir string
	WorkDir   string

	GeminiAPIKey string
	GeminiModel  string

	MaxUploadBytes int64
	TargetSizeMB   int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	ShutdownTimeout  time.Duration

	// Retention sweep for aged uploads and artifacts
	RetentionMaxAge   time.Duration
	RetentionSchedule string

	// Optional S3 archival before retention deletes local files.
	// Archived objects themselves expire after ArchiveMaxAge.
	ArchiveMaxAge   time.Duration
	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3ArchivePrefix string
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Port:        8080,
		DatabaseURL: os.Getenv("DATABASE_URL"),

		UploadDir: "data/uploads",
		WorkDir:   "data/tmp",

		GeminiAPIKey: firstNonEmpty(os.Getenv("GOOGLE_API_KEY"), os.Getenv("GEMINI_API_KEY")),
		GeminiModel:  "gemini-2.0-flash-exp",

		MaxUploadBytes: 32 << 20,
		TargetSizeMB:   20,

		HTTPReadTimeout:  5 * time.Minute,
		HTTPWriteTimeout: 5 * time.Minute,
		ShutdownTimeout:  15 * time.Second,

		RetentionMaxAge:   7 * 24 * time.Hour,
		RetentionSchedule: "0 0 3 * * *",

		ArchiveMaxAge:   30 * 24 * time.Hour,
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3Region:        os.Getenv("S3_REGION"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3AccessKey:     firstNonEmpty(os.Getenv("S3_ACCESS_KEY"), os.Getenv("S3_ACCESS_KEY_ID")),
		S3SecretKey:     firstNonEmpty(os.Getenv("S3_SECRET_ACCESS_KEY"), os.Getenv("S3_SECRET_ACCESS_KEY_ID")),
		S3ArchivePrefix: "archive/",
	}

	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Port = n
		}
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
	if v := os.Getenv("WORK_DIR"); v != "" {
		cfg.WorkDir = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxUploadBytes = n << 20
		}
	}
	if v := os.Getenv("TARGET_SIZE_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TargetSizeMB = n
		}
	}
	if v := os.Getenv("RETENTION_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RetentionMaxAge = d
		}
	}
	if v := os.Getenv("RETENTION_SCHEDULE"); v != "" {
		cfg.RetentionSchedule = v
	}
	if v := os.Getenv("ARCHIVE_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ArchiveMaxAge = d
		}
	}
	if v := os.Getenv("S3_ARCHIVE_PREFIX"); v != "" {
		cfg.S3ArchivePrefix = v
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}
	return cfg, nil
}

// ArchiveEnabled reports whether enough S3 settings are present to
// archive artifacts before the retention sweep deletes them.
func (c Config) ArchiveEnabled() bool {
	return c.S3Endpoint != "" && c.S3Region != "" && c.S3Bucket != "" &&
		c.S3AccessKey != "" && c.S3SecretKey != ""
}

func firstNonEmpty(v ...string) string {
	for _, s := range v {
		if s != "" {
			return s
		}
	}
	return ""
}
