package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"sodaclicker/internal/domain/economy"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	HTTPAddr      string
	DBDSN         string
	SaveDir       string
	MigrationsDir string
	FrameInterval time.Duration
	JWTSecret     []byte
	// EphemeralSecret is set when no secret was configured and one was
	// generated; issued tokens do not survive a restart.
	EphemeralSecret bool
	TokenTTL        time.Duration
	// SessionIdleTTL closes sessions no request touched for this long. Zero
	// keeps them open until shutdown.
	SessionIdleTTL time.Duration
	CORSOrigins    []string
	BalanceFile    string
	LogLevel       hlog.Level
	Balance        economy.Balance
}

// Load reads SODA_* env vars over the defaults. The balance starts from
// economy.DefaultBalance, is overlaid by SODA_BALANCE_FILE when set, then by
// the autosave env vars, and is validated last.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:       stringEnv("SODA_HTTP_ADDR", ":8080"),
		DBDSN:          stringEnv("SODA_DB_DSN", ""),
		SaveDir:        stringEnv("SODA_SAVE_DIR", ""),
		MigrationsDir:  stringEnv("SODA_MIGRATIONS_DIR", "db/migrations"),
		FrameInterval:  time.Duration(intEnv("SODA_FRAME_INTERVAL_MS", 100)) * time.Millisecond,
		TokenTTL:       time.Duration(intEnv("SODA_TOKEN_TTL_MINUTES", 24*60)) * time.Minute,
		SessionIdleTTL: time.Duration(intEnv("SODA_SESSION_IDLE_TTL_SECONDS", 600)) * time.Second,
		CORSOrigins:    listEnv("SODA_CORS_ORIGINS"),
		BalanceFile:    stringEnv("SODA_BALANCE_FILE", ""),
		Balance:        economy.DefaultBalance(),
	}
	if cfg.FrameInterval <= 0 {
		return Config{}, fmt.Errorf("%w: SODA_FRAME_INTERVAL_MS must be positive", ErrInvalidConfig)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("%w: SODA_TOKEN_TTL_MINUTES must be positive", ErrInvalidConfig)
	}

	if cfg.SessionIdleTTL < 0 {
		return Config{}, fmt.Errorf("%w: SODA_SESSION_IDLE_TTL_SECONDS must not be negative", ErrInvalidConfig)
	}

	level, err := ParseLogLevel(stringEnv("SODA_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	if secret := stringEnv("SODA_JWT_SECRET", ""); secret != "" {
		cfg.JWTSecret = []byte(secret)
	} else {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return Config{}, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.JWTSecret = []byte(hex.EncodeToString(buf))
		cfg.EphemeralSecret = true
	}

	if cfg.BalanceFile != "" {
		b, err := LoadBalanceFile(cfg.BalanceFile, cfg.Balance)
		if err != nil {
			return Config{}, err
		}
		cfg.Balance = b
	}
	if mode := stringEnv("SODA_AUTOSAVE_MODE", ""); mode != "" {
		cfg.Balance.Autosave.Mode = economy.AutosaveMode(strings.ToLower(mode))
	}
	cfg.Balance.Autosave.Interval = intEnv("SODA_AUTOSAVE_INTERVAL", cfg.Balance.Autosave.Interval)

	if err := cfg.Balance.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// LoadBalanceFile decodes a YAML balance over base. Keys missing from the
// file keep base's value; unknown keys are rejected so typos surface.
func LoadBalanceFile(path string, base economy.Balance) (economy.Balance, error) {
	f, err := os.Open(path)
	if err != nil {
		return economy.Balance{}, fmt.Errorf("open balance file: %w", err)
	}
	defer f.Close()

	out := base
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil {
		return economy.Balance{}, fmt.Errorf("%w: balance file %s: %v", ErrInvalidConfig, path, err)
	}
	return out, nil
}

func ParseLogLevel(s string) (hlog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return hlog.LevelTrace, nil
	case "debug":
		return hlog.LevelDebug, nil
	case "", "info":
		return hlog.LevelInfo, nil
	case "notice":
		return hlog.LevelNotice, nil
	case "warn", "warning":
		return hlog.LevelWarn, nil
	case "error":
		return hlog.LevelError, nil
	case "fatal":
		return hlog.LevelFatal, nil
	}
	return hlog.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, s)
}

func stringEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// listEnv splits a comma separated value, dropping empty items.
func listEnv(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
