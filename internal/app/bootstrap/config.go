package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration shared by the three front
// ends. It merges file defaults and environment overrides to support both
// local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int

	StorePath   string
	DownloadDir string

	UserBotToken  string
	AdminBotToken string
	AdminChatID   int64

	JWTSecret         string
	AllowEphemeralJWT bool
	TokenTTL          time.Duration

	AdminAPIKey string

	BcryptCost int

	InitialCredits   int
	FailedThreshold  int
	LockWindow       time.Duration
	RecoveryCooldown time.Duration

	NotificationCap int
	SendTimeout     time.Duration
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay
// internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
	} `yaml:"service"`
	Store struct {
		Path        string `yaml:"path"`
		DownloadDir string `yaml:"download_dir"`
	} `yaml:"store"`
	Telegram struct {
		UserBotToken  string `yaml:"user_bot_token"`
		AdminBotToken string `yaml:"admin_bot_token"`
		AdminChatID   int64  `yaml:"admin_chat_id"`
	} `yaml:"telegram"`
	Policy struct {
		InitialCredits          int `yaml:"initial_credits"`
		FailedThreshold         int `yaml:"failed_threshold"`
		LockWindowMinutes       int `yaml:"lock_window_minutes"`
		RecoveryCooldownHours   int `yaml:"recovery_cooldown_hours"`
		NotificationCap         int `yaml:"notification_cap"`
	} `yaml:"policy"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific
// overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:         "genius-core",
		HTTPPort:          8080,
		StorePath:         "genius.db",
		DownloadDir:       "downloads",
		AllowEphemeralJWT: true,
		TokenTTL:          24 * time.Hour,
		BcryptCost:        12,
		InitialCredits:    50,
		FailedThreshold:   5,
		LockWindow:        5 * time.Minute,
		RecoveryCooldown:  24 * time.Hour,
		NotificationCap:   50,
		SendTimeout:       10 * time.Second,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Store.Path != "" {
			cfg.StorePath = f.Store.Path
		}
		if f.Store.DownloadDir != "" {
			cfg.DownloadDir = f.Store.DownloadDir
		}
		if f.Telegram.UserBotToken != "" {
			cfg.UserBotToken = f.Telegram.UserBotToken
		}
		if f.Telegram.AdminBotToken != "" {
			cfg.AdminBotToken = f.Telegram.AdminBotToken
		}
		if f.Telegram.AdminChatID != 0 {
			cfg.AdminChatID = f.Telegram.AdminChatID
		}
		if f.Policy.InitialCredits > 0 {
			cfg.InitialCredits = f.Policy.InitialCredits
		}
		if f.Policy.FailedThreshold > 0 {
			cfg.FailedThreshold = f.Policy.FailedThreshold
		}
		if f.Policy.LockWindowMinutes > 0 {
			cfg.LockWindow = time.Duration(f.Policy.LockWindowMinutes) * time.Minute
		}
		if f.Policy.RecoveryCooldownHours > 0 {
			cfg.RecoveryCooldown = time.Duration(f.Policy.RecoveryCooldownHours) * time.Hour
		}
		if f.Policy.NotificationCap > 0 {
			cfg.NotificationCap = f.Policy.NotificationCap
		}
	}

	cfg.StorePath = envOrDefault("STORE_PATH", cfg.StorePath)
	cfg.DownloadDir = envOrDefault("DOWNLOAD_DIR", cfg.DownloadDir)
	cfg.UserBotToken = envOrDefault("TELEGRAM_USER_BOT_TOKEN", cfg.UserBotToken)
	cfg.AdminBotToken = envOrDefault("TELEGRAM_ADMIN_BOT_TOKEN", cfg.AdminBotToken)
	cfg.AdminChatID = envInt64("TELEGRAM_ADMIN_CHAT_ID", cfg.AdminChatID)
	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.AllowEphemeralJWT = envBool("JWT_ALLOW_EPHEMERAL", cfg.AllowEphemeralJWT)
	cfg.AdminAPIKey = envOrDefault("ADMIN_API_KEY", cfg.AdminAPIKey)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)
	cfg.InitialCredits = envInt("INITIAL_CREDITS", cfg.InitialCredits)
	cfg.FailedThreshold = envInt("FAILED_LOGIN_THRESHOLD", cfg.FailedThreshold)
	cfg.NotificationCap = envInt("NOTIFICATION_CAP", cfg.NotificationCap)

	cfg.TokenTTL = time.Duration(envInt("TOKEN_EXPIRY_HOURS", int(cfg.TokenTTL.Hours()))) * time.Hour
	cfg.LockWindow = time.Duration(envInt("ACCOUNT_LOCKOUT_MINUTES", int(cfg.LockWindow.Minutes()))) * time.Minute
	cfg.RecoveryCooldown = time.Duration(envInt("RECOVERY_COOLDOWN_HOURS", int(cfg.RecoveryCooldown.Hours()))) * time.Hour

	if cfg.StorePath == "" {
		return Config{}, fmt.Errorf("missing STORE_PATH")
	}
	if cfg.JWTSecret == "" && !cfg.AllowEphemeralJWT {
		return Config{}, fmt.Errorf("missing JWT_SECRET")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envInt64(name string, fallback int64) int64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

// envBool parses common boolean env forms while keeping a deterministic fallback.
func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}
