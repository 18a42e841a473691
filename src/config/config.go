package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIKeyPath = "/run/secrets/api_keys/openrouter"
	APIKeyPathEnvVar  = "OPENROUTER_API_KEY_FILE"

	// DefaultHotkey activates a capture session from anywhere.
	DefaultHotkey = "Alt+C"

	// DefaultMatchThreshold is the minimum similarity a profile label must
	// reach against the recognized text to become a candidate. Exactly half
	// the longer string may differ.
	DefaultMatchThreshold = 0.5

	// DefaultFragmentJoin glues multi-fragment OCR output into one string
	// before normalization.
	DefaultFragmentJoin = " "

	DefaultProfileFile = "profile.yaml"
)

type LoadOptions struct {
	APIKeyPathOverride  string
	ProfilePathOverride string
}

type Config struct {
	APIKey            string
	APIKeyPath        string
	Model             string
	Providers         []string
	EnableFileLogging bool
	Hotkey            string
	MatchThreshold    float64
	FragmentJoin      string
	OCRDeadlineSec    int
	ProfilePath       string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Configuration sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, PROFILE_CLIP_ENV names a config file
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	var providers []string
	if providersStr := os.Getenv("PROVIDERS"); providersStr != "" {
		for _, provider := range strings.Split(providersStr, ",") {
			if trimmed := strings.TrimSpace(provider); trimmed != "" {
				providers = append(providers, trimmed)
			}
		}
	}

	ocrDeadlineSec := 20
	if v := os.Getenv("OCR_DEADLINE_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ocrDeadlineSec = n
		}
	}

	threshold := DefaultMatchThreshold
	if v := os.Getenv("MATCH_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			threshold = f
		}
	}

	fragmentJoin := DefaultFragmentJoin
	if v, ok := os.LookupEnv("FRAGMENT_JOIN"); ok {
		fragmentJoin = v
	}

	apiKeyPath := resolveAPIKeyPath(opts, dotenvValues)

	cfg := &Config{
		APIKey:            resolveAPIKey(apiKeyPath),
		APIKeyPath:        apiKeyPath,
		Model:             os.Getenv("MODEL"),
		Providers:         providers,
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		Hotkey:            getEnvWithDefault("HOTKEY", DefaultHotkey),
		MatchThreshold:    threshold,
		FragmentJoin:      fragmentJoin,
		OCRDeadlineSec:    ocrDeadlineSec,
		ProfilePath:       resolveProfilePath(opts),
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv("PROFILE_CLIP_ENV"); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

func resolveAPIKeyPath(opts LoadOptions, dotenvValues map[string]string) string {
	keyPath := DefaultAPIKeyPath

	if envPath := strings.TrimSpace(os.Getenv(APIKeyPathEnvVar)); envPath != "" {
		keyPath = envPath
	}

	if dotenvPath := strings.TrimSpace(dotenvValues[APIKeyPathEnvVar]); dotenvPath != "" {
		keyPath = dotenvPath
	}

	if overridePath := strings.TrimSpace(opts.APIKeyPathOverride); overridePath != "" {
		keyPath = overridePath
	}

	return keyPath
}

func resolveAPIKey(keyPath string) string {
	if data, err := os.ReadFile(keyPath); err == nil {
		if fileKey := strings.TrimSpace(string(data)); fileKey != "" {
			return fileKey
		}
	}

	return os.Getenv("OPENROUTER_API_KEY")
}

func resolveProfilePath(opts LoadOptions) string {
	if override := strings.TrimSpace(opts.ProfilePathOverride); override != "" {
		return override
	}
	if v := strings.TrimSpace(os.Getenv("PROFILE_PATH")); v != "" {
		return v
	}
	if execPath, err := os.Executable(); err == nil {
		return filepath.Join(filepath.Dir(execPath), DefaultProfileFile)
	}
	return DefaultProfileFile
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
