package config

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

// Env holds the environment overrides. Empty fields mean "not set".
type Env struct {
	ConfigPath string `env:"TOTP_CONFIG"`   // Explicit path to the secrets file
	KeysDir    string `env:"TOTP_KEYS_DIR"` // Directory holding <name>_totp side files
}

// LoadEnv reads the environment. KeysDir falls back to ~/.keys.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, err
	}
	if e.KeysDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Env{}, err
		}
		e.KeysDir = filepath.Join(home, ".keys")
	}
	return e, nil
}
