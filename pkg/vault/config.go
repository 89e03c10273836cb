package vault

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // load .env during development

	"github.com/dowelhq/steek/pkg/cryptoutil"
)

// Config tunes vault persistence. Everything has a working default.
type Config struct {
	// Path is the vault file location.
	Path string `env:"STEEK_VAULT_PATH"`
	// Iterations is the PBKDF2 round count for the master key. Raising
	// it only affects newly initialized vaults; existing files carry
	// their own count in the header.
	Iterations int `env:"STEEK_KDF_ITERATIONS" envDefault:"100000"`
}

// LoadConfig reads Config from the environment and fills defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Path == "" {
		cfg.Path = defaultPath()
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = cryptoutil.DefaultIterations
	}
	return cfg, nil
}

func defaultPath() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "steek", "vault.steek")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "steek-vault.steek")
	}
	return filepath.Join(home, ".local", "share", "steek", "vault.steek")
}
