package keyring

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // load .env during development
)

// Config tunes backend probing. Everything has a working default; the
// environment variables exist for diagnostics and tests, never for
// security decisions.
type Config struct {
	// ForceBackend restricts probing to the named backend.
	ForceBackend string `env:"STEEK_KEYRING_BACKEND"`
	// Dir is the base directory for file-backed stores.
	Dir string `env:"STEEK_KEYRING_DIR"`
	// KeystoreSocket overrides the embedded keystore socket path.
	KeystoreSocket string `env:"STEEK_KEYSTORE_SOCKET"`
}

// LoadConfig reads Config from the environment and fills defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Dir == "" {
		cfg.Dir = defaultDir()
	}
	return cfg, nil
}

func defaultDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "steek", "keyring")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "steek-keyring")
	}
	return filepath.Join(home, ".local", "share", "steek", "keyring")
}
