package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once
	dotenvErr  error
)

// LoadDotenvOnce loads environment variables from a .env file before the
// configuration is read. The first call wins; later calls are no-ops.
//
// NO_DOTENV=1 disables loading, ENV_FILE selects the file (default ./.env),
// and existing variables are kept unless DOTENV_OVERLOAD=1 is set. A missing
// file is not an error; a file that exists but cannot be parsed is.
func LoadDotenvOnce() error {
	dotenvOnce.Do(func() { dotenvErr = loadDotenv() })
	return dotenvErr
}

func loadDotenv() error {
	if os.Getenv("NO_DOTENV") == "1" {
		return nil
	}

	path := ".env"
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		path = envFile
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	load := godotenv.Load
	if os.Getenv("DOTENV_OVERLOAD") == "1" {
		load = godotenv.Overload
	}
	if err := load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
