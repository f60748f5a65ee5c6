package buildenv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultDotenvFiles are tried in order by LoadDotenv when no paths are given.
var DefaultDotenvFiles = []string{".env", ".env.local"}

// LoadDotenv loads the first existing dotenv file into the process environment.
// Variables already set in the environment win. It returns the path that was
// loaded, or "" when none of the candidates exist.
func LoadDotenv(paths ...string) (string, error) {
	if len(paths) == 0 {
		paths = DefaultDotenvFiles
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("stat %s: %w", p, err)
		}
		// godotenv.Load never overrides variables that are already set.
		if err := godotenv.Load(p); err != nil {
			return "", fmt.Errorf("load %s: %w", p, err)
		}
		return p, nil
	}
	return "", nil
}
