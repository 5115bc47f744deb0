package utils

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var envFiles = []string{".env.local", ".env"}

func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// LoadEnv loads .env.local and .env from the project root, in that order.
// Variables already set in the process environment win. Missing files are skipped.
func LoadEnv() error {
	root, err := FindProjectRoot()
	if err != nil {
		return err
	}
	return LoadEnvFrom(root)
}

func LoadEnvFrom(dir string) error {
	var paths []string
	for _, name := range envFiles {
		p := filepath.Join(dir, name)
		if FileExists(p) {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return os.ErrNotExist
	}
	return godotenv.Load(paths...)
}

func GetEnvString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// GetEnvDuration parses values like "10s" or "1500ms". A bare integer is read as seconds.
func GetEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback, err
	}
	if d < 0 {
		return fallback, errors.New(key + " must not be negative")
	}
	return d, nil
}

func GetEnvInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, err
	}
	return n, nil
}
