//go:build prod

package database

import (
	"log"
	"os"
	"path/filepath"
)

const appDirName = "veostudio"

// GetDefaultDBPath returns the database path for production mode.
// In production, the database is stored in the user's config directory.
func GetDefaultDBPath() string {
	appDir, ok := appConfigDir()
	if !ok {
		return "veostudio.db"
	}
	return filepath.Join(appDir, "veostudio.db")
}

// GetDefaultMediaDir returns the directory downloaded videos are kept in.
func GetDefaultMediaDir() string {
	appDir, ok := appConfigDir()
	if !ok {
		return "media"
	}
	return filepath.Join(appDir, "media")
}

func appConfigDir() (string, bool) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Printf("Warning: Failed to get user config dir: %v. Using fallback.", err)
		return "", false
	}

	appDir := filepath.Join(configDir, appDirName)
	if err := os.MkdirAll(appDir, 0755); err != nil {
		log.Printf("Warning: Failed to create app config dir: %v. Using fallback.", err)
		return "", false
	}
	return appDir, true
}

func IsDevelopment() bool {
	return false
}
