//go:build !prod

package database

// GetDefaultDBPath returns the database path for development mode.
// In dev mode, the database is stored in the project root for easy access and debugging.
func GetDefaultDBPath() string {
	return "veostudio.db"
}

// GetDefaultMediaDir returns the directory downloaded videos are kept in.
func GetDefaultMediaDir() string {
	return "media"
}

func IsDevelopment() bool {
	return true
}
