package utils

import (
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// LoadConfig reads a .env file from the given path if present. Missing files
// are fine, real environment variables always win.
func LoadConfig(path string) {
	envPath := filepath.Join(path, ".env")
	if err := godotenv.Load(envPath); err != nil {
		logrus.Debugf("[CONFIG] No .env file loaded from %s: %v", envPath, err)
	}
}
