package utils

import (
	"fmt"
	"os"
)

// CreateFolder creates every given directory if it does not exist yet.
func CreateFolder(folderPath ...string) error {
	for _, folder := range folderPath {
		if err := os.MkdirAll(folder, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create folder %s: %w", folder, err)
		}
	}
	return nil
}
