package config

import (
	"os"
	"path/filepath"
)

func defaultHome() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return ".keyvault"
	}
	return filepath.Join(dir, ".keyvault")
}
