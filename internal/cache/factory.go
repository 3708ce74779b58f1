package cache

import (
	"log/slog"
	"os"
)

// MakeCache picks the persistence backend from the environment: Azure blob
// storage when an account is configured, a local directory otherwise.
func MakeCache(dir string) (Cache, error) {
	if _, ok := os.LookupEnv("AZURE_STORAGE_ACCOUNT_NAME"); ok {
		slog.Info("using Azure Blob Storage for persistence")
		return NewBlobCache("remy")
	}
	return NewFileCache(dir), nil
}
