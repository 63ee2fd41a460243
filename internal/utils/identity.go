package utils

import (
	"context"
	"log"
	"os"

	"github.com/craftline/pricedeskgo/internal/storage"
	"github.com/google/uuid"
)

const instanceIDKey = "instance_id"

// LoadOrGenerateInstanceID ensures this process has a stable identity
// across restarts. Env var wins, then the storage shim's durable value,
// and a fresh UUID is minted and persisted when neither exists. The shim's
// write-down behavior means this works even when the primary datastore
// refuses writes.
func LoadOrGenerateInstanceID(ctx context.Context, shim *storage.Shim) (string, error) {
	if envID := os.Getenv("INSTANCE_ID"); envID != "" {
		return envID, nil
	}

	id, found, err := shim.GetItem(ctx, instanceIDKey)
	if err != nil {
		return "", err
	}
	if found && id != "" {
		return id, nil
	}

	id = uuid.New().String()
	if err := shim.SetItem(ctx, instanceIDKey, id); err != nil {
		return "", err
	}
	log.Printf("🆔 Generated new instance identity: %s", id)
	return id, nil
}
