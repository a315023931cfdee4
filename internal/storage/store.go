// Package storage holds the object-store backends that persist uploaded post assets.
package storage

import (
	"context"
	"fmt"
	"strings"

	"acervo/internal/config"
)

// AssetStore is durable blob storage keyed by bucket and key. Each call succeeds
// or fails on its own; there are no multi-key transactions.
type AssetStore interface {
	Upload(ctx context.Context, bucket, key string, body []byte, contentType string) error
	PublicURL(bucket, key string) string
}

// Supported ASSET_STORE values.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// New returns the asset store selected by configuration.
func New(cfg *config.Config) (AssetStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.AssetStore)) {
	case "", BackendLocal:
		return NewLocalStore(cfg.AssetLocalDir, cfg.AssetPublicBaseURL), nil
	case BackendS3:
		return NewS3Store(S3Options{
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.AssetPublicBaseURL,
		})
	default:
		return nil, fmt.Errorf("unsupported ASSET_STORE %q", cfg.AssetStore)
	}
}

func joinURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + key
}
