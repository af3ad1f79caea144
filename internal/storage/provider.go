// Package storage uploads video files to third-party object storage and
// returns their public URLs. Backends are interchangeable behind Provider.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/foodreels/backend/pkg/config"
)

// ErrUnavailable is returned while the circuit breaker rejects uploads.
var ErrUnavailable = errors.New("object storage temporarily unavailable")

// Provider stores data under key and returns a publicly resolvable URL.
type Provider interface {
	Name() string
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// New builds the backend selected in cfg and wraps it with a circuit breaker.
func New(ctx context.Context, cfg config.StorageConfig) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case config.StorageS3:
		p, err = NewS3Provider(ctx, cfg.S3)
	case config.StorageImageKit:
		p, err = NewImageKitProvider(cfg.ImageKit)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewBreakerProvider(p, DefaultBreakerSettings()), nil
}
