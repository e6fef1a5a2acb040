// Package repositories defines data access contracts for the domain layer.
package repositories

import (
	"context"

	"github.com/shipcask/shipcask/internal/domain/entities"
)

// ConfigRepository loads release configuration.
type ConfigRepository interface {
	// Load reads, validates, and defaults the configuration at path.
	Load(ctx context.Context, path string) (*entities.ReleaseConfig, error)
}
