package yaml

import (
	"context"
	"fmt"
	"os"

	"github.com/shipcask/shipcask/internal/domain/entities"
)

// ConfigRepository implements repositories.ConfigRepository using YAML files
type ConfigRepository struct {
	parser *ConfigParser
}

// NewConfigRepository creates a new YAML-based config repository
func NewConfigRepository() *ConfigRepository {
	return &ConfigRepository{
		parser: NewConfigParser(),
	}
}

// Load reads the release configuration at path
func (r *ConfigRepository) Load(_ context.Context, path string) (*entities.ReleaseConfig, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	return r.parser.ParseFile(path)
}
