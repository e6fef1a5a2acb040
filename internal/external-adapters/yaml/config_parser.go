// Package yaml loads release configuration from YAML documents.
package yaml

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/shipcask/shipcask/internal/domain/entities"
)

// rawConfig mirrors the on-disk shipcask.yml layout.
type rawConfig struct {
	Project       string        `yaml:"project" validate:"required"`
	Scheme        string        `yaml:"scheme" validate:"required"`
	AppName       string        `yaml:"app_name" validate:"required"`
	Configuration string        `yaml:"configuration"`
	BuildDir      string        `yaml:"build_dir"`
	ReleaseDir    string        `yaml:"release_dir"`
	Entitlements  string        `yaml:"entitlements"`
	Signing       rawSigning    `yaml:"signing"`
	Validation    rawValidation `yaml:"validation"`
	DiskImage     rawDiskImage  `yaml:"disk_image"`
	Packages      []rawPackage  `yaml:"packages" validate:"dive"`
}

type rawSigning struct {
	Identity        string `yaml:"identity"`
	HardenedRuntime bool   `yaml:"hardened_runtime"`
	PGPKey          string `yaml:"pgp_key"`
}

type rawValidation struct {
	MinExecutableKB int64 `yaml:"min_executable_kb"`
}

type rawDiskImage struct {
	VolumeName string    `yaml:"volume_name"`
	SizeMB     int       `yaml:"size_mb"`
	Layout     rawLayout `yaml:"window_layout"`
}

type rawLayout struct {
	Enabled       *bool `yaml:"enabled"`
	IconSize      int   `yaml:"icon_size"`
	AppIconX      int   `yaml:"app_icon_x"`
	AppIconY      int   `yaml:"app_icon_y"`
	ApplicationsX int   `yaml:"applications_x"`
	ApplicationsY int   `yaml:"applications_y"`
	WindowWidth   int   `yaml:"window_width"`
	WindowHeight  int   `yaml:"window_height"`
}

type rawPackage struct {
	Reference string   `yaml:"reference" validate:"required"`
	Products  []string `yaml:"products" validate:"required,min=1"`
}

// ConfigParser parses and validates release configuration documents.
type ConfigParser struct {
	validate *validator.Validate
}

// NewConfigParser creates a new config parser
func NewConfigParser() *ConfigParser {
	return &ConfigParser{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ParseFile reads and parses the YAML config at path
func (p *ConfigParser) ParseFile(path string) (*entities.ReleaseConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path comes from the -config flag
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return p.Parse(data)
}

// Parse parses YAML data into a release configuration
func (p *ConfigParser) Parse(data []byte) (*entities.ReleaseConfig, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := p.validate.Struct(&raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	raw.applyDefaults()
	return raw.toEntity(), nil
}

// applyDefaults fills in the optional fields a minimal config omits.
func (raw *rawConfig) applyDefaults() {
	if raw.Configuration == "" {
		raw.Configuration = "Release"
	}
	if raw.BuildDir == "" {
		raw.BuildDir = "build"
	}
	if raw.ReleaseDir == "" {
		raw.ReleaseDir = "releases"
	}
	if raw.Validation.MinExecutableKB == 0 {
		raw.Validation.MinExecutableKB = 100
	}
	if raw.DiskImage.VolumeName == "" {
		raw.DiskImage.VolumeName = raw.AppName
	}
	if raw.DiskImage.SizeMB == 0 {
		raw.DiskImage.SizeMB = 100
	}

	layout := &raw.DiskImage.Layout
	if layout.IconSize == 0 {
		layout.IconSize = 128
	}
	if layout.AppIconX == 0 {
		layout.AppIconX = 140
	}
	if layout.AppIconY == 0 {
		layout.AppIconY = 180
	}
	if layout.ApplicationsX == 0 {
		layout.ApplicationsX = 420
	}
	if layout.ApplicationsY == 0 {
		layout.ApplicationsY = 180
	}
	if layout.WindowWidth == 0 {
		layout.WindowWidth = 540
	}
	if layout.WindowHeight == 0 {
		layout.WindowHeight = 380
	}
}

func (raw *rawConfig) toEntity() *entities.ReleaseConfig {
	// Layout stays on unless the config switches it off.
	enabled := true
	if raw.DiskImage.Layout.Enabled != nil {
		enabled = *raw.DiskImage.Layout.Enabled
	}

	packages := make([]entities.PackageDependency, 0, len(raw.Packages))
	for _, pkg := range raw.Packages {
		packages = append(packages, entities.PackageDependency{
			Reference: pkg.Reference,
			Products:  pkg.Products,
		})
	}

	return &entities.ReleaseConfig{
		Project:       raw.Project,
		Scheme:        raw.Scheme,
		AppName:       raw.AppName,
		Configuration: raw.Configuration,
		BuildDir:      raw.BuildDir,
		ReleaseDir:    raw.ReleaseDir,
		Entitlements:  raw.Entitlements,
		Signing: entities.SigningConfig{
			Identity:        raw.Signing.Identity,
			HardenedRuntime: raw.Signing.HardenedRuntime,
			PGPKeyPath:      raw.Signing.PGPKey,
		},
		Validation: entities.ValidationConfig{
			MinExecutableKB: raw.Validation.MinExecutableKB,
		},
		DiskImage: entities.DiskImageConfig{
			VolumeName: raw.DiskImage.VolumeName,
			SizeMB:     raw.DiskImage.SizeMB,
			Layout: entities.WindowLayout{
				Enabled:       enabled,
				IconSize:      raw.DiskImage.Layout.IconSize,
				AppX:          raw.DiskImage.Layout.AppIconX,
				AppY:          raw.DiskImage.Layout.AppIconY,
				ApplicationsX: raw.DiskImage.Layout.ApplicationsX,
				ApplicationsY: raw.DiskImage.Layout.ApplicationsY,
				WindowWidth:   raw.DiskImage.Layout.WindowWidth,
				WindowHeight:  raw.DiskImage.Layout.WindowHeight,
			},
		},
		Packages: packages,
	}
}
