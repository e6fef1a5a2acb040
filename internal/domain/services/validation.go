// Package services implements domain policies for release validation and
// checksum manifests.
package services

import (
	"context"
	"fmt"
	"os"

	"github.com/shipcask/shipcask/internal/domain/entities"
	"github.com/shipcask/shipcask/internal/domain/interfaces"
)

// BundleValidationService checks a built application bundle before it may be
// signed. The checks run in a fixed order and the first failure aborts the
// release: the bundle directory must exist, the executable must sit at the
// OS-conventional path inside it, and the executable must not be
// suspiciously small.
type BundleValidationService struct {
	minBytes int64
	log      interfaces.Logger
}

// NewBundleValidationService creates a validator with the configured
// executable size floor.
func NewBundleValidationService(cfg entities.ValidationConfig, log interfaces.Logger) *BundleValidationService {
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &BundleValidationService{
		minBytes: cfg.MinBytes(),
		log:      log,
	}
}

// Validate runs the mandatory bundle checks and records the observed
// executable size on the artifact.
func (s *BundleValidationService) Validate(_ context.Context, artifact *entities.BuildArtifact) (*entities.ValidationResult, error) {
	info, err := os.Stat(artifact.BundlePath)
	if os.IsNotExist(err) {
		return nil, entities.NewReleaseErrorf(entities.FailureMissingBundle,
			"application bundle not found at %s", artifact.BundlePath)
	}
	if err != nil {
		return nil, entities.NewReleaseError(entities.FailureMissingBundle,
			fmt.Errorf("failed to stat bundle: %w", err))
	}
	if !info.IsDir() {
		return nil, entities.NewReleaseErrorf(entities.FailureMissingBundle,
			"bundle path %s is not a directory", artifact.BundlePath)
	}

	exeInfo, err := os.Stat(artifact.ExecutablePath)
	if os.IsNotExist(err) {
		return nil, entities.NewReleaseErrorf(entities.FailureMissingExecutable,
			"bundle executable not found at %s", artifact.ExecutablePath)
	}
	if err != nil {
		return nil, entities.NewReleaseError(entities.FailureMissingExecutable,
			fmt.Errorf("failed to stat executable: %w", err))
	}
	if exeInfo.IsDir() {
		return nil, entities.NewReleaseErrorf(entities.FailureMissingExecutable,
			"expected a file at %s, found a directory", artifact.ExecutablePath)
	}

	size := exeInfo.Size()
	artifact.SizeBytes = size

	if size < s.minBytes {
		return nil, entities.NewReleaseErrorf(entities.FailureUndersizedBinary,
			"executable is %d bytes, below the %d byte minimum; the build likely produced a stub", size, s.minBytes)
	}

	s.log.Debug("bundle validated",
		interfaces.F("bundle", artifact.BundlePath),
		interfaces.F("executable_bytes", size))

	return &entities.ValidationResult{
		Artifact:        artifact,
		ExecutableBytes: size,
		MinimumBytes:    s.minBytes,
	}, nil
}
