// Package orchestrators coordinates the release pipeline across domain
// services and gateways.
package orchestrators

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shipcask/shipcask/internal/domain/entities"
)

// BundleBuilder interface for producing the application bundle
type BundleBuilder interface {
	Build(ctx context.Context, req *entities.ReleaseRequest) (*entities.BuildArtifact, error)
}

// BundleValidator interface for checking the built bundle
type BundleValidator interface {
	Validate(ctx context.Context, artifact *entities.BuildArtifact) (*entities.ValidationResult, error)
}

// BundleSigner interface for code signing the bundle
type BundleSigner interface {
	Sign(ctx context.Context, artifact *entities.BuildArtifact) (*entities.SignedArtifact, error)
}

// Archiver interface for producing the zip artifact
type Archiver interface {
	Archive(ctx context.Context, signed *entities.SignedArtifact, destPath string) error
}

// DiskImager interface for producing the disk image artifact
type DiskImager interface {
	CreateImage(ctx context.Context, signed *entities.SignedArtifact, destPath string) error
}

// ChecksumEmitter interface for the checksum manifest
type ChecksumEmitter interface {
	EmitChecksums(ctx context.Context, set *entities.PackageSet, manifestPath string) error
}

// ReleaseOrchestrator drives a release through its stages: build, validate,
// sign, package, checksum. Stages run strictly in order and the first
// failure aborts the run.
type ReleaseOrchestrator struct {
	releaseDir string
	builder    BundleBuilder
	validator  BundleValidator
	signer     BundleSigner
	archiver   Archiver
	imager     DiskImager
	checksums  ChecksumEmitter
}

// ReleaseOrchestratorConfig holds configuration for the orchestrator
type ReleaseOrchestratorConfig struct {
	ReleaseDir string
}

// NewReleaseOrchestrator creates a new release orchestrator
func NewReleaseOrchestrator(
	builder BundleBuilder,
	validator BundleValidator,
	signer BundleSigner,
	archiver Archiver,
	imager DiskImager,
	checksums ChecksumEmitter,
	config ReleaseOrchestratorConfig,
) *ReleaseOrchestrator {
	releaseDir := config.ReleaseDir
	if releaseDir == "" {
		releaseDir = "releases"
	}

	return &ReleaseOrchestrator{
		releaseDir: releaseDir,
		builder:    builder,
		validator:  validator,
		signer:     signer,
		archiver:   archiver,
		imager:     imager,
		checksums:  checksums,
	}
}

// ReleaseResult contains the result of a release run
type ReleaseResult struct {
	Request          *entities.ReleaseRequest
	State            entities.State
	FailedDuring     entities.State
	Artifact         *entities.BuildArtifact
	Validation       *entities.ValidationResult
	Signed           *entities.SignedArtifact
	Packages         *entities.PackageSet
	BuildDuration    time.Duration
	ValidateDuration time.Duration
	SignDuration     time.Duration
	PackageDuration  time.Duration
	ChecksumDuration time.Duration
	TotalDuration    time.Duration
	Success          bool
	Error            error
}

// Release executes the complete release workflow for req. The returned
// result always describes how far the run got; the error is non-nil exactly
// when the result is not successful.
func (o *ReleaseOrchestrator) Release(ctx context.Context, req *entities.ReleaseRequest) (*ReleaseResult, error) {
	startTime := time.Now()
	result := &ReleaseResult{Request: req, State: entities.StateIdle}

	// Step 1: Check the request before any work starts
	if err := req.Validate(); err != nil {
		return o.fail(result, entities.FailureUsage, err, startTime)
	}

	// Step 2: Build the application bundle
	result.State = result.State.Next()
	buildStart := time.Now()
	artifact, err := o.builder.Build(ctx, req)
	if err != nil {
		return o.fail(result, entities.FailureBuild, fmt.Errorf("build failed: %w", err), startTime)
	}
	result.Artifact = artifact
	result.BuildDuration = time.Since(buildStart)

	// Step 3: Validate the bundle before anything downstream touches it
	result.State = result.State.Next()
	validateStart := time.Now()
	validation, err := o.validator.Validate(ctx, artifact)
	if err != nil {
		return o.fail(result, entities.FailureMissingBundle, err, startTime)
	}
	result.Validation = validation
	result.ValidateDuration = time.Since(validateStart)

	// Step 4: Sign the bundle in place
	result.State = result.State.Next()
	signStart := time.Now()
	signed, err := o.signer.Sign(ctx, artifact)
	if err != nil {
		return o.fail(result, entities.FailureSigning, fmt.Errorf("signing failed: %w", err), startTime)
	}
	result.Signed = signed
	result.SignDuration = time.Since(signStart)

	// Step 5: Package the signed bundle as zip and disk image
	result.State = result.State.Next()
	packageStart := time.Now()
	if err := os.MkdirAll(o.releaseDir, 0o755); err != nil {
		return o.fail(result, entities.FailurePackaging,
			fmt.Errorf("failed to create release directory: %w", err), startTime)
	}

	archivePath := filepath.Join(o.releaseDir, req.ArchiveName())
	if err := o.archiver.Archive(ctx, signed, archivePath); err != nil {
		return o.fail(result, entities.FailurePackaging, fmt.Errorf("archiving failed: %w", err), startTime)
	}

	imagePath := filepath.Join(o.releaseDir, req.ImageName())
	if err := o.imager.CreateImage(ctx, signed, imagePath); err != nil {
		return o.fail(result, entities.FailurePackaging, fmt.Errorf("disk image failed: %w", err), startTime)
	}
	result.Packages = &entities.PackageSet{
		Archive:   &entities.PackagedFile{Path: archivePath},
		DiskImage: &entities.PackagedFile{Path: imagePath},
	}
	result.PackageDuration = time.Since(packageStart)

	// Step 6: Digest the artifacts and publish the checksum manifest
	result.State = result.State.Next()
	checksumStart := time.Now()
	manifestPath := filepath.Join(o.releaseDir, req.ManifestName())
	if err := o.checksums.EmitChecksums(ctx, result.Packages, manifestPath); err != nil {
		return o.fail(result, entities.FailureChecksum, fmt.Errorf("checksums failed: %w", err), startTime)
	}
	result.ChecksumDuration = time.Since(checksumStart)

	result.State = result.State.Next()
	result.Success = true
	result.TotalDuration = time.Since(startTime)
	return result, nil
}

// fail marks the result failed, keeping the stage it died in. Errors that
// already carry a failure kind keep it; everything else is classified by the
// stage that raised it.
func (o *ReleaseOrchestrator) fail(result *ReleaseResult, kind entities.FailureKind, err error, startTime time.Time) (*ReleaseResult, error) {
	result.FailedDuring = result.State
	result.State = entities.StateFailed
	result.Error = entities.EnsureKind(err, kind)
	result.TotalDuration = time.Since(startTime)
	return result, result.Error
}

// GetReleaseSummary returns a human-readable summary of the release
func (r *ReleaseResult) GetReleaseSummary() string {
	if !r.Success {
		return fmt.Sprintf("Release failed during %s: %v", r.FailedDuring, r.Error)
	}

	return fmt.Sprintf(`Release successful!
App: %s
Version: %s
Archive: %s
Disk image: %s
Build: %v
Validate: %v
Sign: %v
Package: %v
Checksum: %v
Total: %v`,
		r.Request.AppName,
		r.Request.Version,
		r.Packages.Archive.Path,
		r.Packages.DiskImage.Path,
		r.BuildDuration,
		r.ValidateDuration,
		r.SignDuration,
		r.PackageDuration,
		r.ChecksumDuration,
		r.TotalDuration,
	)
}
