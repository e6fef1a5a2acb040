// Package entities defines core domain models and data structures.
package entities

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ReleaseRequest describes a single release run for one version of the app.
type ReleaseRequest struct {
	Version       string
	Project       string
	Scheme        string
	AppName       string
	Configuration string
	RunID         string
}

// NewReleaseRequest builds a request for the given version using the
// identifiers from the release configuration.
func NewReleaseRequest(version string, cfg *ReleaseConfig) *ReleaseRequest {
	return &ReleaseRequest{
		Version:       strings.TrimSpace(version),
		Project:       cfg.Project,
		Scheme:        cfg.Scheme,
		AppName:       cfg.AppName,
		Configuration: cfg.Configuration,
	}
}

// Validate checks that the request can start a release. A request with a
// missing version or missing project identifiers must be rejected before any
// stage runs.
func (r *ReleaseRequest) Validate() error {
	if strings.TrimSpace(r.Version) == "" {
		return NewReleaseErrorf(FailureUsage, "version must not be empty")
	}
	if r.Project == "" {
		return NewReleaseErrorf(FailureUsage, "project must not be empty")
	}
	if r.Scheme == "" {
		return NewReleaseErrorf(FailureUsage, "scheme must not be empty")
	}
	if r.AppName == "" {
		return NewReleaseErrorf(FailureUsage, "app name must not be empty")
	}
	return nil
}

// BundleName returns the name of the application bundle directory.
func (r *ReleaseRequest) BundleName() string {
	return r.AppName + ".app"
}

// ArchiveName returns the versioned zip archive name.
func (r *ReleaseRequest) ArchiveName() string {
	return fmt.Sprintf("%s-v%s.zip", r.AppName, r.Version)
}

// ImageName returns the versioned disk image name.
func (r *ReleaseRequest) ImageName() string {
	return fmt.Sprintf("%s-v%s.dmg", r.AppName, r.Version)
}

// ManifestName returns the checksum manifest name for this release.
func (r *ReleaseRequest) ManifestName() string {
	return fmt.Sprintf("%s-v%s-SHA256SUMS", r.AppName, r.Version)
}

// BundleExecutable returns the conventional executable path inside a macOS
// application bundle: <bundle>/Contents/MacOS/<appName>.
func BundleExecutable(bundlePath, appName string) string {
	return filepath.Join(bundlePath, "Contents", "MacOS", appName)
}

// BuildArtifact is the output of the build stage: a compiled application
// bundle and the executable nested inside it.
type BuildArtifact struct {
	BundlePath     string
	ExecutablePath string

	// SizeBytes is the observed size of the executable. It is measured
	// during validation and is zero until then.
	SizeBytes int64
}

// ValidationResult records the evidence collected while validating a build
// artifact.
type ValidationResult struct {
	Artifact        *BuildArtifact
	ExecutableBytes int64
	MinimumBytes    int64
}

// SignedArtifact marks a bundle as signed in place. Signing is the only
// stage allowed to mutate the bundle; the paths are unchanged.
type SignedArtifact struct {
	Artifact *BuildArtifact
	Identity string
	AdHoc    bool
	SignedAt time.Time
}

// Checksum is the digest of a single release file.
type Checksum struct {
	Algorithm string
	Digest    string
}

// PackagedFile is one distributable output with its digest.
type PackagedFile struct {
	Path     string
	Checksum *Checksum
}

// PackageSet holds the distributable artifacts of a release.
type PackageSet struct {
	Archive   *PackagedFile
	DiskImage *PackagedFile
}

// Files returns the packaged files in a stable order, skipping entries that
// were never produced.
func (s *PackageSet) Files() []*PackagedFile {
	files := make([]*PackagedFile, 0, 2)
	if s.Archive != nil {
		files = append(files, s.Archive)
	}
	if s.DiskImage != nil {
		files = append(files, s.DiskImage)
	}
	return files
}

// ChecksumEntry is one line of a checksum manifest.
type ChecksumEntry struct {
	Digest   string
	Filename string
}
