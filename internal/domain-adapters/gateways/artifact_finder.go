package gateways

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shipcask/shipcask/internal/domain/entities"
)

// ReleaseArtifacts holds the files a finished release leaves in the release
// directory. Signature is empty when the manifest was not signed.
type ReleaseArtifacts struct {
	Archive   string
	DiskImage string
	Manifest  string
	Signature string
}

// Files returns the artifact paths covered by the checksum manifest.
func (a *ReleaseArtifacts) Files() []string {
	return []string{a.Archive, a.DiskImage}
}

// ArtifactFinder locates the artifacts a release run left behind.
type ArtifactFinder struct{}

// NewArtifactFinder creates a new artifact finder.
func NewArtifactFinder() *ArtifactFinder {
	return &ArtifactFinder{}
}

// Find locates the artifacts for req in releaseDir. The archive, disk image
// and manifest must all exist; the manifest signature is optional.
func (f *ArtifactFinder) Find(releaseDir string, req *entities.ReleaseRequest) (*ReleaseArtifacts, error) {
	if _, err := os.Stat(releaseDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("release directory does not exist: %s", releaseDir)
	}

	arts := &ReleaseArtifacts{
		Archive:   filepath.Join(releaseDir, req.ArchiveName()),
		DiskImage: filepath.Join(releaseDir, req.ImageName()),
		Manifest:  filepath.Join(releaseDir, req.ManifestName()),
	}
	for _, required := range []string{arts.Archive, arts.DiskImage, arts.Manifest} {
		if _, err := os.Stat(required); err != nil {
			return nil, fmt.Errorf("missing release artifact %s: %w", filepath.Base(required), err)
		}
	}

	signature := arts.Manifest + ".asc"
	if _, err := os.Stat(signature); err == nil {
		arts.Signature = signature
	}
	return arts, nil
}
