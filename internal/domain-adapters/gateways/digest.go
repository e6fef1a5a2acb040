package gateways

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shipcask/shipcask/internal/domain/entities"
	"github.com/shipcask/shipcask/internal/domain/interfaces"
	"github.com/shipcask/shipcask/internal/domain/interfaces/gateways"
	"github.com/shipcask/shipcask/internal/domain/services"
)

// FileSHA256 returns the hex-encoded SHA-256 digest of the file at path.
func FileSHA256(path string) (string, error) {
	file, err := os.Open(path) //nolint:gosec // G304: Path comes from release configuration
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close() //nolint:errcheck // Defer close on read-only file

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// DigestEmitter computes digests for the packaged artifacts, echoes the
// manifest on its writer and stores it next to the artifacts. When a signer
// is attached the manifest also gets a detached armored signature.
type DigestEmitter struct {
	manifests *services.ManifestService
	signer    gateways.ManifestSigner
	out       io.Writer
	log       interfaces.Logger
}

// NewDigestEmitter creates an emitter writing manifest lines to out. The
// signer may be nil when manifest signing is not configured.
func NewDigestEmitter(manifests *services.ManifestService, signer gateways.ManifestSigner, out io.Writer, log interfaces.Logger) *DigestEmitter {
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &DigestEmitter{
		manifests: manifests,
		signer:    signer,
		out:       out,
		log:       log,
	}
}

// EmitChecksums digests every packaged file, records the checksums on the
// set, and writes the manifest to manifestPath.
func (e *DigestEmitter) EmitChecksums(ctx context.Context, set *entities.PackageSet, manifestPath string) error {
	files := set.Files()
	if len(files) == 0 {
		return fmt.Errorf("no packaged files to checksum")
	}

	entries := make([]entities.ChecksumEntry, 0, len(files))
	for _, f := range files {
		digest, err := FileSHA256(f.Path)
		if err != nil {
			return fmt.Errorf("failed to checksum %s: %w", filepath.Base(f.Path), err)
		}
		f.Checksum = &entities.Checksum{
			Algorithm: services.ChecksumAlgorithm,
			Digest:    digest,
		}
		entries = append(entries, entities.ChecksumEntry{
			Digest:   digest,
			Filename: filepath.Base(f.Path),
		})
	}

	manifest := e.manifests.Format(entries)
	if _, err := io.WriteString(e.out, manifest); err != nil {
		return fmt.Errorf("failed to print checksums: %w", err)
	}
	//nolint:gosec // G306: Manifest ships alongside the artifacts
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
		return fmt.Errorf("failed to write checksum manifest: %w", err)
	}

	if e.signer != nil {
		sigPath := manifestPath + ".asc"
		if err := e.signer.SignManifest(ctx, manifestPath, sigPath); err != nil {
			return fmt.Errorf("failed to sign checksum manifest: %w", err)
		}
		e.log.Debug("manifest signed", interfaces.F("signature", sigPath))
	}
	return nil
}
