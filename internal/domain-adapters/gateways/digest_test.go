package gateways

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shipcask/shipcask/internal/domain/entities"
	"github.com/shipcask/shipcask/internal/domain/services"
)

const (
	emptyDigest = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	helloDigest = "dffd6021bb2bd5b0af676290809ec3a53191dd81c7f70a4b28688a362182986f"
)

type stubManifestSigner struct {
	manifestPath  string
	signaturePath string
	err           error
}

func (s *stubManifestSigner) SignManifest(_ context.Context, manifestPath, signaturePath string) error {
	s.manifestPath = manifestPath
	s.signaturePath = signaturePath
	if s.err != nil {
		return s.err
	}
	return os.WriteFile(signaturePath, []byte("-----BEGIN PGP SIGNATURE-----\n"), 0o600)
}

func testPackageSet(t *testing.T, dir string) *entities.PackageSet {
	t.Helper()

	zipPath := filepath.Join(dir, "WrappedNotes-v1.2.0.zip")
	if err := os.WriteFile(zipPath, []byte("Hello, World!"), 0o600); err != nil {
		t.Fatalf("Failed to create archive fixture: %v", err)
	}
	dmgPath := filepath.Join(dir, "WrappedNotes-v1.2.0.dmg")
	if err := os.WriteFile(dmgPath, nil, 0o600); err != nil {
		t.Fatalf("Failed to create image fixture: %v", err)
	}

	return &entities.PackageSet{
		Archive:   &entities.PackagedFile{Path: zipPath},
		DiskImage: &entities.PackagedFile{Path: dmgPath},
	}
}

func TestDigestEmitter_EmitChecksums(t *testing.T) {
	dir := t.TempDir()
	set := testPackageSet(t, dir)
	out := &bytes.Buffer{}
	emitter := NewDigestEmitter(services.NewManifestService(), nil, out, nil)

	manifestPath := filepath.Join(dir, "WrappedNotes-v1.2.0-SHA256SUMS")
	if err := emitter.EmitChecksums(context.Background(), set, manifestPath); err != nil {
		t.Fatalf("EmitChecksums() error = %v", err)
	}

	want := emptyDigest + "  WrappedNotes-v1.2.0.dmg\n" +
		helloDigest + "  WrappedNotes-v1.2.0.zip\n"
	if out.String() != want {
		t.Errorf("stdout manifest = %q, want %q", out.String(), want)
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("Manifest missing: %v", err)
	}
	if string(data) != want {
		t.Errorf("manifest file = %q, want %q", data, want)
	}

	if set.Archive.Checksum == nil || set.Archive.Checksum.Digest != helloDigest {
		t.Errorf("archive checksum = %+v, want %s", set.Archive.Checksum, helloDigest)
	}
	if set.DiskImage.Checksum == nil || set.DiskImage.Checksum.Digest != emptyDigest {
		t.Errorf("image checksum = %+v, want %s", set.DiskImage.Checksum, emptyDigest)
	}
	if set.Archive.Checksum.Algorithm != services.ChecksumAlgorithm {
		t.Errorf("algorithm = %q, want %q", set.Archive.Checksum.Algorithm, services.ChecksumAlgorithm)
	}
}

func TestDigestEmitter_EmitChecksums_WithSigner(t *testing.T) {
	dir := t.TempDir()
	set := testPackageSet(t, dir)
	signer := &stubManifestSigner{}
	emitter := NewDigestEmitter(services.NewManifestService(), signer, &bytes.Buffer{}, nil)

	manifestPath := filepath.Join(dir, "WrappedNotes-v1.2.0-SHA256SUMS")
	if err := emitter.EmitChecksums(context.Background(), set, manifestPath); err != nil {
		t.Fatalf("EmitChecksums() error = %v", err)
	}

	if signer.manifestPath != manifestPath {
		t.Errorf("signed manifest = %q, want %q", signer.manifestPath, manifestPath)
	}
	if signer.signaturePath != manifestPath+".asc" {
		t.Errorf("signature path = %q, want %q", signer.signaturePath, manifestPath+".asc")
	}
}

func TestDigestEmitter_EmitChecksums_SignerFailure(t *testing.T) {
	dir := t.TempDir()
	set := testPackageSet(t, dir)
	signer := &stubManifestSigner{err: errors.New("no private key")}
	emitter := NewDigestEmitter(services.NewManifestService(), signer, &bytes.Buffer{}, nil)

	err := emitter.EmitChecksums(context.Background(), set, filepath.Join(dir, "SHA256SUMS"))
	if err == nil {
		t.Fatal("EmitChecksums() should have failed")
	}
	if !strings.Contains(err.Error(), "failed to sign checksum manifest") {
		t.Errorf("EmitChecksums() error = %v, want signing failure", err)
	}
}

func TestDigestEmitter_EmitChecksums_MissingFile(t *testing.T) {
	dir := t.TempDir()
	set := &entities.PackageSet{
		Archive: &entities.PackagedFile{Path: filepath.Join(dir, "absent.zip")},
	}
	emitter := NewDigestEmitter(services.NewManifestService(), nil, &bytes.Buffer{}, nil)

	err := emitter.EmitChecksums(context.Background(), set, filepath.Join(dir, "SHA256SUMS"))
	if err == nil {
		t.Fatal("EmitChecksums() should have failed")
	}
	if !strings.Contains(err.Error(), "failed to checksum absent.zip") {
		t.Errorf("EmitChecksums() error = %v, want checksum failure", err)
	}
}

func TestDigestEmitter_EmitChecksums_EmptySet(t *testing.T) {
	emitter := NewDigestEmitter(services.NewManifestService(), nil, &bytes.Buffer{}, nil)

	err := emitter.EmitChecksums(context.Background(), &entities.PackageSet{}, "SHA256SUMS")
	if err == nil {
		t.Fatal("EmitChecksums() should have failed for an empty set")
	}
}

func TestFileSHA256(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(path, []byte("Hello, World!"), 0o600); err != nil {
		t.Fatalf("Failed to create fixture: %v", err)
	}

	digest, err := FileSHA256(path)
	if err != nil {
		t.Fatalf("FileSHA256() error = %v", err)
	}
	if digest != helloDigest {
		t.Errorf("FileSHA256() = %q, want %q", digest, helloDigest)
	}
}

func TestFileSHA256_MissingFile(t *testing.T) {
	if _, err := FileSHA256(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("FileSHA256() should have failed for a missing file")
	}
}
