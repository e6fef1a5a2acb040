// Package gpg signs and verifies checksum manifests using ProtonMail's
// go-crypto, a maintained, modern fork of golang.org/x/crypto/openpgp.
// This is in external-adapters to isolate the external dependency.
package gpg

import (
	"context"
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// Signer produces detached armored signatures with a private key loaded
// from disk. The key must not be passphrase-protected; release signing
// keys live in a keychain or CI secret store and arrive decrypted.
type Signer struct {
	entity *openpgp.Entity
}

// NewSignerFromFile loads a signing key from an armored or binary key file.
func NewSignerFromFile(keyPath string) (*Signer, error) {
	//nolint:gosec // G304: keyPath comes from the signing configuration
	f, err := os.Open(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open key file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	entities, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		// Try reading as binary
		if _, seekErr := f.Seek(0, 0); seekErr != nil {
			return nil, fmt.Errorf("failed to reset key file: %w", seekErr)
		}
		entities, err = openpgp.ReadKeyRing(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read key: %w", err)
		}
	}

	for _, entity := range entities {
		if entity.PrivateKey == nil {
			continue
		}
		if entity.PrivateKey.Encrypted {
			return nil, fmt.Errorf("private key in %s is passphrase-protected", keyPath)
		}
		return &Signer{entity: entity}, nil
	}

	return nil, fmt.Errorf("no private key found in %s", keyPath)
}

// SignManifest writes a detached armored signature for the manifest.
func (s *Signer) SignManifest(_ context.Context, manifestPath, signaturePath string) error {
	//nolint:gosec // G304: manifestPath is produced by the release pipeline
	manifest, err := os.Open(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer manifest.Close()

	sig, err := os.Create(signaturePath)
	if err != nil {
		return fmt.Errorf("failed to create signature file: %w", err)
	}

	if err := openpgp.ArmoredDetachSign(sig, s.entity, manifest, nil); err != nil {
		_ = sig.Close()
		_ = os.Remove(signaturePath)
		return fmt.Errorf("failed to sign manifest: %w", err)
	}

	if err := sig.Close(); err != nil {
		return fmt.Errorf("failed to finalize signature file: %w", err)
	}

	return nil
}
