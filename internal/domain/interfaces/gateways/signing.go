// Package gateways defines outbound contracts the domain depends on.
package gateways

import "context"

// ManifestSigner produces a detached armored signature for a checksum
// manifest. The manifest is signed, never the artifacts themselves; the
// application bundle carries its own codesign signature.
type ManifestSigner interface {
	SignManifest(ctx context.Context, manifestPath, signaturePath string) error
}

// ManifestVerifier checks a detached signature against a checksum manifest.
type ManifestVerifier interface {
	VerifyManifest(ctx context.Context, manifestPath, signaturePath string) error
}
