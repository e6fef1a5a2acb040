package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/shipcask/shipcask/internal/domain-adapters/gateways"
	"github.com/shipcask/shipcask/internal/domain/entities"
	"github.com/shipcask/shipcask/internal/domain/services"
	"github.com/shipcask/shipcask/internal/external-adapters/gpg"
)

func runVerify(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	var (
		configPath = fs.String("config", "shipcask.yml", "Path to the release configuration")
		releaseDir = fs.String("release-dir", "", "Directory containing the release artifacts (overrides config)")
		keyPath    = fs.String("key", "", "Armored public key for checking the manifest signature")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: shipcask verify <version> [options]

Recompute the SHA-256 digest of each release artifact and compare it against
the published checksum manifest. With --key, also check the detached PGP
signature on the manifest.

Examples:
  shipcask verify 1.2.0
  shipcask verify 1.2.0 --release-dir dist
  shipcask verify 1.2.0 --key release-signing.pub.asc

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(2)
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: version is required\n\n")
		fs.Usage()
		os.Exit(2)
	}
	version := fs.Arg(0)

	// Load release configuration
	cfg := loadConfig(ctx, *configPath)
	if *releaseDir != "" {
		cfg.ReleaseDir = *releaseDir
	}

	req := entities.NewReleaseRequest(version, cfg)
	if err := req.Validate(); err != nil {
		exitError(err)
	}

	// Locate the artifacts for this version
	artifacts, err := gateways.NewArtifactFinder().Find(cfg.ReleaseDir, req)
	if err != nil {
		exitError(entities.NewReleaseError(entities.FailureChecksum, err))
	}

	fmt.Printf("🔍 Verifying %s v%s in %s\n\n", cfg.AppName, req.Version, cfg.ReleaseDir)

	//nolint:gosec // G304: manifest path comes from the release directory
	manifestData, err := os.ReadFile(artifacts.Manifest)
	if err != nil {
		exitError(entities.NewReleaseError(entities.FailureChecksum,
			fmt.Errorf("failed to read manifest: %w", err)))
	}
	entries, err := services.NewManifestService().Parse(manifestData)
	if err != nil {
		exitError(entities.NewReleaseError(entities.FailureChecksum, err))
	}

	want := make(map[string]string, len(entries))
	for _, e := range entries {
		want[e.Filename] = e.Digest
	}

	// Recompute digests concurrently; each goroutine writes its own slot.
	files := artifacts.Files()
	digests := make([]string, len(files))
	var eg errgroup.Group
	for i, path := range files {
		i, path := i, path
		eg.Go(func() error {
			digest, err := gateways.FileSHA256(path)
			if err != nil {
				return err
			}
			digests[i] = digest
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		exitError(entities.NewReleaseError(entities.FailureChecksum, err))
	}

	failed := 0
	seen := make(map[string]bool, len(files))
	for i, path := range files {
		name := filepath.Base(path)
		seen[name] = true

		expected, ok := want[name]
		switch {
		case !ok:
			fmt.Printf("❌ %s: not listed in the manifest\n", name)
			failed++
		case expected != digests[i]:
			fmt.Printf("❌ %s: digest mismatch\n", name)
			fmt.Printf("     manifest: %s\n", expected)
			fmt.Printf("     computed: %s\n", digests[i])
			failed++
		default:
			fmt.Printf("✅ %s\n", name)
		}
	}

	// Manifest entries that no longer have a file are failures too.
	for _, e := range entries {
		if !seen[e.Filename] {
			fmt.Printf("❌ %s: listed in the manifest but not found\n", e.Filename)
			failed++
		}
	}

	switch {
	case *keyPath != "":
		fmt.Println("\n🔐 Verifying manifest signature...")
		if artifacts.Signature == "" {
			fmt.Printf("❌ no signature next to the manifest (%s.asc missing)\n", filepath.Base(artifacts.Manifest))
			failed++
			break
		}
		verifier := gpg.NewVerifier()
		if err := verifier.ImportKeyFromFile(*keyPath); err != nil {
			exitError(entities.NewReleaseError(entities.FailureUsage, err))
		}
		if err := verifier.VerifyManifest(ctx, artifacts.Manifest, artifacts.Signature); err != nil {
			fmt.Printf("❌ %v\n", err)
			failed++
		} else {
			fmt.Println("✅ manifest signature verified")
		}
	case artifacts.Signature != "":
		fmt.Println("\nℹ️  Signature present but not checked (pass --key to verify)")
	}

	fmt.Println()
	if failed > 0 {
		exitError(entities.NewReleaseErrorf(entities.FailureChecksum,
			"%d verification check(s) failed", failed))
	}
	fmt.Println("✅ All artifacts verified")
}
