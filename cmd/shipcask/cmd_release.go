// Package main provides the shipcask CLI for releasing macOS applications.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/shipcask/shipcask/internal/domain-adapters/gateways"
	orchestrators "github.com/shipcask/shipcask/internal/domain-orchestrators"
	"github.com/shipcask/shipcask/internal/domain/entities"
	"github.com/shipcask/shipcask/internal/domain/interfaces"
	domainGateways "github.com/shipcask/shipcask/internal/domain/interfaces/gateways"
	"github.com/shipcask/shipcask/internal/domain/services"
	"github.com/shipcask/shipcask/internal/external-adapters/charmlog"
	"github.com/shipcask/shipcask/internal/external-adapters/gpg"
)

func runRelease(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("release", flag.ExitOnError)
	var (
		configPath = fs.String("config", "shipcask.yml", "Path to the release configuration")
		releaseDir = fs.String("release-dir", "", "Output directory for release artifacts (overrides config)")
		verbose    = fs.Bool("verbose", false, "Stream xcodebuild/hdiutil output")
		debug      = fs.Bool("debug", false, "Enable debug logging")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: shipcask release <version> [options]

Run the release pipeline: build, validate, sign, package, checksum.

Examples:
  shipcask release 1.2.0
  shipcask release 1.2.0 --config Configs/shipcask.yml
  shipcask release 1.2.0 --release-dir dist --verbose

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

	// Pipeline progress goes to stdout; only the final failure goes to stderr.
	logger := charmlog.New(os.Stdout, *debug)

	// Load release configuration
	cfg := loadConfig(ctx, *configPath)
	if *releaseDir != "" {
		cfg.ReleaseDir = *releaseDir
	}

	req := entities.NewReleaseRequest(version, cfg)
	req.RunID = uuid.NewString()
	logger.Debug("starting release run", interfaces.F("run_id", req.RunID))

	// Wire the pipeline stages
	runner := gateways.NewToolRunner(logger, *verbose)
	builder := gateways.NewXcodeBuilder(runner, cfg.BuildDir, logger)
	validator := services.NewBundleValidationService(cfg.Validation, logger)
	signer := gateways.NewCodesigner(runner, cfg.Signing, cfg.Entitlements, logger)
	archiver := gateways.NewDittoArchiver(runner, logger)
	dresser := gateways.NewFinderDresser(runner, cfg.DiskImage.Layout, req.BundleName(), logger)
	imager := gateways.NewHdiutilImager(runner, cfg.DiskImage, dresser, logger)

	var manifestSigner domainGateways.ManifestSigner
	if cfg.Signing.PGPKeyPath != "" {
		pgpSigner, err := gpg.NewSignerFromFile(cfg.Signing.PGPKeyPath)
		if err != nil {
			exitError(entities.NewReleaseError(entities.FailureUsage, err))
		}
		manifestSigner = pgpSigner
	}
	checksums := gateways.NewDigestEmitter(services.NewManifestService(), manifestSigner, os.Stdout, logger)

	orch := orchestrators.NewReleaseOrchestrator(
		builder,
		validator,
		signer,
		archiver,
		imager,
		checksums,
		orchestrators.ReleaseOrchestratorConfig{
			ReleaseDir: cfg.ReleaseDir,
		},
	)

	fmt.Printf("🚀 Releasing %s v%s\n\n", cfg.AppName, req.Version)

	result, err := orch.Release(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\n❌ %s\n", result.GetReleaseSummary())
		os.Exit(entities.KindOf(err).ExitCode())
	}

	fmt.Println()
	fmt.Println(result.GetReleaseSummary())
}
