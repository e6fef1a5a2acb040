package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shipcask/shipcask/internal/domain-adapters/gateways"
	"github.com/shipcask/shipcask/internal/domain/entities"
	"github.com/shipcask/shipcask/internal/domain/services"
	"github.com/shipcask/shipcask/internal/external-adapters/charmlog"
)

func runValidate(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var (
		configPath = fs.String("config", "shipcask.yml", "Path to the release configuration")
		bundlePath = fs.String("bundle", "", "Path to the .app bundle (default <build_dir>/<app_name>.app)")
		jsonOut    = fs.Bool("json", false, "Print the executable report as JSON")
		debug      = fs.Bool("debug", false, "Enable debug logging")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: shipcask validate [options]

Check an existing application bundle the way the release pipeline would,
without building or releasing anything. The exit code matches the release
pipeline: 4 for a missing bundle, 5 for a missing executable, 6 for an
undersized executable.

Examples:
  shipcask validate
  shipcask validate --bundle build/WrappedNotes.app
  shipcask validate --json

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(2)
	}

	logger := charmlog.New(os.Stdout, *debug)

	// Load release configuration
	cfg := loadConfig(ctx, *configPath)

	bundle := *bundlePath
	if bundle == "" {
		bundle = filepath.Join(cfg.BuildDir, cfg.AppName+".app")
	}
	artifact := &entities.BuildArtifact{
		BundlePath:     bundle,
		ExecutablePath: entities.BundleExecutable(bundle, cfg.AppName),
	}

	validator := services.NewBundleValidationService(cfg.Validation, logger)
	result, err := validator.Validate(ctx, artifact)
	if err != nil {
		exitError(err)
	}

	fmt.Printf("✅ Bundle valid: %s\n", bundle)
	fmt.Printf("   Executable: %s (%d bytes, minimum %d)\n",
		artifact.ExecutablePath, result.ExecutableBytes, result.MinimumBytes)

	// Informational Mach-O report; never gates the bundle.
	info, err := gateways.NewBundleInspector().Inspect(ctx, artifact.ExecutablePath)
	if err != nil {
		fmt.Printf("⚠️  Executable inspection unavailable: %v\n", err)
		return
	}

	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			exitError(err)
		}
		fmt.Println(string(data))
		return
	}

	fmt.Println("\n🔍 Executable report:")
	fmt.Printf("   Type: %s\n", info.FileType)
	fmt.Printf("   Architectures: %s\n", strings.Join(info.Architectures, ", "))
	fmt.Printf("   Universal binary: %v\n", info.Universal())
	fmt.Printf("   Position independent: %v\n", info.PIE)
	fmt.Printf("   Stack canaries: %v\n", info.StackCanaries)
	fmt.Printf("   Code signature: %v\n", info.CodeSigned)
}
