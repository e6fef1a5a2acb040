package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shipcask/shipcask/internal/domain/entities"
	"github.com/shipcask/shipcask/internal/domain/interfaces/repositories"
	"github.com/shipcask/shipcask/internal/external-adapters/yaml"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	command := os.Args[1]

	// Dispatch to subcommand
	switch command {
	case "release":
		runRelease(ctx, os.Args[2:])
	case "validate":
		runValidate(ctx, os.Args[2:])
	case "verify":
		runVerify(ctx, os.Args[2:])
	case "patch-project":
		runPatchProject(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Println(`shipcask - macOS application release pipeline

Usage:
  shipcask <command> [options]

Commands:
  release        Build, validate, sign, package, and checksum a release
  validate       Check an existing build without releasing
  verify         Recompute release checksums and check the manifest signature
  patch-project  Link configured Swift package products into the Xcode project

Use "shipcask <command> --help" for more information about a command.`)
}

// exitError prints err to stderr and terminates with its mapped exit code.
func exitError(err error) {
	fmt.Fprintf(os.Stderr, "❌ %v\n", err)
	os.Exit(entities.KindOf(err).ExitCode())
}

// loadConfig reads the release configuration at path. Configuration problems
// are usage errors: the pipeline never started.
func loadConfig(ctx context.Context, path string) *entities.ReleaseConfig {
	var repo repositories.ConfigRepository = yaml.NewConfigRepository()

	cfg, err := repo.Load(ctx, path)
	if err != nil {
		exitError(entities.NewReleaseError(entities.FailureUsage, err))
	}
	return cfg
}
