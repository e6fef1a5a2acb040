package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/shipcask/shipcask/internal/domain-adapters/gateways"
)

func runPatchProject(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("patch-project", flag.ExitOnError)
	var (
		configPath  = fs.String("config", "shipcask.yml", "Path to the release configuration")
		projectPath = fs.String("project", "", "Path to the .xcodeproj directory (default from config)")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: shipcask patch-project [options]

Link the Swift package products from the packages section of the
configuration into the Xcode project file. Each package must already be
referenced in the project; running twice is a no-op.

Examples:
  shipcask patch-project
  shipcask patch-project --project WrappedNotes.xcodeproj

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(2)
	}

	// Load release configuration
	cfg := loadConfig(ctx, *configPath)

	project := *projectPath
	if project == "" {
		project = cfg.Project
	}

	if len(cfg.Packages) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no packages configured in %s\n\n", *configPath)
		fs.Usage()
		os.Exit(2)
	}

	result, err := gateways.NewProjectPatcher().PatchProductDependencies(project, cfg.Packages)
	if err != nil {
		exitError(err)
	}

	if !result.Patched {
		fmt.Println("Project already patched.")
		return
	}

	fmt.Printf("✅ Linked %d package product(s) into %s\n", len(result.Products), result.Path)
	for _, product := range result.Products {
		fmt.Printf("   - %s\n", product)
	}
}
