package gateways

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shipcask/shipcask/internal/domain/entities"
	"github.com/shipcask/shipcask/internal/domain/interfaces"
)

// XcodeBuilder compiles the application bundle with xcodebuild. The build
// directory is pinned with CONFIGURATION_BUILD_DIR so the bundle lands at a
// deterministic path.
type XcodeBuilder struct {
	runner   CommandRunner
	buildDir string
	log      interfaces.Logger
}

// NewXcodeBuilder creates a builder writing into buildDir.
func NewXcodeBuilder(runner CommandRunner, buildDir string, log interfaces.Logger) *XcodeBuilder {
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &XcodeBuilder{
		runner:   runner,
		buildDir: buildDir,
		log:      log,
	}
}

// Build runs a clean release build of the requested scheme and returns the
// expected artifact locations. Whether the bundle actually appeared is the
// validator's concern.
func (b *XcodeBuilder) Build(ctx context.Context, req *entities.ReleaseRequest) (*entities.BuildArtifact, error) {
	buildDir, err := filepath.Abs(b.buildDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve build directory: %w", err)
	}

	// A stale bundle from a previous run must never be mistaken for this
	// build's output.
	if err := os.RemoveAll(buildDir); err != nil {
		return nil, fmt.Errorf("failed to clear build directory: %w", err)
	}

	b.log.Info("building application",
		interfaces.F("scheme", req.Scheme),
		interfaces.F("configuration", req.Configuration))

	clean := b.runner.Run(ctx, ToolInvocation{
		Tool: "xcodebuild",
		Args: []string{
			"-project", req.Project,
			"-scheme", req.Scheme,
			"-configuration", req.Configuration,
			"clean",
		},
		Timeout:     5 * time.Minute,
		Description: "xcodebuild clean",
	})
	if !clean.Success {
		return nil, clean.ToolError("xcodebuild clean")
	}

	build := b.runner.Run(ctx, ToolInvocation{
		Tool: "xcodebuild",
		Args: []string{
			"-project", req.Project,
			"-scheme", req.Scheme,
			"-configuration", req.Configuration,
			fmt.Sprintf("CONFIGURATION_BUILD_DIR=%s", buildDir),
			"build",
		},
		Timeout:     30 * time.Minute,
		Description: "xcodebuild build",
	})
	if !build.Success {
		return nil, build.ToolError("xcodebuild build")
	}

	bundle := filepath.Join(buildDir, req.BundleName())
	return &entities.BuildArtifact{
		BundlePath:     bundle,
		ExecutablePath: entities.BundleExecutable(bundle, req.AppName),
	}, nil
}
