package gateways

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shipcask/shipcask/internal/domain/entities"
	"github.com/shipcask/shipcask/internal/domain/interfaces"
)

// DittoArchiver produces the zip artifact with ditto, which preserves the
// resource forks and extended attributes a signed bundle depends on. A plain
// zip writer would strip them and invalidate the signature.
type DittoArchiver struct {
	runner CommandRunner
	log    interfaces.Logger
}

// NewDittoArchiver creates an archiver backed by the ditto tool.
func NewDittoArchiver(runner CommandRunner, log interfaces.Logger) *DittoArchiver {
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &DittoArchiver{runner: runner, log: log}
}

// Archive compresses the signed bundle into destPath. The archive is written
// to a partial file first so an interrupted run never leaves a truncated zip
// at the final path.
func (a *DittoArchiver) Archive(ctx context.Context, signed *entities.SignedArtifact, destPath string) error {
	partial := destPath + ".partial"

	a.log.Info("archiving bundle", interfaces.F("dest", destPath))

	res := a.runner.Run(ctx, ToolInvocation{
		Tool: "ditto",
		Args: []string{
			"-c", "-k",
			"--sequesterRsrc",
			"--keepParent",
			signed.Artifact.BundlePath,
			partial,
		},
		Timeout:     10 * time.Minute,
		Description: "ditto archive",
	})
	if !res.Success {
		if err := os.Remove(partial); err != nil && !os.IsNotExist(err) {
			a.log.Warn("failed to remove partial archive", interfaces.F("path", partial), interfaces.F("error", err))
		}
		return res.ToolError("ditto archive")
	}

	// Re-runs for the same version overwrite the previous artifact.
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove previous archive: %w", err)
	}
	if err := os.Rename(partial, destPath); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}
