package gateways

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/shipcask/shipcask/internal/domain/entities"
	"github.com/shipcask/shipcask/internal/domain/interfaces"
)

// WindowDresser arranges the Finder window of a mounted volume. Dressing is
// cosmetic: the imager logs a failure and continues with the default
// appearance.
type WindowDresser interface {
	Dress(ctx context.Context, volumePath string) error
}

// installInstructions is dropped into the image next to the bundle.
const installInstructions = "Drag the application icon onto the Applications folder to install.\n"

// stagingArea is the scratch directory a disk image is assembled from.
type stagingArea struct {
	path string
}

func newStagingArea(volumeName string) (*stagingArea, error) {
	dir, err := os.MkdirTemp("", "dmg-"+slug.Make(volumeName)+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	return &stagingArea{path: dir}, nil
}

func (s *stagingArea) remove() error {
	return os.RemoveAll(s.path)
}

// HdiutilImager builds the distributable disk image with hdiutil. The image
// is assembled read-write so Finder metadata can be written, then converted
// to a compressed read-only image at the destination path.
type HdiutilImager struct {
	runner  CommandRunner
	cfg     entities.DiskImageConfig
	dresser WindowDresser
	log     interfaces.Logger
}

// NewHdiutilImager creates an imager using the given disk image
// configuration. The dresser may be nil when no window layout is wanted.
func NewHdiutilImager(runner CommandRunner, cfg entities.DiskImageConfig, dresser WindowDresser, log interfaces.Logger) *HdiutilImager {
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &HdiutilImager{
		runner:  runner,
		cfg:     cfg,
		dresser: dresser,
		log:     log,
	}
}

// CreateImage builds the disk image for the signed bundle at destPath. The
// staging directory and the intermediate read-write image are removed before
// returning, whether or not creation succeeded.
func (g *HdiutilImager) CreateImage(ctx context.Context, signed *entities.SignedArtifact, destPath string) error {
	staging, err := newStagingArea(g.cfg.VolumeName)
	if err != nil {
		return err
	}
	defer func() {
		if err := staging.remove(); err != nil {
			g.log.Warn("failed to remove staging directory",
				interfaces.F("path", staging.path),
				interfaces.F("error", err))
		}
	}()

	if err := g.populateStaging(ctx, staging, signed); err != nil {
		return err
	}

	tmpImage := filepath.Join(filepath.Dir(destPath), "tmp_"+filepath.Base(destPath))
	defer func() {
		if err := os.Remove(tmpImage); err != nil && !os.IsNotExist(err) {
			g.log.Warn("failed to remove intermediate image",
				interfaces.F("path", tmpImage),
				interfaces.F("error", err))
		}
	}()

	if err := g.createWritableImage(ctx, staging, tmpImage); err != nil {
		return err
	}

	device, mountPoint, err := g.attach(ctx, tmpImage)
	if err != nil {
		return err
	}

	if g.cfg.Layout.Enabled && g.dresser != nil {
		if err := g.dresser.Dress(ctx, mountPoint); err != nil {
			g.log.Warn("window layout failed, image keeps the default appearance",
				interfaces.F("volume", mountPoint),
				interfaces.F("error", err))
		}
	}

	if err := g.detach(ctx, device); err != nil {
		return err
	}

	return g.convert(ctx, tmpImage, destPath)
}

func (g *HdiutilImager) populateStaging(ctx context.Context, staging *stagingArea, signed *entities.SignedArtifact) error {
	bundleName := filepath.Base(signed.Artifact.BundlePath)

	res := g.runner.Run(ctx, ToolInvocation{
		Tool: "ditto",
		Args: []string{
			signed.Artifact.BundlePath,
			filepath.Join(staging.path, bundleName),
		},
		Timeout:     10 * time.Minute,
		Description: "stage bundle",
	})
	if !res.Success {
		return res.ToolError("staging bundle copy")
	}

	if err := os.Symlink("/Applications", filepath.Join(staging.path, "Applications")); err != nil {
		return fmt.Errorf("failed to create Applications symlink: %w", err)
	}

	instructions := filepath.Join(staging.path, "INSTALL.txt")
	if err := os.WriteFile(instructions, []byte(installInstructions), 0o644); err != nil {
		return fmt.Errorf("failed to write install instructions: %w", err)
	}
	return nil
}

func (g *HdiutilImager) createWritableImage(ctx context.Context, staging *stagingArea, tmpImage string) error {
	g.log.Info("creating disk image", interfaces.F("volume", g.cfg.VolumeName))

	res := g.runner.Run(ctx, ToolInvocation{
		Tool: "hdiutil",
		Args: []string{
			"create",
			"-srcfolder", staging.path,
			"-volname", g.cfg.VolumeName,
			"-fs", "HFS+",
			"-format", "UDRW",
			"-size", fmt.Sprintf("%dm", g.cfg.SizeMB),
			"-ov",
			tmpImage,
		},
		Timeout:     10 * time.Minute,
		Description: "hdiutil create",
	})
	if !res.Success {
		return res.ToolError("disk image creation")
	}
	return nil
}

func (g *HdiutilImager) attach(ctx context.Context, tmpImage string) (device, mountPoint string, err error) {
	res := g.runner.Run(ctx, ToolInvocation{
		Tool: "hdiutil",
		Args: []string{
			"attach", tmpImage,
			"-readwrite", "-noverify", "-noautoopen",
		},
		Timeout:     5 * time.Minute,
		Description: "hdiutil attach",
	})
	if !res.Success {
		return "", "", res.ToolError("disk image attach")
	}
	return parseAttachOutput(res.Stdout)
}

// parseAttachOutput extracts the device node and mount point from hdiutil
// attach output. The mounted filesystem is reported on the line carrying the
// /Volumes/ path; the mount point is taken from that marker to the end of the
// line so volume names containing spaces survive.
func parseAttachOutput(output string) (device, mountPoint string, err error) {
	for _, line := range strings.Split(output, "\n") {
		idx := strings.Index(line, "/Volumes/")
		if idx < 0 {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		return fields[0], strings.TrimSpace(line[idx:]), nil
	}
	return "", "", fmt.Errorf("no mounted volume in hdiutil attach output: %q", output)
}

func (g *HdiutilImager) detach(ctx context.Context, device string) error {
	inv := ToolInvocation{
		Tool:        "hdiutil",
		Args:        []string{"detach", device},
		Timeout:     2 * time.Minute,
		Description: "hdiutil detach",
	}
	res := g.runner.Run(ctx, inv)
	if res.Success {
		return nil
	}

	// Finder may still hold the volume right after dressing; give it a
	// moment and retry once.
	g.log.Debug("detach failed, retrying", interfaces.F("device", device))
	time.Sleep(2 * time.Second)
	if res := g.runner.Run(ctx, inv); !res.Success {
		return res.ToolError("disk image detach")
	}
	return nil
}

func (g *HdiutilImager) convert(ctx context.Context, tmpImage, destPath string) error {
	// hdiutil appends .dmg to output paths without the extension, so the
	// partial keeps one and is renamed into place afterwards.
	partial := destPath + ".partial.dmg"

	res := g.runner.Run(ctx, ToolInvocation{
		Tool: "hdiutil",
		Args: []string{
			"convert", tmpImage,
			"-format", "UDZO",
			"-imagekey", "zlib-level=9",
			"-ov",
			"-o", partial,
		},
		Timeout:     10 * time.Minute,
		Description: "hdiutil convert",
	})
	if !res.Success {
		if err := os.Remove(partial); err != nil && !os.IsNotExist(err) {
			g.log.Warn("failed to remove partial image", interfaces.F("path", partial), interfaces.F("error", err))
		}
		return res.ToolError("disk image conversion")
	}

	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove previous image: %w", err)
	}
	if err := os.Rename(partial, destPath); err != nil {
		return fmt.Errorf("failed to finalize image: %w", err)
	}
	return nil
}
