package gateways

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/shipcask/shipcask/internal/domain/entities"
	"github.com/shipcask/shipcask/internal/domain/interfaces"
)

// dressScript drives Finder over AppleScript. Placeholders: volume name,
// window bounds (left, top, right, bottom), icon size, bundle name, bundle
// position (x, y), Applications position (x, y).
const dressScript = `tell application "Finder"
	tell disk "%s"
		open
		set current view of container window to icon view
		set toolbar visible of container window to false
		set statusbar visible of container window to false
		set the bounds of container window to {%d, %d, %d, %d}
		set viewOptions to the icon view options of container window
		set arrangement of viewOptions to not arranged
		set icon size of viewOptions to %d
		set position of item "%s" of container window to {%d, %d}
		set position of item "Applications" of container window to {%d, %d}
		close
		open
		update without registering applications
		delay 1
	end tell
end tell`

// FinderDresser lays out the mounted volume's Finder window with osascript:
// icon view, fixed bounds, and the bundle positioned next to the
// Applications symlink.
type FinderDresser struct {
	runner     CommandRunner
	layout     entities.WindowLayout
	bundleName string
	log        interfaces.Logger
}

// NewFinderDresser creates a dresser for the named bundle.
func NewFinderDresser(runner CommandRunner, layout entities.WindowLayout, bundleName string, log interfaces.Logger) *FinderDresser {
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &FinderDresser{
		runner:     runner,
		layout:     layout,
		bundleName: bundleName,
		log:        log,
	}
}

// Dress arranges the Finder window of the volume mounted at volumePath.
func (d *FinderDresser) Dress(ctx context.Context, volumePath string) error {
	const left, top = 100, 100
	script := fmt.Sprintf(dressScript,
		filepath.Base(volumePath),
		left, top, left+d.layout.WindowWidth, top+d.layout.WindowHeight,
		d.layout.IconSize,
		d.bundleName, d.layout.AppX, d.layout.AppY,
		d.layout.ApplicationsX, d.layout.ApplicationsY,
	)

	d.log.Debug("dressing volume window", interfaces.F("volume", volumePath))

	res := d.runner.Run(ctx, ToolInvocation{
		Tool:        "osascript",
		Args:        []string{"-e", script},
		Timeout:     time.Minute,
		Description: "finder window layout",
	})
	if !res.Success {
		return res.ToolError("finder window layout")
	}
	return nil
}
