package gateways

import (
	"context"
	"debug/macho"
	"fmt"
	"os"
	"strings"

	"github.com/shipcask/shipcask/internal/domain/entities"
)

// lcCodeSignature is the LC_CODE_SIGNATURE load command number.
const lcCodeSignature = 0x1d

// BundleInspector reads the bundle executable's Mach-O headers using pure Go.
// Uses the debug/macho package - no external tools required.
type BundleInspector struct{}

// NewBundleInspector creates a new bundle inspector.
func NewBundleInspector() *BundleInspector {
	return &BundleInspector{}
}

// Inspect reports architecture and hardening facts about the executable at
// executablePath. Universal binaries are summarized from their first slice.
func (i *BundleInspector) Inspect(_ context.Context, executablePath string) (*entities.ExecutableInfo, error) {
	stat, err := os.Stat(executablePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat executable: %w", err)
	}

	if fat, err := macho.OpenFat(executablePath); err == nil {
		//nolint:errcheck // Defer close on read-only file
		defer fat.Close()

		arches := make([]string, 0, len(fat.Arches))
		for _, arch := range fat.Arches {
			arches = append(arches, archName(arch.Cpu))
		}
		return describeExecutable(executablePath, stat.Size(), arches, fat.Arches[0].File), nil
	}

	f, err := macho.Open(executablePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Mach-O file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	return describeExecutable(executablePath, stat.Size(), []string{archName(f.Cpu)}, f), nil
}

func describeExecutable(path string, size int64, arches []string, f *macho.File) *entities.ExecutableInfo {
	info := &entities.ExecutableInfo{
		Path:          path,
		SizeBytes:     size,
		Architectures: arches,
		FileType:      fileTypeName(f.Type),
		PIE:           f.Flags&macho.FlagPIE != 0,
	}

	if f.Symtab != nil {
		for _, sym := range f.Symtab.Syms {
			if strings.Contains(sym.Name, "__stack_chk_fail") {
				info.StackCanaries = true
				break
			}
		}
	}

	// debug/macho has no type for LC_CODE_SIGNATURE; it surfaces as raw
	// load command bytes starting with the command number.
	for _, load := range f.Loads {
		raw, ok := load.(macho.LoadBytes)
		if !ok || len(raw) < 4 {
			continue
		}
		if f.ByteOrder.Uint32(raw[0:4]) == lcCodeSignature {
			info.CodeSigned = true
			break
		}
	}
	return info
}

func archName(cpu macho.Cpu) string {
	switch cpu {
	case macho.CpuAmd64:
		return "x86_64"
	case macho.CpuArm64:
		return "arm64"
	case macho.Cpu386:
		return "i386"
	case macho.CpuArm:
		return "arm"
	default:
		return cpu.String()
	}
}

func fileTypeName(t macho.Type) string {
	switch t {
	case macho.TypeExec:
		return "executable"
	case macho.TypeDylib:
		return "dylib"
	case macho.TypeBundle:
		return "bundle"
	case macho.TypeObj:
		return "object"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}
