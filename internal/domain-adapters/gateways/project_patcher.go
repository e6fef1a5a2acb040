package gateways

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shipcask/shipcask/internal/domain/entities"
)

// ProjectPatcher injects Swift package product dependencies into an Xcode
// project file. A checked-in project that never resolved its packages in the
// IDE is missing the product references, and a command-line release build
// cannot link them until they are added.
type ProjectPatcher struct{}

// PatchResult reports what a patch run did.
type PatchResult struct {
	Path     string
	Patched  bool
	Products []string
}

// NewProjectPatcher creates a new project patcher.
func NewProjectPatcher() *ProjectPatcher {
	return &ProjectPatcher{}
}

// productID derives a stable pbxproj object ID for a product entry, so a
// second run can recognize its own edits. Xcode only requires IDs to be
// unique 24-digit hex strings.
func productID(kind, product string) string {
	sum := sha256.Sum256([]byte(kind + ":" + product))
	return strings.ToUpper(hex.EncodeToString(sum[:12]))
}

// PatchProductDependencies wires the configured package products into the
// project at projectPath. The run is idempotent: a project that already
// carries the generated entries is left untouched.
func (p *ProjectPatcher) PatchProductDependencies(projectPath string, deps []entities.PackageDependency) (*PatchResult, error) {
	var products []string
	for _, dep := range deps {
		products = append(products, dep.Products...)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("no package products configured")
	}

	pbxproj := filepath.Join(projectPath, "project.pbxproj")
	info, err := os.Stat(pbxproj)
	if err != nil {
		return nil, fmt.Errorf("failed to stat project file: %w", err)
	}
	raw, err := os.ReadFile(pbxproj) //nolint:gosec // G304: Path comes from release configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	content := string(raw)

	if strings.Contains(content, productID("dep", products[0])) {
		return &PatchResult{Path: pbxproj, Patched: false, Products: products}, nil
	}

	refIDs := make(map[string]string, len(deps))
	for _, dep := range deps {
		refID, err := findPackageReference(content, dep.Reference)
		if err != nil {
			return nil, err
		}
		refIDs[dep.Reference] = refID
	}

	patched, err := insertProductDependencies(content, deps, refIDs, products)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(pbxproj, []byte(patched), info.Mode()); err != nil {
		return nil, fmt.Errorf("failed to write project file: %w", err)
	}
	return &PatchResult{Path: pbxproj, Patched: true, Products: products}, nil
}

// findPackageReference resolves the object ID of the named
// XCRemoteSwiftPackageReference. The package itself must already be declared
// in the project; the patcher only wires products to it.
func findPackageReference(content, name string) (string, error) {
	marker := fmt.Sprintf("XCRemoteSwiftPackageReference %q", name)
	for _, line := range strings.Split(content, "\n") {
		if !strings.Contains(line, marker) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) > 0 && isObjectID(fields[0]) {
			return fields[0], nil
		}
	}
	return "", fmt.Errorf("project has no package reference %q; add the package in Xcode first", name)
}

func isObjectID(s string) bool {
	if len(s) != 24 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789ABCDEF", r) {
			return false
		}
	}
	return true
}

//nolint:gocyclo // Line-oriented pbxproj surgery is one long dispatch
func insertProductDependencies(content string, deps []entities.PackageDependency, refIDs map[string]string, products []string) (string, error) {
	lines := strings.SplitAfter(content, "\n")

	// A target that already lists package products gets ours joined in;
	// otherwise a fresh list is planted after the productType key.
	hasDepList := strings.Contains(content, "packageProductDependencies = (")

	var out []string
	inFrameworks := false
	inTarget := false
	sawDepSection := false
	for _, line := range lines {
		out = append(out, line)
		switch {
		case strings.Contains(line, "/* Begin PBXBuildFile section */"):
			for _, product := range products {
				out = append(out, fmt.Sprintf("\t\t%s /* %s in Frameworks */ = {isa = PBXBuildFile; productRef = %s /* %s */; };\n",
					productID("build", product), product, productID("dep", product), product))
			}

		case strings.Contains(line, "/* Begin PBXFrameworksBuildPhase section */"):
			inFrameworks = true
		case inFrameworks && strings.Contains(line, "files = ("):
			for _, product := range products {
				out = append(out, fmt.Sprintf("\t\t\t\t%s /* %s in Frameworks */,\n", productID("build", product), product))
			}
			inFrameworks = false

		case strings.Contains(line, "/* Begin PBXNativeTarget section */"):
			inTarget = true
		case inTarget && hasDepList && strings.Contains(line, "packageProductDependencies = ("):
			for _, product := range products {
				out = append(out, fmt.Sprintf("\t\t\t\t%s /* %s */,\n", productID("dep", product), product))
			}
			inTarget = false
		case inTarget && !hasDepList && strings.Contains(line, "productType = "):
			out = append(out, "\t\t\tpackageProductDependencies = (\n")
			for _, product := range products {
				out = append(out, fmt.Sprintf("\t\t\t\t%s /* %s */,\n", productID("dep", product), product))
			}
			out = append(out, "\t\t\t);\n")
			inTarget = false

		case strings.Contains(line, "/* Begin XCSwiftPackageProductDependency section */"):
			out = append(out, dependencyEntries(deps, refIDs)...)
			sawDepSection = true
		}
	}

	if sawDepSection {
		return strings.Join(out, ""), nil
	}

	// No dependency section yet; create one ahead of the project section.
	var final []string
	inserted := false
	for _, line := range out {
		if !inserted && strings.Contains(line, "/* Begin PBXProject section */") {
			final = append(final, "/* Begin XCSwiftPackageProductDependency section */\n")
			final = append(final, dependencyEntries(deps, refIDs)...)
			final = append(final, "/* End XCSwiftPackageProductDependency section */\n", "\n")
			inserted = true
		}
		final = append(final, line)
	}
	if !inserted {
		return "", fmt.Errorf("project file has no PBXProject section")
	}
	return strings.Join(final, ""), nil
}

func dependencyEntries(deps []entities.PackageDependency, refIDs map[string]string) []string {
	var entries []string
	for _, dep := range deps {
		for _, product := range dep.Products {
			entries = append(entries,
				fmt.Sprintf("\t\t%s /* %s */ = {\n", productID("dep", product), product),
				"\t\t\tisa = XCSwiftPackageProductDependency;\n",
				fmt.Sprintf("\t\t\tpackage = %s /* XCRemoteSwiftPackageReference %q */;\n", refIDs[dep.Reference], dep.Reference),
				fmt.Sprintf("\t\t\tproductName = %s;\n", product),
				"\t\t};\n",
			)
		}
	}
	return entries
}
