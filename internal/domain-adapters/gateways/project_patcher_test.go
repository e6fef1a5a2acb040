package gateways

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shipcask/shipcask/internal/domain/entities"
)

const fixturePbxproj = `// !$*UTF8*$!
{
	archiveVersion = 1;
	classes = {
	};
	objectVersion = 56;
	objects = {

/* Begin PBXBuildFile section */
		A1000001282A0001000000AA /* AppDelegate.swift in Sources */ = {isa = PBXBuildFile; fileRef = A1000002282A0001000000AA /* AppDelegate.swift */; };
/* End PBXBuildFile section */

/* Begin PBXFrameworksBuildPhase section */
		A1000020282A0001000000AA /* Frameworks */ = {
			isa = PBXFrameworksBuildPhase;
			buildActionMask = 2147483647;
			files = (
			);
			runOnlyForDeploymentPostprocessing = 0;
		};
/* End PBXFrameworksBuildPhase section */

/* Begin PBXNativeTarget section */
		A1000040282A0001000000AA /* WrappedNotes */ = {
			isa = PBXNativeTarget;
			buildConfigurationList = A1000041282A0001000000AA /* Build configuration list for PBXNativeTarget "WrappedNotes" */;
			buildPhases = (
				A1000021282A0001000000AA /* Sources */,
				A1000020282A0001000000AA /* Frameworks */,
			);
			buildRules = (
			);
			dependencies = (
			);
			name = WrappedNotes;
			productName = WrappedNotes;
			productReference = A1000042282A0001000000AA /* WrappedNotes.app */;
			productType = "com.apple.product-type.application";
		};
/* End PBXNativeTarget section */

/* Begin PBXProject section */
		A1000050282A0001000000AA /* Project object */ = {
			isa = PBXProject;
			buildConfigurationList = A1000051282A0001000000AA /* Build configuration list for PBXProject "WrappedNotes" */;
			mainGroup = A1000052282A0001000000AA;
			packageReferences = (
				96B796092F00EDE300F7DF93 /* XCRemoteSwiftPackageReference "swift-collections" */,
				96B7960A2F00EFF500F7DF93 /* XCRemoteSwiftPackageReference "swift-log" */,
			);
			targets = (
				A1000040282A0001000000AA /* WrappedNotes */,
			);
		};
/* End PBXProject section */

/* Begin XCRemoteSwiftPackageReference section */
		96B796092F00EDE300F7DF93 /* XCRemoteSwiftPackageReference "swift-collections" */ = {
			isa = XCRemoteSwiftPackageReference;
			repositoryURL = "https://github.com/apple/swift-collections";
		};
		96B7960A2F00EFF500F7DF93 /* XCRemoteSwiftPackageReference "swift-log" */ = {
			isa = XCRemoteSwiftPackageReference;
			repositoryURL = "https://github.com/apple/swift-log";
		};
/* End XCRemoteSwiftPackageReference section */
	};
	rootObject = A1000050282A0001000000AA /* Project object */;
}
`

func testDeps() []entities.PackageDependency {
	return []entities.PackageDependency{
		{Reference: "swift-collections", Products: []string{"Collections", "DequeModule"}},
		{Reference: "swift-log", Products: []string{"Logging"}},
	}
}

func writeFixtureProject(t *testing.T) string {
	t.Helper()
	projectPath := filepath.Join(t.TempDir(), "WrappedNotes.xcodeproj")
	if err := os.MkdirAll(projectPath, 0o755); err != nil {
		t.Fatalf("Failed to create project dir: %v", err)
	}
	pbxproj := filepath.Join(projectPath, "project.pbxproj")
	if err := os.WriteFile(pbxproj, []byte(fixturePbxproj), 0o644); err != nil {
		t.Fatalf("Failed to write fixture project: %v", err)
	}
	return projectPath
}

func TestProjectPatcher_Patch(t *testing.T) {
	patcher := NewProjectPatcher()
	projectPath := writeFixtureProject(t)

	result, err := patcher.PatchProductDependencies(projectPath, testDeps())
	if err != nil {
		t.Fatalf("PatchProductDependencies() error = %v", err)
	}

	if !result.Patched {
		t.Error("Patched = false, want true on first run")
	}
	if len(result.Products) != 3 {
		t.Errorf("Products = %v, want 3 products", result.Products)
	}

	raw, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("Failed to read patched project: %v", err)
	}
	content := string(raw)

	for _, want := range []string{
		"/* Begin XCSwiftPackageProductDependency section */",
		"isa = XCSwiftPackageProductDependency;",
		"productName = Collections;",
		"productName = DequeModule;",
		"productName = Logging;",
		"packageProductDependencies = (",
		productID("build", "Collections") + " /* Collections in Frameworks */",
		productID("dep", "Logging") + " /* Logging */",
		`package = 96B796092F00EDE300F7DF93 /* XCRemoteSwiftPackageReference "swift-collections" */;`,
		`package = 96B7960A2F00EFF500F7DF93 /* XCRemoteSwiftPackageReference "swift-log" */;`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("patched project missing %q", want)
		}
	}
}

func TestProjectPatcher_Patch_Idempotent(t *testing.T) {
	patcher := NewProjectPatcher()
	projectPath := writeFixtureProject(t)

	first, err := patcher.PatchProductDependencies(projectPath, testDeps())
	if err != nil {
		t.Fatalf("first patch error = %v", err)
	}
	afterFirst, _ := os.ReadFile(first.Path)

	second, err := patcher.PatchProductDependencies(projectPath, testDeps())
	if err != nil {
		t.Fatalf("second patch error = %v", err)
	}
	if second.Patched {
		t.Error("Patched = true on second run, want false")
	}

	afterSecond, _ := os.ReadFile(second.Path)
	if string(afterFirst) != string(afterSecond) {
		t.Error("second run modified an already patched project")
	}
}

func TestProjectPatcher_Patch_MissingReference(t *testing.T) {
	patcher := NewProjectPatcher()
	projectPath := writeFixtureProject(t)

	deps := []entities.PackageDependency{
		{Reference: "swift-async-algorithms", Products: []string{"AsyncAlgorithms"}},
	}
	_, err := patcher.PatchProductDependencies(projectPath, deps)
	if err == nil {
		t.Fatal("PatchProductDependencies() should have failed")
	}
	if !strings.Contains(err.Error(), `package reference "swift-async-algorithms"`) {
		t.Errorf("error = %v, want missing reference", err)
	}
}

func TestProjectPatcher_Patch_NoProducts(t *testing.T) {
	patcher := NewProjectPatcher()

	if _, err := patcher.PatchProductDependencies(writeFixtureProject(t), nil); err == nil {
		t.Error("PatchProductDependencies() should have failed without products")
	}
}

func TestProjectPatcher_Patch_ExistingDependencySection(t *testing.T) {
	patcher := NewProjectPatcher()
	projectPath := writeFixtureProject(t)

	// First run creates the section; patch a different product afterwards
	// and check the section is reused rather than duplicated.
	if _, err := patcher.PatchProductDependencies(projectPath, testDeps()[:1]); err != nil {
		t.Fatalf("first patch error = %v", err)
	}
	if _, err := patcher.PatchProductDependencies(projectPath, testDeps()[1:]); err != nil {
		t.Fatalf("second patch error = %v", err)
	}

	raw, _ := os.ReadFile(filepath.Join(projectPath, "project.pbxproj"))
	content := string(raw)

	if got := strings.Count(content, "/* Begin XCSwiftPackageProductDependency section */"); got != 1 {
		t.Errorf("dependency section declared %d times, want 1", got)
	}
	if !strings.Contains(content, "productName = Logging;") {
		t.Error("second patch did not add its product")
	}
	if !strings.Contains(content, "productName = Collections;") {
		t.Error("first patch entries lost")
	}
}

func TestProductID(t *testing.T) {
	id := productID("dep", "Collections")
	if len(id) != 24 {
		t.Errorf("productID length = %d, want 24", len(id))
	}
	if !isObjectID(id) {
		t.Errorf("productID %q is not an uppercase hex object ID", id)
	}
	if id != productID("dep", "Collections") {
		t.Error("productID is not deterministic")
	}
	if id == productID("build", "Collections") {
		t.Error("productID must differ per kind")
	}
}
