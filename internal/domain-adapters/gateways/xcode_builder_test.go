package gateways

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestXcodeBuilder_Build_Invocations(t *testing.T) {
	runner := &stubRunner{}
	buildDir := filepath.Join(t.TempDir(), "build")
	builder := NewXcodeBuilder(runner, buildDir, nil)
	req := testRequest()

	artifact, err := builder.Build(context.Background(), req)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(runner.invocations) != 2 {
		t.Fatalf("Build() ran %d tools, want 2", len(runner.invocations))
	}

	clean := runner.invocations[0]
	if clean.Tool != "xcodebuild" || clean.Args[len(clean.Args)-1] != "clean" {
		t.Errorf("first invocation = %s %v, want xcodebuild ... clean", clean.Tool, clean.Args)
	}

	build := runner.invocations[1]
	if build.Args[len(build.Args)-1] != "build" {
		t.Errorf("second invocation args = %v, want trailing build action", build.Args)
	}
	if !argsContain(build.Args, "-project", "WrappedNotes.xcodeproj") {
		t.Errorf("build args = %v, missing -project", build.Args)
	}
	if !argsContain(build.Args, "-scheme", "WrappedNotes") {
		t.Errorf("build args = %v, missing -scheme", build.Args)
	}
	if !argsContain(build.Args, "-configuration", "Release") {
		t.Errorf("build args = %v, missing -configuration", build.Args)
	}

	absBuildDir, _ := filepath.Abs(buildDir)
	if !argsContain(build.Args, "CONFIGURATION_BUILD_DIR="+absBuildDir) {
		t.Errorf("build args = %v, missing pinned build dir", build.Args)
	}

	wantBundle := filepath.Join(absBuildDir, "WrappedNotes.app")
	if artifact.BundlePath != wantBundle {
		t.Errorf("BundlePath = %q, want %q", artifact.BundlePath, wantBundle)
	}
	wantExe := filepath.Join(wantBundle, "Contents", "MacOS", "WrappedNotes")
	if artifact.ExecutablePath != wantExe {
		t.Errorf("ExecutablePath = %q, want %q", artifact.ExecutablePath, wantExe)
	}
}

func TestXcodeBuilder_Build_ClearsStaleBuildDir(t *testing.T) {
	runner := &stubRunner{}
	buildDir := filepath.Join(t.TempDir(), "build")

	stale := filepath.Join(buildDir, "WrappedNotes.app")
	if err := os.MkdirAll(stale, 0o755); err != nil {
		t.Fatalf("Failed to create stale bundle: %v", err)
	}

	builder := NewXcodeBuilder(runner, buildDir, nil)
	if _, err := builder.Build(context.Background(), testRequest()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale bundle still present at %s", stale)
	}
}

func TestXcodeBuilder_Build_CleanFails(t *testing.T) {
	runner := &stubRunner{
		handle: func(inv ToolInvocation) *ToolResult {
			if inv.Args[len(inv.Args)-1] == "clean" {
				return toolFailure(65, "error: scheme not found\n")
			}
			return nil
		},
	}
	builder := NewXcodeBuilder(runner, t.TempDir(), nil)

	_, err := builder.Build(context.Background(), testRequest())
	if err == nil {
		t.Fatal("Build() should have failed")
	}
	if !strings.Contains(err.Error(), "xcodebuild clean") {
		t.Errorf("Build() error = %v, want clean failure", err)
	}
	if len(runner.invocations) != 1 {
		t.Errorf("Build() ran %d tools after clean failure, want 1", len(runner.invocations))
	}
}

func TestXcodeBuilder_Build_BuildFails(t *testing.T) {
	runner := &stubRunner{
		handle: func(inv ToolInvocation) *ToolResult {
			if inv.Args[len(inv.Args)-1] == "build" {
				return toolFailure(65, "error: compilation failed\n")
			}
			return nil
		},
	}
	builder := NewXcodeBuilder(runner, t.TempDir(), nil)

	_, err := builder.Build(context.Background(), testRequest())
	if err == nil {
		t.Fatal("Build() should have failed")
	}
	if !strings.Contains(err.Error(), "xcodebuild build failed") {
		t.Errorf("Build() error = %v, want build failure", err)
	}
	if !strings.Contains(err.Error(), "compilation failed") {
		t.Errorf("Build() error = %v, want tool stderr", err)
	}
}
