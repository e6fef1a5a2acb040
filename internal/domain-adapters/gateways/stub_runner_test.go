package gateways

import (
	"context"
	"fmt"

	"github.com/shipcask/shipcask/internal/domain/entities"
)

// stubRunner records invocations and returns scripted results. Handlers can
// create files to mimic the side effects of the real tools.
type stubRunner struct {
	invocations []ToolInvocation
	handle      func(inv ToolInvocation) *ToolResult
}

func (s *stubRunner) Run(_ context.Context, inv ToolInvocation) *ToolResult {
	s.invocations = append(s.invocations, inv)
	if s.handle != nil {
		if res := s.handle(inv); res != nil {
			return res
		}
	}
	return &ToolResult{Success: true}
}

func (s *stubRunner) calls(tool string) []ToolInvocation {
	var out []ToolInvocation
	for _, inv := range s.invocations {
		if inv.Tool == tool {
			out = append(out, inv)
		}
	}
	return out
}

func toolFailure(exitCode int, stderr string) *ToolResult {
	return &ToolResult{
		Success:  false,
		ExitCode: exitCode,
		Stderr:   stderr,
		Error:    fmt.Errorf("exit status %d", exitCode),
	}
}

// argsContain reports whether want appears in args as a consecutive run.
func argsContain(args []string, want ...string) bool {
	if len(want) == 0 {
		return true
	}
	for i := 0; i+len(want) <= len(args); i++ {
		match := true
		for j, w := range want {
			if args[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func testRequest() *entities.ReleaseRequest {
	return &entities.ReleaseRequest{
		Version:       "1.2.0",
		Project:       "WrappedNotes.xcodeproj",
		Scheme:        "WrappedNotes",
		AppName:       "WrappedNotes",
		Configuration: "Release",
	}
}

func testSignedArtifact(bundlePath string) *entities.SignedArtifact {
	return &entities.SignedArtifact{
		Artifact: &entities.BuildArtifact{
			BundlePath:     bundlePath,
			ExecutablePath: entities.BundleExecutable(bundlePath, "WrappedNotes"),
		},
		Identity: "-",
		AdHoc:    true,
	}
}
