package yaml

import (
	"testing"
)

// FuzzConfigParser exercises the YAML config parser with arbitrary input.
// Run with: go test -fuzz=FuzzConfigParser -fuzztime=30s ./internal/external-adapters/yaml/
func FuzzConfigParser(f *testing.F) {
	// Seed corpus with valid and edge-case inputs
	seeds := [][]byte{
		[]byte(`project: WrappedNotes.xcodeproj
scheme: WrappedNotes
app_name: WrappedNotes
`),
		[]byte(`project: App.xcodeproj
scheme: App
app_name: App
signing:
  identity: "Developer ID Application: Example Corp (ABCDE12345)"
  hardened_runtime: true
disk_image:
  volume_name: App
  size_mb: 150
  window_layout:
    enabled: false
packages:
  - reference: swift-collections
    products:
      - Collections
`),
		[]byte(``),
		[]byte(`project: ""`),
		[]byte(`{}`),
		[]byte(`[]`),
		[]byte(`project: test
  bad: indentation
`),
		[]byte(`project: a
project: b
`),
	}

	for _, seed := range seeds {
		f.Add(seed)
	}

	parser := NewConfigParser()
	f.Fuzz(func(_ *testing.T, data []byte) {
		// Must not panic on any input
		_, _ = parser.Parse(data)
	})
}
