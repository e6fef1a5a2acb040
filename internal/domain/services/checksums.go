package services

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/shipcask/shipcask/internal/domain/entities"
)

// ChecksumAlgorithm is the digest algorithm recorded for every release file.
const ChecksumAlgorithm = "sha256"

// ManifestService renders and parses checksum manifests in the two-space
// shasum format, so published manifests verify with `shasum -a 256 -c`.
type ManifestService struct{}

// NewManifestService creates a new manifest service
func NewManifestService() *ManifestService {
	return &ManifestService{}
}

// Format renders checksum entries sorted by filename so that re-releasing
// the same version produces a byte-identical manifest.
func (s *ManifestService) Format(entries []entities.ChecksumEntry) string {
	sorted := make([]entities.ChecksumEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Filename < sorted[j].Filename })

	var b strings.Builder
	for _, e := range sorted {
		fmt.Fprintf(&b, "%s  %s\n", e.Digest, e.Filename)
	}
	return b.String()
}

// Parse reads a manifest back into entries. Blank lines are skipped;
// anything else that is not a "<digest>  <filename>" pair is an error.
func (s *ManifestService) Parse(data []byte) ([]entities.ChecksumEntry, error) {
	var entries []entities.ChecksumEntry

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		digest, filename, ok := strings.Cut(line, "  ")
		if !ok || filename == "" {
			return nil, fmt.Errorf("malformed checksum entry on line %d: %q", lineNo, line)
		}
		if len(digest) != 64 {
			return nil, fmt.Errorf("digest on line %d has %d characters, want 64", lineNo, len(digest))
		}
		if _, err := hex.DecodeString(digest); err != nil {
			return nil, fmt.Errorf("digest on line %d is not hex: %w", lineNo, err)
		}

		entries = append(entries, entities.ChecksumEntry{
			Digest:   strings.ToLower(digest),
			Filename: filename,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	return entries, nil
}
