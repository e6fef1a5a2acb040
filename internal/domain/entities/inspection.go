package entities

// ExecutableInfo describes the bundle's main executable as read from its
// Mach-O headers. It is informational output for the validate command and
// never gates a release.
type ExecutableInfo struct {
	Path          string   `json:"path"`
	SizeBytes     int64    `json:"size_bytes"`
	Architectures []string `json:"architectures"`
	FileType      string   `json:"file_type"`
	PIE           bool     `json:"pie"`
	StackCanaries bool     `json:"stack_canaries"`
	CodeSigned    bool     `json:"code_signed"`
}

// Universal reports whether the executable carries more than one
// architecture slice.
func (i *ExecutableInfo) Universal() bool {
	return len(i.Architectures) > 1
}
