package entities

// ReleaseConfig is the parsed and validated release configuration. Every
// stage receives the piece of it that it needs; there is no package-level
// configuration state.
type ReleaseConfig struct {
	Project       string
	Scheme        string
	AppName       string
	Configuration string
	BuildDir      string
	ReleaseDir    string
	Entitlements  string
	Signing       SigningConfig
	Validation    ValidationConfig
	DiskImage     DiskImageConfig
	Packages      []PackageDependency
}

// SigningConfig controls the codesign invocation and optional checksum
// manifest signing.
type SigningConfig struct {
	// Identity is the signing identity. Empty means ad-hoc signing ("-").
	Identity string

	// HardenedRuntime enables the hardened runtime. Only honored when a
	// real identity is configured; ad-hoc signatures do not carry it.
	HardenedRuntime bool

	// PGPKeyPath points at an armored private key used to sign the
	// checksum manifest. Empty disables manifest signing.
	PGPKeyPath string
}

// AdHoc reports whether signing falls back to the ad-hoc identity.
func (s SigningConfig) AdHoc() bool {
	return s.Identity == ""
}

// ValidationConfig carries the bundle validation thresholds.
type ValidationConfig struct {
	MinExecutableKB int64
}

// MinBytes returns the executable size floor in bytes.
func (v ValidationConfig) MinBytes() int64 {
	return v.MinExecutableKB * 1024
}

// DiskImageConfig controls disk image assembly.
type DiskImageConfig struct {
	VolumeName string
	SizeMB     int
	Layout     WindowLayout
}

// WindowLayout describes the cosmetic Finder arrangement of the mounted
// image. Applying it is best-effort and never fails a release.
type WindowLayout struct {
	Enabled       bool
	IconSize      int
	AppX          int
	AppY          int
	ApplicationsX int
	ApplicationsY int
	WindowWidth   int
	WindowHeight  int
}

// PackageDependency names Swift package products to inject into the Xcode
// project file.
type PackageDependency struct {
	// Reference is the name of an XCRemoteSwiftPackageReference already
	// declared in the project, e.g. "mlx-swift".
	Reference string

	// Products are the package products to link into the app target.
	Products []string
}
