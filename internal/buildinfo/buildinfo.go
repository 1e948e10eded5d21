// Package buildinfo reports the version baked into the binary by the Go
// toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Version returns the module version, or "dev" for local builds.
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	return "dev"
}

// VersionWithTags returns the version plus any build tags recorded at
// compile time.
func VersionWithTags() string {
	version := Version()
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return version
	}
	for _, setting := range info.Settings {
		if setting.Key == "-tags" && setting.Value != "" {
			return fmt.Sprintf("%s (tags: %s)", version, setting.Value)
		}
	}
	return version
}
