// Package version holds the build version, overridden at release time with
// -ldflags "-X github.com/chrisjrex/voxcli/internal/version.Version=...".
package version

var Version = "dev"
