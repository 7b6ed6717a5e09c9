// Package version holds the application version string, overridable at build
// time via -ldflags "-X github.com/deepstock/deepstock-backend/internal/version.Version=...".
package version

// Version is the application version reported by the system endpoints.
var Version = "dev"
