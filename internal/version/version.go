// internal/version/version.go
package version

// Set at build time with -ldflags "-X github.com/mobs-lab/hubverse-dashboards/internal/version.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
