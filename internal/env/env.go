package env

// AppName is the name reported in logs and in generated reports.
const AppName = "bootinfo"

// Set at link time with -ldflags "-X github.com/ostafen/bootinfo/internal/env.Version=...".
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)
