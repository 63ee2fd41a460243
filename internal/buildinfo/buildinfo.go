package buildinfo

import "time"

// Set via -ldflags at build time
var (
	BuildTime  string // when the binary was compiled
	CommitHash string // short git commit hash
)

var startedAt = time.Now().UTC()

// StartTime is recorded when the process starts
var StartTime = startedAt.Format(time.RFC3339)

// Uptime returns how long the process has been running.
func Uptime() time.Duration {
	return time.Since(startedAt).Round(time.Second)
}
