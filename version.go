// Package agentmemory holds build metadata for the agent-memory adapter.
package agentmemory

import "fmt"

// Build metadata, overridden with -ldflags "-X" at release time.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// GetVersion returns the release version.
func GetVersion() string {
	return Version
}

// BuildInfo describes the binary on one line.
func BuildInfo() string {
	return fmt.Sprintf("agent-memory %s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
