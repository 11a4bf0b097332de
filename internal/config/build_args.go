package config

import "fmt"

// ModuleName is the name of the module, matching go.mod.
const ModuleName = "github/starchild/orderly-bridge"

// Injected at build time via -ldflags.
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// GetFormattedBuildArgs returns "<module> @ <commit> (<build date>)".
func GetFormattedBuildArgs() string {
	return fmt.Sprintf("%v @ %v (%v)", ModuleName, Commit, BuildDate)
}
