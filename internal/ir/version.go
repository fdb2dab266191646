package ir

// Version constants for the hashed formats and the toolchain.
const (
	// FormatVersion is bumped whenever a hash domain changes.
	FormatVersion = "1"

	// ToolVersion is the optimal toolchain version.
	ToolVersion = "0.1.0"
)
