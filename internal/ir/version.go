package ir

// Version constants for the wire format and engine.
const (
	// WireVersion is the snapshot wire format version.
	WireVersion = "1"

	// EngineVersion is the crease engine version.
	EngineVersion = "0.1.0"
)
