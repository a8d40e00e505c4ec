package constants

// Defaults applied to asset targets when the configuration leaves them out
const (
	// DefaultACL is the canned ACL applied to uploaded objects
	DefaultACL = "private"

	// DefaultContentType is used when neither the extension lookup nor the
	// file group supplies a content type
	DefaultContentType = "application/octet-stream"

	// MaxConcurrentTargets caps how many targets sync at the same time
	MaxConcurrentTargets = 3

	// DefaultConfigFile is the asset configuration read by the CLI
	DefaultConfigFile = "assets.yml"
)
