package config

// Version is the Arbor binary version.
// Set at build time via: -ldflags "-X github.com/arborhq/arbor/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
