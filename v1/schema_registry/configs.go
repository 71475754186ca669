package schema_registry

import "time"

// Config holds configuration for the schema registry client and for the
// subjects preloaded into the schema registry at startup.
type Config struct {
	// URL is the schema registry endpoint (e.g., "http://localhost:8081").
	// An empty URL disables the startup preload.
	URL string `yaml:"url" envconfig:"SCHEMA_REGISTRY_URL"`

	// Username for basic auth (optional)
	Username string `yaml:"username" envconfig:"SCHEMA_REGISTRY_USER"`

	// Password for basic auth (optional)
	Password string `yaml:"password" envconfig:"SCHEMA_REGISTRY_PASSWORD"`

	// Timeout for HTTP requests
	Timeout time.Duration `yaml:"timeout" envconfig:"SCHEMA_REGISTRY_TIMEOUT"`

	// Subjects are loaded at their latest version, each as a unit named after
	// the subject. Protobuf references are loaded first under their import name.
	Subjects []string `yaml:"subjects" envconfig:"SCHEMA_REGISTRY_SUBJECTS"`
}
