package schema

// Config lists the schema sources loaded from the local filesystem at startup.
type Config struct {
	// Files are .proto paths, each loaded under its base name.
	Files []string `yaml:"files" envconfig:"SCHEMA_FILES"`

	// Directory, when set, contributes every *.proto file directly inside it.
	Directory string `yaml:"directory" envconfig:"SCHEMA_DIRECTORY"`
}
