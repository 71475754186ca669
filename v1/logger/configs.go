package logger

const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// DefaultServiceName is attached to every log entry when Config.ServiceName is empty.
const DefaultServiceName = "pbseries"

// Config defines the configuration for the zap-backed logger.
type Config struct {
	// Level is one of debug, info, warning or error. Anything else is treated as info.
	Level string `yaml:"level" envconfig:"ZAP_LOGGER_LEVEL"`

	// EnableTracing makes the ...WithContext methods attach trace_id and span_id
	// from the OpenTelemetry span carried by the context.
	EnableTracing bool `yaml:"enable_tracing" envconfig:"LOGGER_ENABLE_TRACING"`

	// ServiceName is added to every entry as the "service" field.
	ServiceName string `yaml:"service_name" envconfig:"LOGGER_SERVICE_NAME"`
}
