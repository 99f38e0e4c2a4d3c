package config

const (
	defaultStateDir             = "~/.local/share/listforge/state"
	defaultLogDir               = "~/.local/share/listforge/logs"
	defaultMarketplace          = "Amazon"
	defaultPathTemplate         = `[Marketplace]\Exports\[Manufacturer_Name]\[Series_Name]`
	defaultValidationTTLSeconds = 60
	defaultContentTimeout       = 60
	defaultValidationTimeout    = 30
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Export: Export{
			Marketplace:          defaultMarketplace,
			PathTemplate:         defaultPathTemplate,
			ValidationTTLSeconds: defaultValidationTTLSeconds,
		},
		Content: Content{
			TimeoutSeconds: defaultContentTimeout,
		},
		Validation: Validation{
			TimeoutSeconds: defaultValidationTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
