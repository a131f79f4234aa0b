package config

const (
	defaultNRLDir    = "~/.local/share/resprint/nrl"
	defaultIndexPath = "~/.cache/resprint/response_index.json"
	defaultLogDir    = "~/.local/share/resprint/logs"
	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			NRLDir:    defaultNRLDir,
			IndexPath: defaultIndexPath,
			LogDir:    defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
