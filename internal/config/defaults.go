package config

const (
	defaultSettingsFile            = "~/.config/tagsmith/tag_settings.csv"
	defaultLogDir                  = "~/.local/share/tagsmith/logs"
	defaultAPIBind                 = "127.0.0.1:7610"
	defaultHistoryPath             = "~/.local/share/tagsmith/history.db"
	defaultInferenceURL            = "http://127.0.0.1:8000"
	defaultInferenceTimeoutSeconds = 30
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SettingsFile: defaultSettingsFile,
			LogDir:       defaultLogDir,
			APIBind:      defaultAPIBind,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Inference: Inference{
			Enabled:        true,
			URL:            defaultInferenceURL,
			TimeoutSeconds: defaultInferenceTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
