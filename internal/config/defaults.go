package config

const (
	defaultConfigPath       = "~/.config/apod/config.toml"
	defaultCacheDirFallback = "~/.local/share/apod/image_cache"
	defaultAPODBaseURL      = "https://api.nasa.gov/planetary/apod"
	defaultAPODAPIKey       = "DEMO_KEY"
	defaultAPODTimeout      = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir(),
		},
		APOD: APOD{
			BaseURL:        defaultAPODBaseURL,
			TimeoutSeconds: defaultAPODTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
