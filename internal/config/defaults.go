package config

const (
	defaultOrganizedDir   = "~/.local/share/shoebox/organized"
	defaultVideosDir      = "~/.local/share/shoebox/videos"
	defaultStateDir       = "~/.local/share/shoebox/state"
	defaultLogDir         = "~/.local/share/shoebox/logs"
	defaultPhotosBaseURL  = "https://photoslibrary.googleapis.com"
	defaultRequestTimeout = 60
	defaultCallDelayMS    = 1000
	defaultMaxRetries     = 3
	defaultRetryDelayMS   = 2000
	defaultPrefixLabel    = "Photo album"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OrganizedDir: defaultOrganizedDir,
			VideosDir:    defaultVideosDir,
			StateDir:     defaultStateDir,
			LogDir:       defaultLogDir,
		},
		Photos: Photos{
			BaseURL:        defaultPhotosBaseURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Upload: Upload{
			CallDelayMS:  defaultCallDelayMS,
			MaxRetries:   defaultMaxRetries,
			RetryDelayMS: defaultRetryDelayMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
