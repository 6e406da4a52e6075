package config

const (
	defaultDataDir            = "~/.local/share/vocamail"
	defaultLogDir             = "~/.local/share/vocamail/logs"
	defaultMailPort           = 587
	defaultMailTimeoutSeconds = 30
	defaultWordsPerLevel      = 2
	defaultSelectionPolicy    = "random"
	defaultScheduleTimezone   = "Asia/Seoul"
	defaultScheduleWindow     = 60
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Mail: Mail{
			TimeoutSeconds: defaultMailTimeoutSeconds,
		},
		Selection: Selection{
			WordsPerLevel: defaultWordsPerLevel,
			Policy:        defaultSelectionPolicy,
			Levels:        []int{1, 2, 3},
		},
		Schedule: Schedule{
			Timezone:      defaultScheduleTimezone,
			WindowSeconds: defaultScheduleWindow,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
