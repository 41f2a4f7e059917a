package config

const (
	defaultDataDir           = "~/.local/share/scribe/data"
	defaultLogDir            = "~/.local/share/scribe/logs"
	defaultAPIBind           = "127.0.0.1:7470"
	defaultLogFormat         = "text"
	defaultLogLevel          = "info"
	defaultWhisperXModel     = "base"
	defaultVADMethod         = "silero"
	defaultMaxSpeakers       = 2
	defaultNtfyTimeout       = 10
	defaultRecoveryReportTTL = 3600
	defaultMaxUploadMiB      = 512
	defaultMinFreeSpaceMiB   = 1024
)

// allowedAudioExtensions lists the upload extensions accepted by the service.
var allowedAudioExtensions = map[string]struct{}{
	".wav":  {},
	".mp3":  {},
	".ogg":  {},
	".flac": {},
	".m4a":  {},
	".aac":  {},
	".mp4":  {},
	".aiff": {},
	".wma":  {},
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		WhisperX: WhisperX{
			Model:       defaultWhisperXModel,
			VADMethod:   defaultVADMethod,
			MaxSpeakers: defaultMaxSpeakers,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
			Errors:         true,
			Completions:    true,
		},
		Workflow: Workflow{
			RecoveryReportTTL: defaultRecoveryReportTTL,
			MaxUploadMiB:      defaultMaxUploadMiB,
			MinFreeSpaceMiB:   defaultMinFreeSpaceMiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// IsAllowedFile reports whether the filename carries an accepted audio extension.
func IsAllowedFile(filename string) bool {
	ext := lowerExt(filename)
	if ext == "" {
		return false
	}
	_, ok := allowedAudioExtensions[ext]
	return ok
}
