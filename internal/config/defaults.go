package config

const (
	defaultDataDir      = "~/.local/share/reelpipe"
	defaultDownloadDir  = "~/.local/share/reelpipe/downloads"
	defaultLogDir       = "~/.local/share/reelpipe/logs"
	defaultServeBind    = "127.0.0.1:8788"
	defaultGraphBaseURL = "https://graph.facebook.com/v19.0"
	defaultPollAttempts = 10
	defaultPollInterval = 5
	defaultGraceDelay   = 10
	defaultFontFamily   = "DejaVu Sans"
	defaultFontSize     = 48
	defaultTopStrip     = 240
	defaultCaptionGap   = 12
	defaultFFmpegBin    = "ffmpeg"
	defaultFFprobeBin   = "ffprobe"
	defaultMaxDuration  = 89
	defaultHTTPTimeout  = 30
	defaultTikTokAPI    = "https://tikwm.com/api/"
	defaultYtDlpBin     = "yt-dlp"
	defaultNtfyTimeout  = 10
	defaultLogLevel     = "info"
	defaultLogFormat    = "console"
	defaultPostInterval = 7
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			DownloadDir: defaultDownloadDir,
			LogDir:      defaultLogDir,
			ServeBind:   defaultServeBind,
		},
		Publish: Publish{
			GraphBaseURL: defaultGraphBaseURL,
			PollAttempts: defaultPollAttempts,
			PollInterval: defaultPollInterval,
			GraceDelay:   defaultGraceDelay,
		},
		Transcode: Transcode{
			FontFamily:  defaultFontFamily,
			FontSize:    defaultFontSize,
			TopStrip:    defaultTopStrip,
			CaptionGap:  defaultCaptionGap,
			FFmpegBin:   defaultFFmpegBin,
			FFprobeBin:  defaultFFprobeBin,
			MaxDuration: defaultMaxDuration,
		},
		Downloaders: Downloaders{
			TikTokResolverURL: defaultTikTokAPI,
			YtDlpBin:          defaultYtDlpBin,
			RequestTimeout:    defaultHTTPTimeout,
		},
		Notifications: Notifications{
			NtfyRequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Scheduler: Scheduler{
			PostInterval: defaultPostInterval,
		},
	}
}
