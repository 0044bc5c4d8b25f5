package config

// Default returns a configuration populated with default values.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: "~/.local/share/slidecast/staging",
			LogDir:     "~/.local/share/slidecast/logs",
			APIBind:    "127.0.0.1:7878",
		},
		Render: Render{
			FPS:                24,
			Resolution:         "1920x1080",
			TransitionType:     "crossfade",
			TransitionDuration: 1.0,
			Codec:              "libx264",
			Preset:             "medium",
			CRF:                23,
			Threads:            0,
		},
		Subtitles: Subtitles{
			Font:               "DejaVu Sans Bold",
			FontSize:           48,
			FontColor:          "white",
			StrokeColor:        "black",
			StrokeWidth:        2,
			Typewriter:         true,
			Position:           "bottom",
			MaxTypewriterSteps: 30,
		},
		History: History{
			Enabled: true,
			Path:    "~/.local/share/slidecast/history.db",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
