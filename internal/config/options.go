package config

import "time"

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns every configuration key with its default and meaning.
// Defaults, validation and the generated config file all read from this table.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "host", Default: "localhost", Comment: "Interface the live viewer listens on"},
		{Key: "port", Default: 3000, Comment: "Port the live viewer listens on"},
		{Key: "theme", Default: "system", Comment: "Initial viewer theme: light, dark or system"},

		{Key: "highlight.light", Default: "github", Comment: "Chroma style used for code blocks in the light theme"},
		{Key: "highlight.dark", Default: "github-dark", Comment: "Chroma style used for code blocks in the dark theme"},

		{Key: "watch.debounce", Default: 100 * time.Millisecond, Comment: "Quiet period after a file change before re-rendering"},

		{Key: "log.level", Default: "info", Comment: "Log level: debug, info, warn or error"},

		{Key: "view.width", Default: 100, Comment: "Word wrap width for terminal rendering"},
		{Key: "view.style", Default: "auto", Comment: "Glamour style for terminal rendering (auto, dark, light, notty, dracula, ...)"},
	}
}
