package config

var (
	ExtractThemeWithRegex = extractThemeWithRegex
	DefaultConfigYAML     = defaultConfigYAML
)
