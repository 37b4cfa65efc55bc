package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	goyaml "github.com/goccy/go-yaml"

	_ "embed"

	"github.com/macropower/folio/pkg/ui"
	"github.com/macropower/folio/pkg/ui/theme"
	"github.com/macropower/folio/pkg/yaml"
)

const (
	APIVersion = "folio.jacobcolvin.com/v1beta1"
	Kind       = "Configuration"
)

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	ErrInvalidAPIVersion = errors.New("invalid apiVersion")
	ErrInvalidKind       = errors.New("invalid kind")

	ValidAPIVersions = []string{APIVersion}
	ValidKinds       = []string{Kind}
)

type Config struct {
	UI *ui.Config `yaml:"ui,omitempty"`
	// APIVersion specifies the API version for this configuration.
	APIVersion string `yaml:"apiVersion"`
	// Kind defines the type of configuration.
	Kind string `yaml:"kind"`
	// StatePath is where reading positions are kept. Empty uses the user
	// state directory.
	StatePath string `yaml:"state-path,omitempty"`
	// FontDirs are searched for fonts in addition to the system and user
	// font directories.
	FontDirs []string `yaml:"font-dirs,omitempty"`
}

func NewConfig() *Config {
	c := &Config{
		APIVersion: APIVersion,
		Kind:       Kind,
	}
	c.EnsureDefaults()

	return c
}

func (c *Config) EnsureDefaults() {
	if c.UI == nil {
		c.UI = &ui.Config{}
	}

	c.UI.EnsureDefaults()
}

// Validate checks what the YAML decoder cannot: the header and key binds
// that are bound twice within a view.
func (c *Config) Validate() error {
	if !slices.Contains(ValidAPIVersions, c.APIVersion) {
		return fmt.Errorf("%w %q, expected one of %v", ErrInvalidAPIVersion, c.APIVersion, ValidAPIVersions)
	}
	if !slices.Contains(ValidKinds, c.Kind) {
		return fmt.Errorf("%w %q, expected one of %v", ErrInvalidKind, c.Kind, ValidKinds)
	}

	err := c.UI.KeyBinds.Validate()
	if err != nil {
		return fmt.Errorf("key binds: %w", err)
	}

	return nil
}

func (c *Config) MarshalYAML() ([]byte, error) {
	b := &bytes.Buffer{}
	enc := yaml.NewEncoder(b)

	err := enc.Encode(*c)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}

	return b.Bytes(), nil
}

type ConfigLoader struct {
	theme     *theme.Theme
	yamlError *yaml.ErrorWrapper
	data      []byte
}

type ConfigLoaderOpt func(*ConfigLoader)

// WithThemeFromData styles errors with the theme named in the data itself.
func WithThemeFromData() ConfigLoaderOpt {
	return func(cl *ConfigLoader) {
		cl.theme = getTheme(cl.data)
	}
}

// WithFormatter sets the chroma formatter for sources shown in errors.
func WithFormatter(formatter string) ConfigLoaderOpt {
	return func(cl *ConfigLoader) {
		cl.yamlError.Opts = append(cl.yamlError.Opts, yaml.WithFormatter(formatter))
	}
}

func NewConfigLoaderFromBytes(data []byte, opts ...ConfigLoaderOpt) *ConfigLoader {
	cl := &ConfigLoader{
		theme:     theme.Default,
		data:      data,
		yamlError: yaml.NewErrorWrapper(),
	}
	for _, opt := range opts {
		opt(cl)
	}

	cl.yamlError.Opts = append([]yaml.ErrorOpt{yaml.WithTheme(cl.theme)}, cl.yamlError.Opts...)

	return cl
}

func NewConfigLoaderFromFile(path string, opts ...ConfigLoaderOpt) (*ConfigLoader, error) {
	data, err := readConfig(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return NewConfigLoaderFromBytes(data, opts...), nil
}

// Load decodes the data into a [Config] with defaults for everything unset.
// Unknown keys are errors.
func (cl *ConfigLoader) Load() (*Config, error) {
	c := &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(cl.data))

	err := dec.Decode(c)
	if err != nil {
		return nil, cl.yamlError.Wrap(err)
	}

	c.EnsureDefaults()

	err = c.Validate()
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (cl *ConfigLoader) GetTheme() *theme.Theme {
	return cl.theme
}

// WriteDefaultConfig writes the embedded default config.yaml to path. An
// existing file is kept unless force is set, in which case it is moved to a
// backup first.
func WriteDefaultConfig(path string, force bool) error {
	configExists := false

	pathInfo, err := os.Stat(path)
	if pathInfo != nil {
		switch {
		case err == nil && pathInfo.Mode().IsRegular():
			configExists = true
		case pathInfo.IsDir():
			return fmt.Errorf("%s: path is a directory", path)
		default:
			return fmt.Errorf("%s: unknown file state", path)
		}
	}

	if configExists && !force {
		slog.Debug("configuration file already exists, skipping write",
			slog.String("path", path),
		)

		return nil
	}

	err = os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	if configExists {
		backupFile := fmt.Sprintf("%s.%d.old", filepath.Base(path), time.Now().UnixNano())
		backupPath := filepath.Join(filepath.Dir(path), backupFile)

		slog.Info("backing up existing config file",
			slog.String("path", backupPath),
		)

		err = os.Rename(path, backupPath)
		if err != nil {
			return fmt.Errorf("rename existing config file to backup: %w", err)
		}
	}

	slog.Info("write default configuration",
		slog.String("path", path),
	)

	err = os.WriteFile(path, defaultConfigYAML, 0o600)
	if err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

func GetPath() string {
	if xdgHome, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && xdgHome != "" {
		return filepath.Join(xdgHome, "folio", "config.yaml")
	}

	usrHome, err := os.UserHomeDir()
	if err == nil && usrHome != "" {
		return filepath.Join(usrHome, ".config", "folio", "config.yaml")
	}

	tmpConfig := filepath.Join(os.TempDir(), "folio", "config.yaml")

	slog.Warn("could not determine user config directory, using temp path for config",
		slog.String("path", tmpConfig),
		slog.Any("error", fmt.Errorf("$XDG_CONFIG_HOME is unset, fall back to home directory: %w", err)),
	)

	return tmpConfig
}

func readConfig(path string) ([]byte, error) {
	pathInfo, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if pathInfo.IsDir() {
		return nil, fmt.Errorf("%s: path is a directory", path)
	}
	if !pathInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: unknown file state", path)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: Potential file inclusion via variable.
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

func getTheme(data []byte) *theme.Theme {
	var themeName string

	path, err := goyaml.PathString("$.ui.theme")
	if err == nil {
		err = path.Read(bytes.NewReader(data), &themeName)
	}
	if err == nil && themeName != "" {
		return theme.New(themeName)
	}

	slog.Debug("could not read theme, config might be invalid")

	// This is a fallback if the config is malformed or missing the theme.
	themeName = extractThemeWithRegex(data)
	if themeName != "" {
		slog.Debug("extracted theme using regex fallback", slog.String("theme", themeName))
		return theme.New(themeName)
	}

	return theme.Default
}

var (
	// Matches "ui:" on its own line and captures the indented block below.
	uiRe = regexp.MustCompile(`(?m)^ui:\s*$((?:\n[ \t]+.*)*)`)
	// Matches an indented theme key with a quoted or unquoted value.
	themeRe = regexp.MustCompile(`\n[ \t]+theme:\s*(?:"([^"#\n]+)"|'([^'#\n]+)'|([^\s#\n]+))`)
)

// extractThemeWithRegex finds ui.theme without parsing the YAML, so that
// errors in an invalid config can still be styled with the user's theme.
func extractThemeWithRegex(data []byte) string {
	uiMatches := uiRe.FindStringSubmatch(string(data))
	if len(uiMatches) < 2 {
		return ""
	}

	themeMatches := themeRe.FindStringSubmatch(uiMatches[1])
	if len(themeMatches) < 4 {
		return ""
	}

	for _, m := range themeMatches[1:4] {
		if m != "" {
			return strings.TrimSpace(m)
		}
	}

	return ""
}
