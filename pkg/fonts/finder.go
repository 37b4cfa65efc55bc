// Package fonts discovers font files for the reader. Fonts come from three
// sources: system font directories, user font directories and an embedded
// asset tree. Each font is keyed by its file name without the suffix.
package fonts

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/multierr"
)

// AssetRoot is the directory of the asset tree that is scanned for fonts.
const AssetRoot = "fonts"

var (
	ErrFontNotFound = errors.New("font not found")

	// Suffixes lists the recognized font file suffixes.
	Suffixes = []string{".ttf", ".otf"}
)

// Finder looks fonts up by key. Each source is scanned on first use and
// cached until [Finder.Reset]. It is safe for concurrent use.
type Finder struct {
	assets   fs.FS
	logger   *slog.Logger
	system   map[string]string
	user     map[string]string
	asset    map[string]string
	cacheDir string

	systemDirs []string
	userDirs   []string

	mu sync.Mutex
}

type Option func(f *Finder)

// WithSystemDirs sets the system font directories. They are not searched
// recursively.
func WithSystemDirs(dirs ...string) Option {
	return func(f *Finder) {
		f.systemDirs = dirs
	}
}

// WithUserDirs sets the user font directories, searched recursively.
func WithUserDirs(dirs ...string) Option {
	return func(f *Finder) {
		f.userDirs = dirs
	}
}

// WithAssets sets the asset tree. Fonts are found anywhere below
// [AssetRoot].
func WithAssets(assets fs.FS) Option {
	return func(f *Finder) {
		f.assets = assets
	}
}

// WithCacheDir sets where asset fonts are copied when a file is needed.
func WithCacheDir(dir string) Option {
	return func(f *Finder) {
		f.cacheDir = dir
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(f *Finder) {
		f.logger = logger
	}
}

func NewFinder(opts ...Option) *Finder {
	f := &Finder{
		systemDirs: DefaultSystemDirs(),
		userDirs:   DefaultUserDirs(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.cacheDir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			f.cacheDir = filepath.Join(dir, "folio", "fonts")
		} else {
			f.cacheDir = filepath.Join(os.TempDir(), "folio", "fonts")
		}
	}

	return f
}

// DefaultSystemDirs returns the platform font directories.
func DefaultSystemDirs() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/System/Library/Fonts", "/Library/Fonts"}
	case "windows":
		return []string{filepath.Join(os.Getenv("WINDIR"), "Fonts")}
	default:
		return []string{"/usr/share/fonts", "/usr/local/share/fonts"}
	}
}

// DefaultUserDirs returns the per-user font directories.
func DefaultUserDirs() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	dirs := []string{filepath.Join(home, ".fonts")}

	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "fonts"))
	} else {
		dirs = append(dirs, filepath.Join(home, ".local", "share", "fonts"))
	}

	if runtime.GOOS == "darwin" {
		dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
	}

	return dirs
}

// Reset drops the cached scans.
func (f *Finder) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.system, f.user, f.asset = nil, nil, nil
}

// SystemFonts maps font keys to files in the system directories.
func (f *Finder) SystemFonts() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return maps.Clone(f.systemFonts())
}

// UserFonts maps font keys to files in the user directories.
func (f *Finder) UserFonts() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return maps.Clone(f.userFonts())
}

// AssetFonts maps font keys to paths inside the asset tree.
func (f *Finder) AssetFonts() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return maps.Clone(f.assetFonts())
}

func (f *Finder) IsSystemFont(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.systemFonts()[key]

	return ok
}

func (f *Finder) IsAssetFont(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.assetFonts()[key]

	return ok
}

// FontFile returns a file for key, looking in system, then user, then asset
// fonts. An asset font is copied into the cache directory first.
func (f *Finder) FontFile(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.systemFonts()[key]; ok {
		return p, nil
	}

	if p, ok := f.userFonts()[key]; ok {
		return p, nil
	}

	if p, ok := f.assetFonts()[key]; ok {
		return f.extractAsset(key, p)
	}

	f.logger.Debug("font not found", slog.String("key", key))

	return "", fmt.Errorf("%w: %q", ErrFontNotFound, key)
}

func (f *Finder) systemFonts() map[string]string {
	if f.system == nil {
		f.system = f.scanDirs("system", f.systemDirs, false)
	}

	return f.system
}

func (f *Finder) userFonts() map[string]string {
	if f.user == nil {
		f.user = f.scanDirs("user", f.userDirs, true)
	}

	return f.user
}

func (f *Finder) assetFonts() map[string]string {
	if f.asset != nil {
		return f.asset
	}

	f.asset = map[string]string{}
	if f.assets == nil {
		return f.asset
	}

	err := fs.WalkDir(f.assets, AssetRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if key, ok := fontKey(d.Name()); ok && !d.IsDir() {
			f.asset[key] = p
		}

		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		f.logger.Warn("scan asset fonts", slog.Any("error", err))
	}

	f.logger.Debug("scanned asset fonts", slog.Int("count", len(f.asset)))

	return f.asset
}

func (f *Finder) scanDirs(source string, dirs []string, recursive bool) map[string]string {
	found := map[string]string{}

	var errs error

	for _, dir := range dirs {
		var err error
		if recursive {
			err = walkFonts(dir, found)
		} else {
			err = listFonts(dir, found)
		}

		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", dir, err))
		}
	}

	if errs != nil {
		f.logger.Warn("scan font directories",
			slog.String("source", source),
			slog.Int("failed", len(multierr.Errors(errs))),
			slog.Any("error", errs),
		)
	}

	f.logger.Debug("scanned fonts",
		slog.String("source", source),
		slog.Int("count", len(found)),
	)

	return found
}

func listFonts(dir string, found map[string]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}

	for _, e := range entries {
		if key, ok := fontKey(e.Name()); ok && !e.IsDir() {
			found[key] = filepath.Join(dir, e.Name())
		}
	}

	return nil
}

func walkFonts(dir string, found map[string]string) error {
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if key, ok := fontKey(d.Name()); ok && !d.IsDir() {
			found[key] = p
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("walk directory: %w", err)
	}

	return nil
}

func (f *Finder) extractAsset(key, assetPath string) (string, error) {
	src, err := f.assets.Open(assetPath)
	if err != nil {
		return "", fmt.Errorf("open asset font %q: %w", assetPath, err)
	}
	defer src.Close()

	if err := os.MkdirAll(f.cacheDir, 0o700); err != nil {
		return "", fmt.Errorf("create font cache: %w", err)
	}

	dst := filepath.Join(f.cacheDir, key+path.Ext(assetPath))

	out, err := os.Create(dst) //nolint:gosec // G304: Path built from the cache directory.
	if err != nil {
		return "", fmt.Errorf("create cached font: %w", err)
	}

	_, err = io.Copy(out, src)
	err = multierr.Append(err, out.Close())
	if err != nil {
		return "", fmt.Errorf("copy asset font %q: %w", assetPath, err)
	}

	f.logger.Debug("copied asset font",
		slog.String("key", key),
		slog.String("path", dst),
	)

	return dst, nil
}

// fontKey strips a recognized suffix from name.
func fontKey(name string) (string, bool) {
	for _, s := range Suffixes {
		if key, ok := strings.CutSuffix(name, s); ok && key != "" {
			return key, true
		}
	}

	return "", false
}
