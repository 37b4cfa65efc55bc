package fonts

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/maruel/natural"
	"seehuhn.de/go/sfnt"
)

type Source int

const (
	SourceUser Source = iota
	SourceSystem
	SourceAsset
)

func (s Source) String() string {
	return map[Source]string{
		SourceUser:   "user",
		SourceSystem: "system",
		SourceAsset:  "asset",
	}[s]
}

// Entry is one row of the font picker.
type Entry struct {
	Key    string
	Path   string
	Source Source
}

// List returns the user fonts, then the system fonts, then the asset fonts,
// each group in natural key order. A key found in several sources appears
// once per source.
func (f *Finder) List() []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()

	var entries []Entry

	for _, group := range []struct {
		fonts  map[string]string
		source Source
	}{
		{f.userFonts(), SourceUser},
		{f.systemFonts(), SourceSystem},
		{f.assetFonts(), SourceAsset},
	} {
		keys := make([]string, 0, len(group.fonts))
		for k := range group.fonts {
			keys = append(keys, k)
		}

		sort.Sort(natural.StringSlice(keys))

		for _, k := range keys {
			entries = append(entries, Entry{Key: k, Path: group.fonts[k], Source: group.source})
		}
	}

	return entries
}

// Resolve returns a file for the entry. Asset fonts are copied out of the
// asset tree.
func (f *Finder) Resolve(e Entry) (string, error) {
	if e.Source != SourceAsset {
		return e.Path, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.extractAsset(e.Key, e.Path)
}

// Family reads the family name of the entry's font.
func (f *Finder) Family(e Entry) (string, error) {
	var (
		data []byte
		err  error
	)

	if e.Source == SourceAsset && f.assets != nil {
		data, err = fs.ReadFile(f.assets, e.Path)
	} else {
		data, err = os.ReadFile(e.Path)
	}

	if err != nil {
		return "", fmt.Errorf("read font %q: %w", e.Key, err)
	}

	return ReadFamily(data)
}

// ReadFamily parses a TrueType or OpenType font and returns its family name.
func ReadFamily(data []byte) (string, error) {
	font, err := sfnt.Read(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse font: %w", err)
	}

	return font.FamilyName, nil
}
