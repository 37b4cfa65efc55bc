package book

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// loadDir reads every supported file in dir, in natural name order. Each
// file becomes one section.
func loadDir(dir string) (*Book, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read book directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}

	sort.Sort(natural.StringSlice(names))

	b := &Book{Title: filepath.Base(dir)}

	for _, name := range names {
		part, err := loadFile(filepath.Join(dir, name))
		if errors.Is(err, ErrUnsupportedFormat) {
			slog.Debug("skip unsupported file", slog.String("name", name))
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		b.Sections = append(b.Sections, merge(name, part))
	}

	return b, nil
}

func merge(name string, part *Book) Section {
	s := Section{Title: part.Title}

	for _, sec := range part.Sections {
		if s.Title == "" {
			s.Title = sec.Title
		} else if sec.Title != "" && sec.Title != s.Title {
			s.Paragraphs = append(s.Paragraphs, sec.Title)
		}

		s.Paragraphs = append(s.Paragraphs, sec.Paragraphs...)
	}

	if s.Title == "" {
		s.Title = strings.TrimSuffix(name, filepath.Ext(name))
	}

	return s
}
