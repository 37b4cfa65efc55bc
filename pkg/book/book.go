// Package book loads documents into sections of plain paragraphs.
//
// Supported inputs are FictionBook (.fb2), Markdown (.md, .markdown), plain
// text (.txt) and directories of such files.
package book

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrEmptyBook         = errors.New("book has no sections")
)

// Book is a loaded document.
type Book struct {
	// Key identifies the book in the reading state store.
	Key      string
	Title    string
	Path     string
	Sections []Section
}

// Section is one unit of the outer paginator. Its paragraphs are laid out as
// a strip of sub-pages.
type Section struct {
	Title      string
	Paragraphs []string
}

// Titles returns a label per section. Untitled sections are numbered.
func (b *Book) Titles() []string {
	titles := make([]string, len(b.Sections))
	for i, s := range b.Sections {
		titles[i] = s.Label(i)
	}

	return titles
}

// WriteTo writes the book as plain text: the title, then every section's
// label and paragraphs separated by blank lines.
func (b *Book) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder

	if b.Title != "" {
		sb.WriteString(b.Title)
		sb.WriteString("\n\n")
	}

	for i, s := range b.Sections {
		if i > 0 {
			sb.WriteString("\n")
		}

		sb.WriteString(s.Label(i))
		sb.WriteString("\n")

		for _, p := range s.Paragraphs {
			sb.WriteString("\n")
			sb.WriteString(p)
			sb.WriteString("\n")
		}
	}

	n, err := io.WriteString(w, sb.String())
	if err != nil {
		return int64(n), fmt.Errorf("write book: %w", err)
	}

	return int64(n), nil
}

// Label returns the title, or a numbered placeholder for index.
func (s Section) Label(index int) string {
	if t := strings.TrimSpace(s.Title); t != "" {
		return t
	}

	return fmt.Sprintf("Section %d", index+1)
}

// Format is a supported input format.
type Format string

const (
	FormatFB2      Format = "fb2"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatDir      Format = "directory"
)

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fb2":
		return FormatFB2, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".txt":
		return FormatText, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Load reads the book at path.
func Load(path string) (*Book, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat book: %w", err)
	}

	var b *Book
	if info.IsDir() {
		b, err = loadDir(abs)
	} else {
		b, err = loadFile(abs)
	}
	if err != nil {
		return nil, err
	}

	if len(b.Sections) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyBook)
	}

	b.Key = abs
	b.Path = abs
	if b.Title == "" {
		b.Title = strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	}

	slog.Debug("loaded book",
		slog.String("path", abs),
		slog.String("title", b.Title),
		slog.Int("sections", len(b.Sections)),
	)

	return b, nil
}

func loadFile(path string) (*Book, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path) //nolint:gosec // G304: Opening user-supplied book.
	if err != nil {
		return nil, fmt.Errorf("open book: %w", err)
	}
	defer f.Close()

	switch format {
	case FormatFB2:
		return parseFB2(f)
	case FormatMarkdown:
		return parseMarkdown(f)
	default:
		return parseText(f)
	}
}

// paragraphs splits text into blank-line separated blocks. Lines within a
// block are joined with single spaces.
func paragraphs(text string) []string {
	var (
		out   []string
		block []string
	)

	flush := func() {
		if len(block) > 0 {
			out = append(out, strings.Join(block, " "))
			block = nil
		}
	}

	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}

		block = append(block, line)
	}

	flush()

	return out
}
