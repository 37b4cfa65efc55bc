package book

import (
	"fmt"
	"io"
	"strings"
)

// parseText reads plain text. Form feeds separate sections.
func parseText(r io.Reader) (*Book, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}

	b := &Book{}

	for part := range strings.SplitSeq(normalizeNewlines(string(data)), "\f") {
		paras := paragraphs(part)
		if len(paras) == 0 && len(b.Sections) > 0 {
			continue
		}

		b.Sections = append(b.Sections, Section{Paragraphs: paras})
	}

	return b, nil
}

// parseMarkdown reads Markdown. Level one and two headings start sections;
// deeper headings stay in the text.
func parseMarkdown(r io.Reader) (*Book, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	b := &Book{}

	var (
		cur     *Section
		pending strings.Builder
		inFence bool
	)

	flush := func() {
		paras := paragraphs(pending.String())
		pending.Reset()

		if cur == nil {
			if len(paras) == 0 {
				return
			}

			b.Sections = append(b.Sections, Section{})
			cur = &b.Sections[len(b.Sections)-1]
		}

		cur.Paragraphs = append(cur.Paragraphs, paras...)
	}

	for line := range strings.SplitSeq(normalizeNewlines(string(data)), "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			pending.WriteString("\n")

			continue
		}

		title, level := heading(trimmed)
		if inFence || level == 0 || level > 2 {
			if level > 2 && !inFence {
				// Deeper headings become their own paragraph.
				pending.WriteString("\n" + title + "\n\n")
				continue
			}

			pending.WriteString(line + "\n")

			continue
		}

		flush()

		if level == 1 && b.Title == "" && len(b.Sections) == 0 {
			b.Title = title
		}

		b.Sections = append(b.Sections, Section{Title: title})
		cur = &b.Sections[len(b.Sections)-1]
	}

	flush()

	return b, nil
}

// heading returns the text and level of an ATX heading line.
func heading(line string) (string, int) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}

	if level == 0 || level > 6 {
		return "", 0
	}

	if level < len(line) && line[level] != ' ' {
		return "", 0
	}

	return strings.TrimSpace(strings.TrimRight(line[level:], "#")), level
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
