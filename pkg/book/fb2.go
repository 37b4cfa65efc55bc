package book

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/beevik/etree"
)

func parseFB2(r io.Reader) (*Book, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		Permissive: true,
	}

	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("read fb2: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("fb2: document has no root element")
	}

	if root.Tag != "FictionBook" {
		return nil, fmt.Errorf("fb2: unexpected root element %q", root.Tag)
	}

	b := &Book{}

	if el := root.FindElement("./description/title-info/book-title"); el != nil {
		b.Title = strings.TrimSpace(el.Text())
	}

	// Only the main body is read; later bodies hold notes.
	body := root.SelectElement("body")
	if body == nil {
		return b, nil
	}

	var intro Section

	for _, child := range body.ChildElements() {
		switch child.Tag {
		case "section":
			b.Sections = append(b.Sections, fb2Section(child))
		case "title":
			intro.Title = fb2Title(child)
		case "epigraph":
			intro.Paragraphs = append(intro.Paragraphs, fb2Flow(child)...)
		case "image":
		default:
			slog.Debug("unexpected tag in fb2 body", slog.String("tag", child.Tag))
		}
	}

	if len(b.Sections) == 0 {
		b.Sections = append(b.Sections, intro)
	}

	return b, nil
}

func fb2Section(el *etree.Element) Section {
	s := Section{}

	for _, child := range el.ChildElements() {
		if child.Tag == "title" {
			s.Title = fb2Title(child)
			continue
		}

		s.Paragraphs = append(s.Paragraphs, fb2Block(child)...)
	}

	return s
}

func fb2Title(el *etree.Element) string {
	var parts []string
	for _, p := range el.SelectElements("p") {
		if t := text(p); t != "" {
			parts = append(parts, t)
		}
	}

	return strings.Join(parts, ". ")
}

// fb2Flow flattens the block content of el.
func fb2Flow(el *etree.Element) []string {
	var out []string
	for _, child := range el.ChildElements() {
		out = append(out, fb2Block(child)...)
	}

	return out
}

func fb2Block(el *etree.Element) []string {
	switch el.Tag {
	case "p", "subtitle", "v", "text-author":
		if t := text(el); t != "" {
			return []string{t}
		}

		return nil

	case "empty-line", "image", "binary":
		return nil

	case "title":
		if t := fb2Title(el); t != "" {
			return []string{t}
		}

		return nil

	case "section", "epigraph", "cite", "poem", "stanza", "annotation":
		return fb2Flow(el)

	case "table":
		var rows []string
		for _, tr := range el.SelectElements("tr") {
			var cells []string
			for _, td := range tr.ChildElements() {
				cells = append(cells, text(td))
			}

			rows = append(rows, strings.Join(cells, " | "))
		}

		return rows
	}

	if t := text(el); t != "" {
		return []string{t}
	}

	return nil
}

// text returns all character data below el with whitespace collapsed.
func text(el *etree.Element) string {
	var sb strings.Builder

	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, node := range e.Child {
			switch tok := node.(type) {
			case *etree.CharData:
				sb.WriteString(tok.Data)
			case *etree.Element:
				walk(tok)
			}
		}
	}
	walk(el)

	return strings.Join(strings.Fields(sb.String()), " ")
}
