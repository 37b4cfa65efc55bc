package mcp

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/folio/pkg/ui/reader"
)

const (
	name         = "folio"
	instructions = `MCP Server 'folio' remote controls a running folio e-book reader.

Pages and sections are counted from zero. Every tool returns the reader's position after the call.

Workflow:
1. Use 'get_position' to see the book, the current section and the current page.
2. Use 'goto_section' to open another section at its first page.
3. Use 'jump_to_page', 'jump_to_first' or 'jump_to_last' to move within the section.
4. Use 'seek' to scroll to a fractional page position, e.g. 1.5 for halfway between the second and third page.

Moves are ignored while the reader is dragging pages with the mouse.
`
)

func newPositionSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "Position of the reader.",
		Properties: map[string]*jsonschema.Schema{
			"book": {
				Type:        "string",
				Description: "Key of the open book.",
			},
			"title": {
				Type:        "string",
				Description: "Title of the open book.",
			},
			"sectionTitle": {
				Type:        "string",
				Description: "Title of the current section. Empty for untitled sections.",
			},
			"section": {
				Type:        "integer",
				Description: "Index of the current section.",
			},
			"sections": {
				Type:        "integer",
				Description: "Number of sections in the book.",
			},
			"page": {
				Type:        "integer",
				Description: "Index of the current page within the section.",
			},
			"pages": {
				Type:        "integer",
				Description: "Number of pages in the current section.",
			},
			"offset": {
				Type:        "number",
				Description: "Fractional page position the pages are scrolled to.",
			},
		},
	}
}

func emptySchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{},
	}
}

// PositionResult is returned by every tool.
type PositionResult struct {
	Position reader.Position `json:"position"`
	Message  string          `json:"message"`
}

func describe(pos reader.Position) string {
	if pos.Pages == 0 {
		return fmt.Sprintf("Section %d of %d has no pages.", pos.Section+1, pos.Sections)
	}

	title := ""
	if pos.SectionTitle != "" {
		title = fmt.Sprintf(" (%q)", pos.SectionTitle)
	}

	return fmt.Sprintf("Section %d of %d%s, page %d of %d.",
		pos.Section+1, pos.Sections, title, pos.Page+1, pos.Pages)
}

func createPositionResult(pos reader.Position) *mcp.CallToolResultFor[PositionResult] {
	result := PositionResult{
		Position: pos,
		Message:  describe(pos),
	}

	return &mcp.CallToolResultFor[PositionResult]{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: result.Message,
			},
		},
		StructuredContent: result,
	}
}

func createInputErrorResult(format string, args ...any) *mcp.CallToolResultFor[PositionResult] {
	msg := "INVALID INPUT ERROR: " + fmt.Sprintf(format, args...)

	return &mcp.CallToolResultFor[PositionResult]{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: msg,
			},
		},
		StructuredContent: PositionResult{Message: msg},
		IsError:           true,
	}
}
