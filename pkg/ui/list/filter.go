package list

import (
	"fmt"
	"log/slog"
	"sort"
	"unicode"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// filterItems returns the items fuzzily matching term, best match first.
// An empty term matches everything.
func filterItems(items []Item, term string) []Item {
	if term == "" {
		return items
	}

	targets := make([]string, 0, len(items))
	for _, it := range items {
		targets = append(targets, normalizeOrKeep(it.filterValue()))
	}

	ranks := fuzzy.Find(normalizeOrKeep(term), targets)
	sort.Stable(ranks)

	filtered := make([]Item, 0, len(ranks))
	for _, r := range ranks {
		filtered = append(filtered, items[r.Index])
	}

	return filtered
}

// Normalize strips diacritics, so "Ubersetzung" finds "Übersetzung".
func Normalize(in string) (string, error) {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, in)
	if err != nil {
		return "", fmt.Errorf("error normalizing: %w", err)
	}

	return out, nil
}

func normalizeOrKeep(in string) string {
	out, err := Normalize(in)
	if err != nil {
		slog.Error("error normalizing",
			slog.String("value", in),
			slog.Any("error", err),
		)

		return in
	}

	return out
}
