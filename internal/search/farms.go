package search

import (
	"strings"

	"github.com/mashamba/dairy-backend/internal/domain"
)

// FarmDocument flattens the searchable fields of a farm into one document
// keyed by slug. Empty fields are skipped.
func FarmDocument(f domain.Farm) Document {
	parts := make([]string, 0, 4)
	for _, p := range []string{f.Name, f.Location, f.Slogan, f.Description} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return Document{Key: f.Slug, Text: strings.Join(parts, " · ")}
}

// FarmDocuments maps FarmDocument over farms.
func FarmDocuments(farms []domain.Farm) []Document {
	out := make([]Document, 0, len(farms))
	for _, f := range farms {
		out = append(out, FarmDocument(f))
	}
	return out
}
