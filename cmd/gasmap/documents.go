package main

import (
	"context"
	"fmt"

	"gasmap/internal/domain"
	"gasmap/internal/persistence"
	"gasmap/internal/topology"
)

var files = persistence.NewFileStore("")

// readNetwork loads the document at path into a fresh registry. Pipes are
// resolved against the nodes, so a document that loads here loads in the
// editor.
func readNetwork(ctx context.Context, path string) (*domain.Document, *topology.Registry, error) {
	doc, err := files.Load(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	reg := topology.New()
	if err := persistence.Apply(doc, reg); err != nil {
		return doc, nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, reg, nil
}
