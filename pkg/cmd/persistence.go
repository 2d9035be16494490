// Package cmd holds construction helpers shared by the binaries.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/eunits/bookflow/pkg/persistence"
	"github.com/eunits/bookflow/pkg/persistence/file"
	"github.com/eunits/bookflow/pkg/persistence/postgresql"
)

// NewPersistence selects the store implementation from the database URL
// scheme: postgres:// connects to PostgreSQL, anything else is treated as a
// file path.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parseProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parseProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return scheme
}
