// Package storagetest provides migrated in-memory stores for tests.
package storagetest

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/schalkje/DiagramDesigner/internal/config"
	"github.com/schalkje/DiagramDesigner/internal/storage"
	"github.com/schalkje/DiagramDesigner/models"
)

// New returns an empty, migrated SQLite store that is closed when the test ends.
func New(tb testing.TB) *storage.Storage {
	tb.Helper()

	st, err := storage.New(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    ":memory:",
	}, zerolog.Nop())
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = st.Close() })

	require.NoError(tb, st.Migrate(context.Background()))
	return st
}

// Tree is a small superdomain → domain → entity → attribute chain.
type Tree struct {
	Superdomain *models.Superdomain
	Domain      *models.Domain
	Entity      *models.Entity
	Attribute   *models.Attribute
}

// SeedTree inserts one row at each hierarchy level, named with prefix.
func SeedTree(tb testing.TB, st *storage.Storage, prefix string) Tree {
	tb.Helper()
	ctx := context.Background()

	sd := &models.Superdomain{Name: prefix + " superdomain"}
	require.NoError(tb, st.CreateSuperdomain(ctx, sd))

	dom := &models.Domain{SuperdomainID: sd.ID, Name: prefix + " domain"}
	require.NoError(tb, st.CreateDomain(ctx, dom))

	ent := &models.Entity{DomainID: dom.ID, Name: prefix + " entity"}
	require.NoError(tb, st.CreateEntity(ctx, ent))

	attr := &models.Attribute{EntityID: ent.ID, Name: "id", DataType: models.DataTypeInteger}
	require.NoError(tb, st.CreateAttribute(ctx, attr))

	return Tree{Superdomain: sd, Domain: dom, Entity: ent, Attribute: attr}
}
