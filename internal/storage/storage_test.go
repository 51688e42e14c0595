package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/schalkje/DiagramDesigner/internal/storage"
	"github.com/schalkje/DiagramDesigner/internal/storage/storagetest"
	"github.com/schalkje/DiagramDesigner/models"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", storage.SQLiteDSN(":memory:"))
	assert.Equal(t, "data.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", storage.SQLiteDSN("data.db?mode=rwc"))
	assert.Equal(t, "x.db?_pragma=foreign_keys(0)", storage.SQLiteDSN("x.db?_pragma=foreign_keys(0)"))
}

func TestSuperdomainNameIsUnique(t *testing.T) {
	st := storagetest.New(t)
	ctx := context.Background()

	require.NoError(t, st.CreateSuperdomain(ctx, &models.Superdomain{Name: "Finance"}))
	err := st.CreateSuperdomain(ctx, &models.Superdomain{Name: "Finance"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	found, err := st.FindSuperdomainByName(ctx, "Finance")
	require.NoError(t, err)
	assert.Equal(t, "Finance", found.Name)

	_, err = st.FindSuperdomainByName(ctx, "Missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDomainUniquenessIsScoped(t *testing.T) {
	st := storagetest.New(t)
	ctx := context.Background()

	a := &models.Superdomain{Name: "A"}
	b := &models.Superdomain{Name: "B"}
	require.NoError(t, st.CreateSuperdomain(ctx, a))
	require.NoError(t, st.CreateSuperdomain(ctx, b))

	require.NoError(t, st.CreateDomain(ctx, &models.Domain{SuperdomainID: a.ID, Name: "Sales"}))
	require.NoError(t, st.CreateDomain(ctx, &models.Domain{SuperdomainID: b.ID, Name: "Sales"}))

	err := st.CreateDomain(ctx, &models.Domain{SuperdomainID: a.ID, Name: "Sales"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestForeignKeysAreEnforced(t *testing.T) {
	st := storagetest.New(t)

	err := st.CreateDomain(context.Background(), &models.Domain{SuperdomainID: 999, Name: "Orphan"})
	assert.ErrorIs(t, err, storage.ErrForeignKey)
}

func TestGetMissingRowsReturnNotFound(t *testing.T) {
	st := storagetest.New(t)
	ctx := context.Background()

	_, err := st.GetSuperdomain(ctx, 42)
	assert.True(t, storage.IsNotFound(err))
	_, err = st.GetEntity(ctx, 42, true)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, st.UpdateDomain(ctx, 42, map[string]any{"name": "x"}), storage.ErrNotFound)
	assert.ErrorIs(t, st.DeleteAttribute(ctx, 42), storage.ErrNotFound)
}

func TestListPaginatesAndSearches(t *testing.T) {
	st := storagetest.New(t)
	ctx := context.Background()

	for _, name := range []string{"Delta", "Alpha", "Charlie", "Bravo", "alphabet_soup"} {
		require.NoError(t, st.CreateSuperdomain(ctx, &models.Superdomain{Name: name}))
	}

	items, total, err := st.ListSuperdomains(ctx, storage.SuperdomainFilter{}, storage.ListOptions{Offset: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Bravo", items[0].Name)
	assert.Equal(t, "Charlie", items[1].Name)

	items, total, err = st.ListSuperdomains(ctx, storage.SuperdomainFilter{Search: "ALPHA"}, storage.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	// underscores are literal, not wildcards
	_, total, err = st.ListSuperdomains(ctx, storage.SuperdomainFilter{Search: "a_p"}, storage.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestGetEntityWithAttributes(t *testing.T) {
	st := storagetest.New(t)
	ctx := context.Background()
	tree := storagetest.SeedTree(t, st, "crm")

	require.NoError(t, st.CreateAttribute(ctx, &models.Attribute{EntityID: tree.Entity.ID, Name: "email", DataType: models.DataTypeString}))

	ent, err := st.GetEntity(ctx, tree.Entity.ID, true)
	require.NoError(t, err)
	require.Len(t, ent.Attributes, 2)
	assert.Equal(t, "id", ent.Attributes[0].Name)
	assert.Equal(t, "email", ent.Attributes[1].Name)

	bare, err := st.GetEntity(ctx, tree.Entity.ID, false)
	require.NoError(t, err)
	assert.Nil(t, bare.Attributes)
}

func TestUpdateRefreshesTimestamp(t *testing.T) {
	st := storagetest.New(t)
	ctx := context.Background()

	sd := &models.Superdomain{Name: "Ops"}
	require.NoError(t, st.CreateSuperdomain(ctx, sd))
	time.Sleep(5 * time.Millisecond)

	require.NoError(t, st.UpdateSuperdomain(ctx, sd.ID, map[string]any{"description": "operations"}))

	got, err := st.GetSuperdomain(ctx, sd.ID)
	require.NoError(t, err)
	assert.Equal(t, "operations", got.Description)
	assert.True(t, got.UpdatedAt.After(sd.UpdatedAt), "updated_at should move forward")
}

func TestSuperdomainDescendants(t *testing.T) {
	st := storagetest.New(t)
	ctx := context.Background()
	tree := storagetest.SeedTree(t, st, "biz")

	second := &models.Domain{SuperdomainID: tree.Superdomain.ID, Name: "Marketing"}
	require.NoError(t, st.CreateDomain(ctx, second))
	require.NoError(t, st.CreateEntity(ctx, &models.Entity{DomainID: second.ID, Name: "Campaign"}))

	d, err := st.SuperdomainDescendants(ctx, tree.Superdomain.ID)
	require.NoError(t, err)
	require.Len(t, d.Domains, 2)
	require.Len(t, d.Entities, 2)
	assert.Equal(t, "biz domain", d.Domains[0].Name)
	assert.Equal(t, "Campaign", d.Entities[1].Name)

	refs := d.Refs(tree.Superdomain.ID)
	require.Len(t, refs, 5)
	assert.Equal(t, models.SuperdomainRef(tree.Superdomain.ID), refs[0])

	empty, err := st.SuperdomainDescendants(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, empty.Domains)
	assert.Empty(t, empty.Entities)
}

func TestDeleteSuperdomainCascades(t *testing.T) {
	st := storagetest.New(t)
	ctx := context.Background()
	tree := storagetest.SeedTree(t, st, "biz")
	other := storagetest.SeedTree(t, st, "other")

	rel := &models.Relationship{
		SourceEntityID: tree.Entity.ID, TargetEntityID: other.Entity.ID,
		SourceCardinality: models.CardinalityOne, TargetCardinality: models.CardinalityZeroMany,
	}
	require.NoError(t, st.CreateRelationship(ctx, rel))

	diagram := &models.Diagram{Name: "Overview"}
	require.NoError(t, st.CreateDiagram(ctx, diagram))
	for _, obj := range []*models.DiagramObject{
		{DiagramID: diagram.ID, ObjectType: models.ObjectTypeSuperdomain, ObjectID: tree.Superdomain.ID},
		{DiagramID: diagram.ID, ObjectType: models.ObjectTypeEntity, ObjectID: tree.Entity.ID},
		{DiagramID: diagram.ID, ObjectType: models.ObjectTypeEntity, ObjectID: other.Entity.ID},
	} {
		require.NoError(t, st.CreateDiagramObject(ctx, obj))
	}
	require.NoError(t, st.CreateDiagramRelationship(ctx, &models.DiagramRelationship{DiagramID: diagram.ID, RelationshipID: rel.ID, IsVisible: true}))

	require.NoError(t, st.DeleteSuperdomain(ctx, tree.Superdomain.ID))

	_, err := st.GetDomain(ctx, tree.Domain.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = st.GetEntity(ctx, tree.Entity.ID, false)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = st.GetAttribute(ctx, tree.Attribute.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = st.GetRelationship(ctx, rel.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	objs, err := st.DiagramObjects(ctx, diagram.ID)
	require.NoError(t, err)
	require.Len(t, objs, 1, "only the placement of the surviving entity remains")
	assert.Equal(t, other.Entity.ID, objs[0].ObjectID)

	lines, err := st.DiagramRelationships(ctx, diagram.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = st.GetDiagram(ctx, diagram.ID)
	assert.NoError(t, err, "diagrams are never removed by repository deletes")

	assert.ErrorIs(t, st.DeleteSuperdomain(ctx, tree.Superdomain.ID), storage.ErrNotFound)
}

func TestDeleteAttributeClearsRelationshipReference(t *testing.T) {
	st := storagetest.New(t)
	ctx := context.Background()
	tree := storagetest.SeedTree(t, st, "x")

	rel := &models.Relationship{
		SourceEntityID: tree.Entity.ID, TargetEntityID: tree.Entity.ID,
		SourceAttributeID: &tree.Attribute.ID,
		SourceCardinality: models.CardinalityZeroOne, TargetCardinality: models.CardinalityZeroMany,
	}
	require.NoError(t, st.CreateRelationship(ctx, rel))
	require.NoError(t, st.DeleteAttribute(ctx, tree.Attribute.ID))

	got, err := st.GetRelationship(ctx, rel.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SourceAttributeID)
}

func TestListRelationshipsByEitherEnd(t *testing.T) {
	st := storagetest.New(t)
	ctx := context.Background()
	a := storagetest.SeedTree(t, st, "a")
	b := storagetest.SeedTree(t, st, "b")
	c := storagetest.SeedTree(t, st, "c")

	mk := func(src, dst uint) {
		require.NoError(t, st.CreateRelationship(ctx, &models.Relationship{
			SourceEntityID: src, TargetEntityID: dst,
			SourceCardinality: models.CardinalityOne, TargetCardinality: models.CardinalityOne,
		}))
	}
	mk(a.Entity.ID, b.Entity.ID)
	mk(c.Entity.ID, a.Entity.ID)
	mk(b.Entity.ID, c.Entity.ID)

	id := a.Entity.ID
	rels, total, err := st.ListRelationships(ctx, storage.RelationshipFilter{EntityID: &id}, storage.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rels, 2)

	between, err := st.RelationshipsBetween(ctx, a.Entity.ID, b.Entity.ID)
	require.NoError(t, err)
	assert.Len(t, between, 1)

	reverse, err := st.RelationshipsBetween(ctx, b.Entity.ID, a.Entity.ID)
	require.NoError(t, err)
	assert.Empty(t, reverse)
}

func TestDiagramTagFilterAndOrdering(t *testing.T) {
	st := storagetest.New(t)
	ctx := context.Background()
	user := &models.User{Email: "u@example.com", Username: "u", AuthProvider: models.AuthProviderLocal, IsActive: true}
	require.NoError(t, st.CreateUser(ctx, user))

	first := &models.Diagram{Name: "First", Tags: datatypes.JSONSlice[string]{"core", "sales"}, CreatedBy: &user.ID}
	second := &models.Diagram{Name: "Second", Tags: datatypes.JSONSlice[string]{"sales"}}
	third := &models.Diagram{Name: "Third"}
	require.NoError(t, st.CreateDiagram(ctx, first))
	require.NoError(t, st.CreateDiagram(ctx, second))
	require.NoError(t, st.CreateDiagram(ctx, third))

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, st.UpdateDiagram(ctx, first.ID, map[string]any{"purpose": "touch"}))

	all, total, err := st.ListDiagrams(ctx, storage.DiagramFilter{}, storage.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, "First", all[0].Name, "most recently updated first")
	assert.NotNil(t, all[2].Tags)

	tagged, total, err := st.ListDiagrams(ctx, storage.DiagramFilter{Tag: "sales"}, storage.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, tagged, 2)

	mine, total, err := st.ListDiagrams(ctx, storage.DiagramFilter{CreatedBy: &user.ID}, storage.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "First", mine[0].Name)
}

func TestDiagramObjectsAreScopedToTheirDiagram(t *testing.T) {
	st := storagetest.New(t)
	ctx := context.Background()
	tree := storagetest.SeedTree(t, st, "s")

	d1 := &models.Diagram{Name: "One"}
	d2 := &models.Diagram{Name: "Two"}
	require.NoError(t, st.CreateDiagram(ctx, d1))
	require.NoError(t, st.CreateDiagram(ctx, d2))

	obj := &models.DiagramObject{DiagramID: d1.ID, ObjectType: models.ObjectTypeDomain, ObjectID: tree.Domain.ID, PositionX: 10, PositionY: 20}
	require.NoError(t, st.CreateDiagramObject(ctx, obj))

	dup := &models.DiagramObject{DiagramID: d1.ID, ObjectType: models.ObjectTypeDomain, ObjectID: tree.Domain.ID}
	assert.ErrorIs(t, st.CreateDiagramObject(ctx, dup), storage.ErrDuplicate)

	_, err := st.GetDiagramObject(ctx, d2.ID, obj.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, st.UpdateDiagramObject(ctx, d2.ID, obj.ID, map[string]any{"position_x": 1.0}), storage.ErrNotFound)
	assert.ErrorIs(t, st.DeleteDiagramObject(ctx, d2.ID, obj.ID), storage.ErrNotFound)

	require.NoError(t, st.UpdateDiagramObject(ctx, d1.ID, obj.ID, map[string]any{"position_x": 99.5}))
	got, err := st.GetDiagramObject(ctx, d1.ID, obj.ID)
	require.NoError(t, err)
	assert.Equal(t, 99.5, got.PositionX)

	found, err := st.FindDiagramObject(ctx, d1.ID, models.DomainRef(tree.Domain.ID))
	require.NoError(t, err)
	assert.Equal(t, obj.ID, found.ID)

	containing, err := st.DiagramsContaining(ctx, models.DomainRef(tree.Domain.ID))
	require.NoError(t, err)
	require.Len(t, containing, 1)
	assert.Equal(t, "One", containing[0].Name)

	require.NoError(t, st.DeleteDiagramObject(ctx, d1.ID, obj.ID))
	_, err = st.GetDomain(ctx, tree.Domain.ID)
	assert.NoError(t, err, "removing a placement keeps the repository object")
}

func TestObjectExists(t *testing.T) {
	st := storagetest.New(t)
	ctx := context.Background()
	tree := storagetest.SeedTree(t, st, "s")

	for _, ref := range []models.ObjectRef{
		models.SuperdomainRef(tree.Superdomain.ID),
		models.DomainRef(tree.Domain.ID),
		models.EntityRef(tree.Entity.ID),
	} {
		ok, err := st.ObjectExists(ctx, ref)
		require.NoError(t, err)
		assert.True(t, ok, ref.String())
	}

	ok, err := st.ObjectExists(ctx, models.EntityRef(tree.Entity.ID+100))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUsers(t *testing.T) {
	st := storagetest.New(t)
	ctx := context.Background()

	u := &models.User{Email: "alice@example.com", Username: "alice", PasswordHash: "x", AuthProvider: models.AuthProviderLocal, IsActive: true}
	require.NoError(t, st.CreateUser(ctx, u))

	dup := &models.User{Email: "alice@example.com", Username: "alice2", AuthProvider: models.AuthProviderLocal}
	assert.ErrorIs(t, st.CreateUser(ctx, dup), storage.ErrDuplicate)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, st.RecordLogin(ctx, u.ID, now))
	require.NoError(t, st.SetUserActive(ctx, u.ID, false))

	got, err := st.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, got.LastLoginAt.Equal(now))
	assert.False(t, got.IsActive)

	byName, err := st.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)
}

func TestTransactionRollsBack(t *testing.T) {
	st := storagetest.New(t)
	ctx := context.Background()

	err := st.Transaction(ctx, func(tx *storage.Storage) error {
		require.NoError(t, tx.CreateSuperdomain(ctx, &models.Superdomain{Name: "Temp"}))
		return storage.ErrDuplicate
	})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	_, err = st.FindSuperdomainByName(ctx, "Temp")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
