package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schalkje/DiagramDesigner/internal/auth"
	"github.com/schalkje/DiagramDesigner/internal/storage"
	"github.com/schalkje/DiagramDesigner/internal/storage/storagetest"
	"github.com/schalkje/DiagramDesigner/models"
)

func newTestServices(t *testing.T) (*Services, *storage.Storage) {
	t.Helper()
	st := storagetest.New(t)
	return New(st, auth.NewJWTService("test-secret", 24*time.Hour), zerolog.Nop()), st
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se, "expected a service error, got %v", err)
	require.Equal(t, kind, se.Kind, se.Message)
	return se
}

func ptr[T any](v T) *T { return &v }

func TestHierarchyScenario(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	sd, err := svc.Superdomains.Create(ctx, SuperdomainCreate{Name: "Biz"}, nil)
	require.NoError(t, err)
	dom, err := svc.Domains.Create(ctx, DomainCreate{SuperdomainID: sd.ID, Name: "Sales"}, nil)
	require.NoError(t, err)
	assert.Equal(t, sd.ID, dom.SuperdomainID)
	ent, err := svc.Entities.Create(ctx, EntityCreate{DomainID: dom.ID, Name: "Customer"}, nil)
	require.NoError(t, err)
	assert.Equal(t, dom.ID, ent.DomainID)
	attr, err := svc.Attributes.CreateForEntity(ctx, ent.ID, AttributeCreate{
		Name: "email", DataType: "String", IsNullable: ptr(false),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, ent.ID, attr.EntityID)
	assert.False(t, attr.IsNullable)

	got, err := svc.Entities.Get(ctx, ent.ID, true)
	require.NoError(t, err)
	require.Len(t, got.Attributes, 1)
	assert.Equal(t, "email", got.Attributes[0].Name)
	assert.Equal(t, models.DataTypeString, got.Attributes[0].DataType)

	gotDom, err := svc.Domains.Get(ctx, dom.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.Name, gotDom.Name)
	assert.Equal(t, dom.SuperdomainID, gotDom.SuperdomainID)
	assert.Equal(t, dom.Description, gotDom.Description)
}

func TestNamesAreTrimmedAndBounded(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	sd, err := svc.Superdomains.Create(ctx, SuperdomainCreate{Name: "  Finance  "}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Finance", sd.Name)

	_, err = svc.Superdomains.Create(ctx, SuperdomainCreate{Name: "   "}, nil)
	se := requireKind(t, err, KindValidation)
	assert.Equal(t, "name is required", se.Message)

	long := strings.Repeat("x", 101)
	_, err = svc.Superdomains.Create(ctx, SuperdomainCreate{Name: long}, nil)
	se = requireKind(t, err, KindValidation)
	assert.Equal(t, "name must be 100 characters or less", se.Message)

	_, err = svc.Domains.Create(ctx, DomainCreate{SuperdomainID: sd.ID, Name: long}, nil)
	requireKind(t, err, KindValidation)

	_, err = svc.Superdomains.Update(ctx, sd.ID, SuperdomainUpdate{Name: &long})
	requireKind(t, err, KindValidation)

	page, err := svc.Superdomains.List(ctx, "", PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Pagination.Total, "rejected names are never persisted")

	domains, err := svc.Domains.List(ctx, DomainFilter{}, PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, domains.Data)

	exactly := strings.Repeat("é", 100)
	_, err = svc.Superdomains.Create(ctx, SuperdomainCreate{Name: exactly}, nil)
	assert.NoError(t, err, "length is counted in characters")
}

func TestScopedUniqueness(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	a, err := svc.Superdomains.Create(ctx, SuperdomainCreate{Name: "A"}, nil)
	require.NoError(t, err)
	b, err := svc.Superdomains.Create(ctx, SuperdomainCreate{Name: "B"}, nil)
	require.NoError(t, err)

	_, err = svc.Superdomains.Create(ctx, SuperdomainCreate{Name: "A"}, nil)
	se := requireKind(t, err, KindValidation)
	assert.Equal(t, "Superdomain with name 'A' already exists", se.Message)

	_, err = svc.Domains.Create(ctx, DomainCreate{SuperdomainID: a.ID, Name: "Sales"}, nil)
	require.NoError(t, err)
	_, err = svc.Domains.Create(ctx, DomainCreate{SuperdomainID: b.ID, Name: "Sales"}, nil)
	require.NoError(t, err)
	_, err = svc.Domains.Create(ctx, DomainCreate{SuperdomainID: a.ID, Name: "Sales"}, nil)
	requireKind(t, err, KindValidation)

	// renaming to its own name is not a conflict
	other, err := svc.Domains.Create(ctx, DomainCreate{SuperdomainID: a.ID, Name: "Marketing"}, nil)
	require.NoError(t, err)
	_, err = svc.Domains.Update(ctx, other.ID, DomainUpdate{Name: ptr("Marketing")})
	require.NoError(t, err)
	_, err = svc.Domains.Update(ctx, other.ID, DomainUpdate{Name: ptr("Sales")})
	requireKind(t, err, KindValidation)
}

func TestParentMustExist(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	_, err := svc.Domains.Create(ctx, DomainCreate{SuperdomainID: 99, Name: "X"}, nil)
	se := requireKind(t, err, KindValidation)
	assert.Equal(t, "Superdomain with ID 99 not found", se.Message)

	_, err = svc.Domains.Create(ctx, DomainCreate{Name: "X"}, nil)
	se = requireKind(t, err, KindValidation)
	assert.Equal(t, "superdomainId is required", se.Message)

	_, err = svc.Entities.Create(ctx, EntityCreate{DomainID: 99, Name: "X"}, nil)
	requireKind(t, err, KindValidation)

	_, err = svc.Attributes.Create(ctx, AttributeCreate{EntityID: 99, Name: "x", DataType: "String"}, nil)
	requireKind(t, err, KindValidation)

	_, err = svc.Attributes.CreateForEntity(ctx, 99, AttributeCreate{Name: "x", DataType: "String"}, nil)
	requireKind(t, err, KindNotFound)
}

func TestGetUpdateDeleteMissing(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	_, err := svc.Superdomains.Get(ctx, 1)
	requireKind(t, err, KindNotFound)
	_, err = svc.Domains.Update(ctx, 1, DomainUpdate{})
	requireKind(t, err, KindNotFound)
	_, err = svc.Entities.Delete(ctx, 1)
	requireKind(t, err, KindNotFound)
	_, err = svc.Attributes.Get(ctx, 1)
	requireKind(t, err, KindNotFound)
	_, err = svc.Relationships.Delete(ctx, 1)
	requireKind(t, err, KindNotFound)
	_, err = svc.Diagrams.Get(ctx, 1)
	requireKind(t, err, KindNotFound)
	_, err = svc.Superdomains.Delete(ctx, 1, true)
	requireKind(t, err, KindNotFound)
}

func TestPartialUpdate(t *testing.T) {
	svc, st := newTestServices(t)
	ctx := context.Background()
	tree := storagetest.SeedTree(t, st, "p")

	updated, err := svc.Attributes.Update(ctx, tree.Attribute.ID, AttributeUpdate{Description: ptr("primary key")})
	require.NoError(t, err)
	assert.Equal(t, "id", updated.Name)
	assert.Equal(t, models.DataTypeInteger, updated.DataType)
	assert.Equal(t, "primary key", updated.Description)
	assert.True(t, !updated.UpdatedAt.Before(tree.Attribute.UpdatedAt))

	updated, err = svc.Attributes.Update(ctx, tree.Attribute.ID, AttributeUpdate{DataType: ptr("BigInteger")})
	require.NoError(t, err)
	assert.Equal(t, models.DataTypeBigInteger, updated.DataType)
	assert.Equal(t, "primary key", updated.Description)

	_, err = svc.Attributes.Update(ctx, tree.Attribute.ID, AttributeUpdate{DataType: ptr("Money")})
	requireKind(t, err, KindValidation)
}

func TestAttributeDataTypes(t *testing.T) {
	svc, st := newTestServices(t)
	ctx := context.Background()
	tree := storagetest.SeedTree(t, st, "dt")

	for _, dt := range models.DataTypes() {
		t.Run(string(dt), func(t *testing.T) {
			attr, err := svc.Attributes.Create(ctx, AttributeCreate{
				EntityID: tree.Entity.ID, Name: "col_" + string(dt), DataType: string(dt),
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, dt, attr.DataType)
			assert.True(t, attr.IsNullable, "attributes are nullable by default")
		})
	}

	for _, bad := range []string{"VARCHAR", "string", ""} {
		_, err := svc.Attributes.Create(ctx, AttributeCreate{EntityID: tree.Entity.ID, Name: "bad", DataType: bad}, nil)
		requireKind(t, err, KindValidation)
	}

	_, err := svc.Attributes.Create(ctx, AttributeCreate{EntityID: tree.Entity.ID, Name: "x", DataType: "Money"}, nil)
	se := requireKind(t, err, KindValidation)
	assert.Contains(t, se.Message, "Must be one of: String, Text, Integer")
	assert.Contains(t, se.Fields, "dataType")
}

func TestRelationshipCardinalities(t *testing.T) {
	svc, st := newTestServices(t)
	ctx := context.Background()

	for _, src := range models.Cardinalities() {
		for _, dst := range models.Cardinalities() {
			t.Run(string(src)+"_"+string(dst), func(t *testing.T) {
				a := storagetest.SeedTree(t, st, "a"+string(src)+string(dst))
				b := storagetest.SeedTree(t, st, "b"+string(src)+string(dst))
				rel, err := svc.Relationships.Create(ctx, RelationshipCreate{
					SourceEntityID: a.Entity.ID, TargetEntityID: b.Entity.ID,
					SourceCardinality: string(src), TargetCardinality: string(dst),
				}, nil)
				require.NoError(t, err)
				assert.Equal(t, src, rel.SourceCardinality)
				assert.Equal(t, dst, rel.TargetCardinality)
			})
		}
	}

	a := storagetest.SeedTree(t, st, "x")
	_, err := svc.Relationships.Create(ctx, RelationshipCreate{
		SourceEntityID: a.Entity.ID, TargetEntityID: a.Entity.ID,
		SourceCardinality: "MANY", TargetCardinality: "ONE",
	}, nil)
	requireKind(t, err, KindValidation)
}

func TestRelationshipPairRules(t *testing.T) {
	svc, st := newTestServices(t)
	ctx := context.Background()
	emp := storagetest.SeedTree(t, st, "emp")
	dept := storagetest.SeedTree(t, st, "dept")

	create := func(src, dst uint, srcRole, dstRole string) (*models.Relationship, error) {
		return svc.Relationships.Create(ctx, RelationshipCreate{
			SourceEntityID: src, TargetEntityID: dst,
			SourceRole: srcRole, TargetRole: dstRole,
			SourceCardinality: "ONE", TargetCardinality: "ZERO_MANY",
		}, nil)
	}

	first, err := create(emp.Entity.ID, dept.Entity.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, "1:N", first.Notation())

	_, err = create(emp.Entity.ID, dept.Entity.ID, "", "")
	se := requireKind(t, err, KindValidation)
	assert.Contains(t, se.Message, "require unique source and target roles")

	_, err = create(emp.Entity.ID, dept.Entity.ID, "manager", "")
	requireKind(t, err, KindValidation)

	_, err = create(emp.Entity.ID, dept.Entity.ID, "manager", "managed")
	require.NoError(t, err)

	_, err = create(emp.Entity.ID, dept.Entity.ID, "manager", "managed")
	requireKind(t, err, KindValidation)

	// the reverse direction is a different ordered pair
	_, err = create(dept.Entity.ID, emp.Entity.ID, "", "")
	require.NoError(t, err)

	self, err := create(emp.Entity.ID, emp.Entity.ID, "", "")
	require.NoError(t, err)
	assert.True(t, self.SelfReferential())

	_, err = create(emp.Entity.ID, emp.Entity.ID, "boss", "report")
	require.NoError(t, err)

	list, err := svc.Entities.Relationships(ctx, emp.Entity.ID, PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 5, list.Pagination.Total)
}

func TestRelationshipAttributeReferences(t *testing.T) {
	svc, st := newTestServices(t)
	ctx := context.Background()
	a := storagetest.SeedTree(t, st, "a")
	b := storagetest.SeedTree(t, st, "b")

	_, err := svc.Relationships.Create(ctx, RelationshipCreate{
		SourceEntityID: a.Entity.ID, TargetEntityID: b.Entity.ID,
		SourceAttributeID: &b.Attribute.ID,
		SourceCardinality: "ONE", TargetCardinality: "ONE",
	}, nil)
	se := requireKind(t, err, KindValidation)
	assert.Contains(t, se.Message, "does not belong to entity")

	rel, err := svc.Relationships.Create(ctx, RelationshipCreate{
		SourceEntityID: a.Entity.ID, TargetEntityID: b.Entity.ID,
		SourceAttributeID: &a.Attribute.ID, TargetAttributeID: &b.Attribute.ID,
		SourceCardinality: "ONE", TargetCardinality: "ONE",
	}, nil)
	require.NoError(t, err)

	updated, err := svc.Relationships.Update(ctx, rel.ID, RelationshipUpdate{TargetCardinality: ptr("ONE_MANY")})
	require.NoError(t, err)
	assert.Equal(t, models.CardinalityOneMany, updated.TargetCardinality)
	assert.Equal(t, "1:N", updated.Notation())
}

func TestSuperdomainTwoPhaseDelete(t *testing.T) {
	svc, st := newTestServices(t)
	ctx := context.Background()
	tree := storagetest.SeedTree(t, st, "biz")
	other := storagetest.SeedTree(t, st, "other")

	rel, err := svc.Relationships.Create(ctx, RelationshipCreate{
		SourceEntityID: tree.Entity.ID, TargetEntityID: other.Entity.ID,
		SourceCardinality: "ONE", TargetCardinality: "ZERO_MANY",
	}, nil)
	require.NoError(t, err)

	diagram, err := svc.Diagrams.Create(ctx, DiagramCreate{Name: "Landscape"}, nil)
	require.NoError(t, err)
	_, err = svc.Diagrams.AddObject(ctx, diagram.ID, DiagramObjectCreate{
		ObjectType: "ENTITY", ObjectID: tree.Entity.ID, PositionX: ptr(1.0), PositionY: ptr(2.0),
	})
	require.NoError(t, err)

	first, err := svc.Superdomains.Impact(ctx, tree.Superdomain.ID)
	require.NoError(t, err)
	second, err := svc.Superdomains.Impact(ctx, tree.Superdomain.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second, "impact analysis is idempotent")
	assert.True(t, first.Cascade)
	assert.Equal(t, []string{"biz domain"}, first.AffectedDomains)
	assert.Equal(t, []string{"biz entity"}, first.AffectedEntities)
	assert.Equal(t, []string{"Landscape"}, first.AffectedDiagrams)

	_, err = svc.Superdomains.Delete(ctx, tree.Superdomain.ID, false)
	se := requireKind(t, err, KindConfirmationRequired)
	require.NotNil(t, se.Impact)
	assert.True(t, se.Impact.RequiresConfirmation)
	assert.True(t, se.Impact.Cascade)
	assert.Equal(t, "Superdomain 'biz superdomain' has dependencies", se.Message)

	_, err = svc.Superdomains.Get(ctx, tree.Superdomain.ID)
	require.NoError(t, err, "unconfirmed delete leaves the row intact")

	res, err := svc.Superdomains.Delete(ctx, tree.Superdomain.ID, true)
	require.NoError(t, err)
	assert.True(t, res.Cascade)
	assert.Equal(t, "Superdomain 'biz superdomain' deleted successfully", res.Message)

	_, err = svc.Domains.Get(ctx, tree.Domain.ID)
	requireKind(t, err, KindNotFound)
	_, err = svc.Entities.Get(ctx, tree.Entity.ID, false)
	requireKind(t, err, KindNotFound)
	_, err = svc.Attributes.Get(ctx, tree.Attribute.ID)
	requireKind(t, err, KindNotFound)
	_, err = svc.Relationships.Get(ctx, rel.ID)
	requireKind(t, err, KindNotFound)

	details, err := svc.Diagrams.Get(ctx, diagram.ID)
	require.NoError(t, err)
	assert.Empty(t, details.Objects)

	_, err = svc.Entities.Get(ctx, other.Entity.ID, false)
	assert.NoError(t, err)
}

func TestSuperdomainDeleteWithoutChildren(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	sd, err := svc.Superdomains.Create(ctx, SuperdomainCreate{Name: "Empty"}, nil)
	require.NoError(t, err)

	res, err := svc.Superdomains.Delete(ctx, sd.ID, false)
	require.NoError(t, err)
	assert.False(t, res.Cascade)
	assert.Empty(t, res.AffectedDomains)
	assert.NotNil(t, res.AffectedDomains)
}

func TestDiagramObjectPlacement(t *testing.T) {
	svc, st := newTestServices(t)
	ctx := context.Background()
	tree := storagetest.SeedTree(t, st, "d")

	d1, err := svc.Diagrams.Create(ctx, DiagramCreate{Name: "One", Tags: []string{" core ", "core", ""}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"core"}, []string(d1.Tags))
	d2, err := svc.Diagrams.Create(ctx, DiagramCreate{Name: "Two"}, nil)
	require.NoError(t, err)

	_, err = svc.Diagrams.AddObject(ctx, 999, DiagramObjectCreate{
		ObjectType: "ENTITY", ObjectID: tree.Entity.ID, PositionX: ptr(0.0), PositionY: ptr(0.0),
	})
	requireKind(t, err, KindNotFound)

	_, err = svc.Diagrams.AddObject(ctx, d1.ID, DiagramObjectCreate{ObjectType: "ENTITY", ObjectID: tree.Entity.ID})
	se := requireKind(t, err, KindValidation)
	assert.Equal(t, "positionX is required", se.Message)

	_, err = svc.Diagrams.AddObject(ctx, d1.ID, DiagramObjectCreate{
		ObjectType: "ENTITY", ObjectID: tree.Entity.ID + 50, PositionX: ptr(0.0), PositionY: ptr(0.0),
	})
	se = requireKind(t, err, KindValidation)
	assert.Contains(t, se.Message, "Entity with ID")

	_, err = svc.Diagrams.AddObject(ctx, d1.ID, DiagramObjectCreate{
		ObjectType: "ATTRIBUTE", ObjectID: tree.Attribute.ID, PositionX: ptr(0.0), PositionY: ptr(0.0),
	})
	requireKind(t, err, KindValidation)

	obj, err := svc.Diagrams.AddObject(ctx, d1.ID, DiagramObjectCreate{
		ObjectType: "DOMAIN", ObjectID: tree.Domain.ID, PositionX: ptr(10.0), PositionY: ptr(20.0), Width: ptr(200.0),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ObjectTypeDomain, obj.ObjectType)

	_, err = svc.Diagrams.AddObject(ctx, d1.ID, DiagramObjectCreate{
		ObjectType: "DOMAIN", ObjectID: tree.Domain.ID, PositionX: ptr(0.0), PositionY: ptr(0.0),
	})
	requireKind(t, err, KindValidation)

	// update and remove are scoped to the diagram in the path
	_, err = svc.Diagrams.UpdateObject(ctx, d2.ID, obj.ID, DiagramObjectUpdate{PositionX: ptr(5.0)})
	requireKind(t, err, KindNotFound)
	_, err = svc.Diagrams.RemoveObject(ctx, d2.ID, obj.ID)
	requireKind(t, err, KindNotFound)

	moved, err := svc.Diagrams.UpdateObject(ctx, d1.ID, obj.ID, DiagramObjectUpdate{PositionX: ptr(5.0), IsCollapsed: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, 5.0, moved.PositionX)
	assert.Equal(t, 20.0, moved.PositionY)
	assert.True(t, moved.IsCollapsed)

	containing, err := svc.Diagrams.Containing(ctx, "domain", tree.Domain.ID)
	require.NoError(t, err)
	require.Len(t, containing, 1)
	assert.Equal(t, d1.ID, containing[0].ID)

	_, err = svc.Diagrams.Containing(ctx, "table", 1)
	requireKind(t, err, KindValidation)

	_, err = svc.Diagrams.RemoveObject(ctx, d1.ID, obj.ID)
	require.NoError(t, err)
	_, err = svc.Domains.Get(ctx, tree.Domain.ID)
	assert.NoError(t, err, "the repository object survives removal from a diagram")
}

func TestDiagramRelationships(t *testing.T) {
	svc, st := newTestServices(t)
	ctx := context.Background()
	a := storagetest.SeedTree(t, st, "a")
	b := storagetest.SeedTree(t, st, "b")

	rel, err := svc.Relationships.Create(ctx, RelationshipCreate{
		SourceEntityID: a.Entity.ID, TargetEntityID: b.Entity.ID,
		SourceCardinality: "ONE", TargetCardinality: "ONE_MANY",
	}, nil)
	require.NoError(t, err)
	d, err := svc.Diagrams.Create(ctx, DiagramCreate{Name: "Lines"}, nil)
	require.NoError(t, err)

	_, err = svc.Diagrams.AddRelationship(ctx, d.ID, DiagramRelationshipCreate{RelationshipID: rel.ID, SourceAnchor: "middle"})
	requireKind(t, err, KindValidation)

	line, err := svc.Diagrams.AddRelationship(ctx, d.ID, DiagramRelationshipCreate{RelationshipID: rel.ID, SourceAnchor: "left"})
	require.NoError(t, err)
	assert.True(t, line.IsVisible)
	assert.Equal(t, models.AnchorLeft, line.SourceAnchor)

	_, err = svc.Diagrams.AddRelationship(ctx, d.ID, DiagramRelationshipCreate{RelationshipID: rel.ID})
	requireKind(t, err, KindValidation)

	hidden, err := svc.Diagrams.UpdateRelationship(ctx, d.ID, line.ID, DiagramRelationshipUpdate{IsVisible: ptr(false)})
	require.NoError(t, err)
	assert.False(t, hidden.IsVisible)

	details, err := svc.Diagrams.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, details.Relationships, 1)

	_, err = svc.Relationships.Delete(ctx, rel.ID)
	require.NoError(t, err)
	details, err = svc.Diagrams.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, details.Relationships)
}

func TestAuthScenario(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	reg, err := svc.Auth.Register(ctx, RegisterInput{Email: "Alice@Example.com", Username: "alice", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "alice@example.com", reg.User.Email)
	assert.True(t, reg.User.IsActive)

	_, err = svc.Auth.Register(ctx, RegisterInput{Email: "alice@example.com", Username: "alice2", Password: "password123"})
	se := requireKind(t, err, KindValidation)
	assert.Equal(t, "Email already registered", se.Message)

	_, err = svc.Auth.Register(ctx, RegisterInput{Email: "bob@example.com", Username: "alice", Password: "password123"})
	se = requireKind(t, err, KindValidation)
	assert.Equal(t, "Username already taken", se.Message)

	_, err = svc.Auth.Register(ctx, RegisterInput{Email: "carol@example.com", Username: "ca", Password: "password123"})
	requireKind(t, err, KindValidation)
	_, err = svc.Auth.Register(ctx, RegisterInput{Email: "carol@example.com", Username: "carol", Password: "12345"})
	requireKind(t, err, KindValidation)

	_, err = svc.Auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: "wrong"})
	se = requireKind(t, err, KindUnauthenticated)
	assert.Equal(t, "Invalid email or password", se.Message)

	_, err = svc.Auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "password123"})
	requireKind(t, err, KindUnauthenticated)

	login, err := svc.Auth.Login(ctx, LoginInput{Email: "ALICE@example.com", Password: "password123"})
	require.NoError(t, err)
	require.NotNil(t, login.User.LastLoginAt)

	claims, err := svc.Auth.jwt.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, st := newTestServices(t)
	ctx := context.Background()

	reg, err := svc.Auth.Register(ctx, RegisterInput{Email: "dave@example.com", Username: "dave", Password: "password123"})
	require.NoError(t, err)
	require.NoError(t, st.SetUserActive(ctx, reg.User.ID, false))

	_, err = svc.Auth.Login(ctx, LoginInput{Email: "dave@example.com", Password: "password123"})
	se := requireKind(t, err, KindUnauthenticated)
	assert.Equal(t, "Account is deactivated", se.Message)

	_, err = svc.Auth.IssueToken(ctx, reg.User.ID)
	requireKind(t, err, KindUnauthenticated)
}

func TestPagination(t *testing.T) {
	tests := []struct {
		name      string
		req       PageRequest
		total     int64
		wantPage  int
		wantSize  int
		wantPages int
	}{
		{"defaults", PageRequest{}, 0, 1, DefaultPageSize, 0},
		{"second page", PageOf(2, 10), 25, 2, 10, 3},
		{"capped", PageRequest{Limit: 5000}, 1001, 1, MaxPageSize, 2},
		{"skip limit", PageRequest{Offset: 20, Limit: 10}, 21, 3, 10, 3},
		{"negative page", PageOf(-3, 10), 5, 1, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPage[int](nil, tt.total, tt.req)
			assert.NotNil(t, p.Data)
			assert.Equal(t, tt.wantPage, p.Pagination.Page)
			assert.Equal(t, tt.wantSize, p.Pagination.PageSize)
			assert.Equal(t, tt.wantPages, p.Pagination.TotalPages)
			assert.Equal(t, tt.total, p.Pagination.Total)
		})
	}
}
