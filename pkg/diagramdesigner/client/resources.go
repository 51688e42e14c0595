package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/schalkje/DiagramDesigner/models"
)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// Register creates an account and keeps the issued token for later calls.
func (c *Client) Register(ctx context.Context, email, username, password string) (*AuthResult, error) {
	var res AuthResult
	in := map[string]string{"email": email, "username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, in, &res); err != nil {
		return nil, err
	}
	c.token = res.Token
	return &res, nil
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, in, &res); err != nil {
		return nil, err
	}
	c.token = res.Token
	return &res, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

type SuperdomainInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DeleteImpact lists what a superdomain delete removes.
type DeleteImpact struct {
	Message              string   `json:"message"`
	Cascade              bool     `json:"cascade"`
	AffectedDomains      []string `json:"affectedDomains"`
	AffectedEntities     []string `json:"affectedEntities"`
	AffectedDiagrams     []string `json:"affectedDiagrams"`
	TotalDomains         int      `json:"totalDomains"`
	TotalEntities        int      `json:"totalEntities"`
	RequiresConfirmation bool     `json:"requiresConfirmation"`
}

func (c *Client) ListSuperdomains(ctx context.Context, search string, opts ListOptions) (*Page[models.Superdomain], error) {
	q := opts.values()
	if search != "" {
		q.Set("search", search)
	}
	var page Page[models.Superdomain]
	if err := c.do(ctx, http.MethodGet, "/superdomains", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) CreateSuperdomain(ctx context.Context, in SuperdomainInput) (*models.Superdomain, error) {
	var sd models.Superdomain
	if err := c.do(ctx, http.MethodPost, "/superdomains", nil, in, &sd); err != nil {
		return nil, err
	}
	return &sd, nil
}

func (c *Client) GetSuperdomain(ctx context.Context, id uint) (*models.Superdomain, error) {
	var sd models.Superdomain
	if err := c.do(ctx, http.MethodGet, idPath("/superdomains/%d", id), nil, nil, &sd); err != nil {
		return nil, err
	}
	return &sd, nil
}

// SuperdomainImpact previews a delete without changing anything.
func (c *Client) SuperdomainImpact(ctx context.Context, id uint) (*DeleteImpact, error) {
	var impact DeleteImpact
	if err := c.do(ctx, http.MethodGet, idPath("/superdomains/%d/impact", id), nil, nil, &impact); err != nil {
		return nil, err
	}
	return &impact, nil
}

// DeleteSuperdomain deletes a superdomain. Without confirm, a superdomain
// that still has children is left alone and the returned error satisfies
// IsConfirmationRequired, carrying the impact.
func (c *Client) DeleteSuperdomain(ctx context.Context, id uint, confirm bool) (*DeleteImpact, error) {
	q := url.Values{}
	if confirm {
		q.Set("confirm", strconv.FormatBool(true))
	}
	var impact DeleteImpact
	if err := c.do(ctx, http.MethodDelete, idPath("/superdomains/%d", id), q, nil, &impact); err != nil {
		return nil, err
	}
	return &impact, nil
}

type DomainInput struct {
	SuperdomainID uint   `json:"superdomainId"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
}

func (c *Client) CreateDomain(ctx context.Context, in DomainInput) (*models.Domain, error) {
	var d models.Domain
	if err := c.do(ctx, http.MethodPost, "/domains", nil, in, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDomains lists domains, optionally restricted to one superdomain.
func (c *Client) ListDomains(ctx context.Context, superdomainID uint, opts ListOptions) (*Page[models.Domain], error) {
	q := opts.values()
	if superdomainID != 0 {
		q.Set("superdomainId", strconv.FormatUint(uint64(superdomainID), 10))
	}
	var page Page[models.Domain]
	if err := c.do(ctx, http.MethodGet, "/domains", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

type EntityInput struct {
	DomainID    uint   `json:"domainId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (c *Client) CreateEntity(ctx context.Context, in EntityInput) (*models.Entity, error) {
	var e models.Entity
	if err := c.do(ctx, http.MethodPost, "/entities", nil, in, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEntity returns an entity with its attributes.
func (c *Client) GetEntity(ctx context.Context, id uint) (*models.Entity, error) {
	var e models.Entity
	if err := c.do(ctx, http.MethodGet, idPath("/entities/%d", id), nil, nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

type AttributeInput struct {
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	DataType     models.DataType `json:"dataType"`
	IsNullable   *bool           `json:"isNullable,omitempty"`
	DefaultValue string          `json:"defaultValue,omitempty"`
}

// AddAttribute creates an attribute on the given entity.
func (c *Client) AddAttribute(ctx context.Context, entityID uint, in AttributeInput) (*models.Attribute, error) {
	var a models.Attribute
	if err := c.do(ctx, http.MethodPost, idPath("/entities/%d/attributes", entityID), nil, in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

type RelationshipInput struct {
	SourceEntityID    uint               `json:"sourceEntityId"`
	TargetEntityID    uint               `json:"targetEntityId"`
	SourceAttributeID *uint              `json:"sourceAttributeId,omitempty"`
	TargetAttributeID *uint              `json:"targetAttributeId,omitempty"`
	Name              string             `json:"name,omitempty"`
	SourceRole        string             `json:"sourceRole,omitempty"`
	TargetRole        string             `json:"targetRole,omitempty"`
	SourceCardinality models.Cardinality `json:"sourceCardinality"`
	TargetCardinality models.Cardinality `json:"targetCardinality"`
	Description       string             `json:"description,omitempty"`
}

func (c *Client) CreateRelationship(ctx context.Context, in RelationshipInput) (*models.Relationship, error) {
	var r models.Relationship
	if err := c.do(ctx, http.MethodPost, "/relationships", nil, in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// EntityRelationships lists edges where the entity is source or target.
func (c *Client) EntityRelationships(ctx context.Context, entityID uint, opts ListOptions) (*Page[models.Relationship], error) {
	var page Page[models.Relationship]
	if err := c.do(ctx, http.MethodGet, idPath("/entities/%d/relationships", entityID), opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

type DiagramInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Purpose     string   `json:"purpose,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// DiagramDetails is a diagram with everything drawn on it.
type DiagramDetails struct {
	models.Diagram
	Objects       []models.DiagramObject       `json:"objects"`
	Relationships []models.DiagramRelationship `json:"relationships"`
}

func (c *Client) CreateDiagram(ctx context.Context, in DiagramInput) (*models.Diagram, error) {
	var d models.Diagram
	if err := c.do(ctx, http.MethodPost, "/diagrams", nil, in, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) GetDiagram(ctx context.Context, id uint) (*DiagramDetails, error) {
	var d DiagramDetails
	if err := c.do(ctx, http.MethodGet, idPath("/diagrams/%d", id), nil, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

type PlacementInput struct {
	ObjectType models.ObjectType `json:"objectType"`
	ObjectID   uint              `json:"objectId"`
	PositionX  float64           `json:"positionX"`
	PositionY  float64           `json:"positionY"`
	Width      *float64          `json:"width,omitempty"`
	Height     *float64          `json:"height,omitempty"`
	ZIndex     int               `json:"zIndex,omitempty"`
}

// PlaceObject puts a superdomain, domain or entity on a diagram.
func (c *Client) PlaceObject(ctx context.Context, diagramID uint, in PlacementInput) (*models.DiagramObject, error) {
	var obj models.DiagramObject
	if err := c.do(ctx, http.MethodPost, idPath("/diagrams/%d/objects", diagramID), nil, in, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

// ShowRelationship draws an existing relationship on a diagram.
func (c *Client) ShowRelationship(ctx context.Context, diagramID, relationshipID uint) (*models.DiagramRelationship, error) {
	var dr models.DiagramRelationship
	in := map[string]uint{"relationshipId": relationshipID}
	if err := c.do(ctx, http.MethodPost, idPath("/diagrams/%d/relationships", diagramID), nil, in, &dr); err != nil {
		return nil, err
	}
	return &dr, nil
}

// DiagramsContaining lists the diagrams an object is placed on.
func (c *Client) DiagramsContaining(ctx context.Context, objectType models.ObjectType, objectID uint) ([]models.Diagram, error) {
	var out []models.Diagram
	path := "/diagrams/containing/" + url.PathEscape(string(objectType)) + idPath("/%d", objectID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
