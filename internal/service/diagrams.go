package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/schalkje/DiagramDesigner/internal/storage"
	"github.com/schalkje/DiagramDesigner/models"
)

// DiagramCreate is the payload for creating a diagram.
type DiagramCreate struct {
	Name           string         `json:"name" validate:"notblank,max=100"`
	Description    string         `json:"description"`
	Purpose        string         `json:"purpose"`
	Tags           []string       `json:"tags" validate:"omitempty,dive,notblank,max=50"`
	CanvasSettings datatypes.JSON `json:"canvasSettings" swaggertype:"object"`
}

// DiagramUpdate is a partial update; nil fields are left unchanged.
type DiagramUpdate struct {
	Name           *string        `json:"name" validate:"omitnil,notblank,max=100"`
	Description    *string        `json:"description"`
	Purpose        *string        `json:"purpose"`
	Tags           *[]string      `json:"tags" validate:"omitnil,dive,notblank,max=50"`
	CanvasSettings datatypes.JSON `json:"canvasSettings" swaggertype:"object"`
}

// DiagramFilter narrows List.
type DiagramFilter struct {
	Tag       string
	CreatedBy *uint
}

// DiagramDetails is a diagram with everything placed on it.
type DiagramDetails struct {
	models.Diagram
	Objects       []models.DiagramObject       `json:"objects"`
	Relationships []models.DiagramRelationship `json:"relationships"`
}

// DiagramObjectCreate places a superdomain, domain or entity on a diagram.
type DiagramObjectCreate struct {
	ObjectType  string         `json:"objectType" validate:"required,objecttype"`
	ObjectID    uint           `json:"objectId" validate:"required"`
	PositionX   *float64       `json:"positionX" validate:"required"`
	PositionY   *float64       `json:"positionY" validate:"required"`
	Width       *float64       `json:"width" validate:"omitnil,gt=0"`
	Height      *float64       `json:"height" validate:"omitnil,gt=0"`
	ZIndex      int            `json:"zIndex"`
	VisualStyle datatypes.JSON `json:"visualStyle" swaggertype:"object"`
	IsCollapsed bool           `json:"isCollapsed"`
}

// DiagramObjectUpdate moves, resizes or restyles a placement.
type DiagramObjectUpdate struct {
	PositionX   *float64       `json:"positionX"`
	PositionY   *float64       `json:"positionY"`
	Width       *float64       `json:"width" validate:"omitnil,gt=0"`
	Height      *float64       `json:"height" validate:"omitnil,gt=0"`
	ZIndex      *int           `json:"zIndex"`
	VisualStyle datatypes.JSON `json:"visualStyle" swaggertype:"object"`
	IsCollapsed *bool          `json:"isCollapsed"`
}

// DiagramRelationshipCreate shows a relationship on a diagram.
type DiagramRelationshipCreate struct {
	RelationshipID uint           `json:"relationshipId" validate:"required"`
	IsVisible      *bool          `json:"isVisible"`
	PathPoints     datatypes.JSON `json:"pathPoints" swaggertype:"array,object"`
	SourceAnchor   string         `json:"sourceAnchor" validate:"anchor"`
	TargetAnchor   string         `json:"targetAnchor" validate:"anchor"`
	VisualStyle    datatypes.JSON `json:"visualStyle" swaggertype:"object"`
}

// DiagramRelationshipUpdate changes the routing of a relationship line.
type DiagramRelationshipUpdate struct {
	IsVisible    *bool          `json:"isVisible"`
	PathPoints   datatypes.JSON `json:"pathPoints" swaggertype:"array,object"`
	SourceAnchor *string        `json:"sourceAnchor" validate:"omitnil,anchor"`
	TargetAnchor *string        `json:"targetAnchor" validate:"omitnil,anchor"`
	VisualStyle  datatypes.JSON `json:"visualStyle" swaggertype:"object"`
}

// DiagramService manages diagrams and what is placed on them. Diagrams only
// reference repository objects; removing a placement or a whole diagram
// never deletes the object itself.
type DiagramService struct {
	*base
}

// Get returns the diagram with its objects and relationship lines.
func (s *DiagramService) Get(ctx context.Context, id uint) (*DiagramDetails, error) {
	d, err := s.diagram(ctx, id)
	if err != nil {
		return nil, err
	}
	objs, err := s.store.DiagramObjects(ctx, id)
	if err != nil {
		return nil, err
	}
	rels, err := s.store.DiagramRelationships(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DiagramDetails{Diagram: *d, Objects: objs, Relationships: rels}, nil
}

func (s *DiagramService) diagram(ctx context.Context, id uint) (*models.Diagram, error) {
	d, err := s.store.GetDiagram(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Diagram with ID %d not found", id)
	}
	return d, nil
}

// List returns diagrams, most recently updated first.
func (s *DiagramService) List(ctx context.Context, f DiagramFilter, page PageRequest) (*Page[models.Diagram], error) {
	items, total, err := s.store.ListDiagrams(ctx, storage.DiagramFilter{
		Tag:       strings.TrimSpace(f.Tag),
		CreatedBy: f.CreatedBy,
	}, page.options())
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page), nil
}

// Create stores a new, empty diagram.
func (s *DiagramService) Create(ctx context.Context, in DiagramCreate, userID *uint) (*models.Diagram, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Tags = normalizeTags(in.Tags)
	if err := s.validate(in); err != nil {
		return nil, err
	}

	d := &models.Diagram{
		Name:           in.Name,
		Description:    in.Description,
		Purpose:        in.Purpose,
		Tags:           datatypes.JSONSlice[string](in.Tags),
		CanvasSettings: in.CanvasSettings,
		CreatedBy:      userID,
		LastModifiedBy: userID,
	}
	if err := s.store.CreateDiagram(ctx, d); err != nil {
		return nil, writeErr(err, "Diagram already exists")
	}
	return d, nil
}

// Update applies the supplied fields and records the acting user.
func (s *DiagramService) Update(ctx context.Context, id uint, in DiagramUpdate, userID *uint) (*models.Diagram, error) {
	if _, err := s.diagram(ctx, id); err != nil {
		return nil, err
	}
	trimPtr(in.Name)
	if in.Tags != nil {
		tags := normalizeTags(*in.Tags)
		in.Tags = &tags
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Purpose != nil {
		fields["purpose"] = *in.Purpose
	}
	if in.Tags != nil {
		fields["tags"] = datatypes.JSONSlice[string](*in.Tags)
	}
	if in.CanvasSettings != nil {
		fields["canvas_settings"] = in.CanvasSettings
	}
	if userID != nil {
		fields["last_modified_by"] = *userID
	}

	if err := s.store.UpdateDiagram(ctx, id, fields); err != nil {
		return nil, writeErr(err, "Diagram already exists")
	}
	return s.diagram(ctx, id)
}

// Delete removes the diagram and its placements.
func (s *DiagramService) Delete(ctx context.Context, id uint) (*DeleteResult, error) {
	d, err := s.diagram(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteDiagram(ctx, id); err != nil {
		return nil, notFoundOr(err, "Diagram with ID %d not found", id)
	}
	return &DeleteResult{Message: fmt.Sprintf("Diagram '%s' deleted successfully", d.Name)}, nil
}

// AddObject places a repository object on the diagram. The reference is
// resolved against the table its type names; a dangling reference or a
// second placement of the same object is rejected.
func (s *DiagramService) AddObject(ctx context.Context, diagramID uint, in DiagramObjectCreate) (*models.DiagramObject, error) {
	if _, err := s.diagram(ctx, diagramID); err != nil {
		return nil, err
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}

	ref, err := models.NewObjectRef(models.ObjectType(in.ObjectType), in.ObjectID)
	if err != nil {
		return nil, Validation("%s", err.Error())
	}
	ok, err := s.store.ObjectExists(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, Validation("%s with ID %d not found", objectLabel(ref), ref.ObjectID())
	}

	_, err = s.store.FindDiagramObject(ctx, diagramID, ref)
	switch {
	case err == nil:
		return nil, Validation("%s %d is already on this diagram", objectLabel(ref), ref.ObjectID())
	case !storage.IsNotFound(err):
		return nil, err
	}

	obj := &models.DiagramObject{
		DiagramID:   diagramID,
		ObjectType:  ref.Type(),
		ObjectID:    ref.ObjectID(),
		PositionX:   *in.PositionX,
		PositionY:   *in.PositionY,
		Width:       in.Width,
		Height:      in.Height,
		ZIndex:      in.ZIndex,
		VisualStyle: in.VisualStyle,
		IsCollapsed: in.IsCollapsed,
	}
	if err := s.store.CreateDiagramObject(ctx, obj); err != nil {
		return nil, writeErr(err, fmt.Sprintf("%s %d is already on this diagram", objectLabel(ref), ref.ObjectID()))
	}
	return obj, nil
}

// UpdateObject changes a placement. The placement must belong to diagramID.
func (s *DiagramService) UpdateObject(ctx context.Context, diagramID, objectID uint, in DiagramObjectUpdate) (*models.DiagramObject, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.PositionX != nil {
		fields["position_x"] = *in.PositionX
	}
	if in.PositionY != nil {
		fields["position_y"] = *in.PositionY
	}
	if in.Width != nil {
		fields["width"] = *in.Width
	}
	if in.Height != nil {
		fields["height"] = *in.Height
	}
	if in.ZIndex != nil {
		fields["z_index"] = *in.ZIndex
	}
	if in.VisualStyle != nil {
		fields["visual_style"] = in.VisualStyle
	}
	if in.IsCollapsed != nil {
		fields["is_collapsed"] = *in.IsCollapsed
	}

	if err := s.store.UpdateDiagramObject(ctx, diagramID, objectID, fields); err != nil {
		return nil, notFoundOr(err, "Diagram object %d not found on diagram %d", objectID, diagramID)
	}
	obj, err := s.store.GetDiagramObject(ctx, diagramID, objectID)
	if err != nil {
		return nil, notFoundOr(err, "Diagram object %d not found on diagram %d", objectID, diagramID)
	}
	return obj, nil
}

// RemoveObject takes a placement off the diagram. The repository object
// stays.
func (s *DiagramService) RemoveObject(ctx context.Context, diagramID, objectID uint) (*DeleteResult, error) {
	if err := s.store.DeleteDiagramObject(ctx, diagramID, objectID); err != nil {
		return nil, notFoundOr(err, "Diagram object %d not found on diagram %d", objectID, diagramID)
	}
	return &DeleteResult{Message: "Object removed from diagram"}, nil
}

// AddRelationship shows an existing relationship on the diagram.
func (s *DiagramService) AddRelationship(ctx context.Context, diagramID uint, in DiagramRelationshipCreate) (*models.DiagramRelationship, error) {
	if _, err := s.diagram(ctx, diagramID); err != nil {
		return nil, err
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}

	ok, err := s.store.RelationshipExists(ctx, in.RelationshipID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, Validation("Relationship with ID %d not found", in.RelationshipID)
	}
	shown, err := s.store.DiagramShowsRelationship(ctx, diagramID, in.RelationshipID)
	if err != nil {
		return nil, err
	}
	if shown {
		return nil, Validation("Relationship %d is already on this diagram", in.RelationshipID)
	}

	dr := &models.DiagramRelationship{
		DiagramID:      diagramID,
		RelationshipID: in.RelationshipID,
		IsVisible:      true,
		PathPoints:     in.PathPoints,
		SourceAnchor:   models.Anchor(in.SourceAnchor),
		TargetAnchor:   models.Anchor(in.TargetAnchor),
		VisualStyle:    in.VisualStyle,
	}
	if in.IsVisible != nil {
		dr.IsVisible = *in.IsVisible
	}
	if err := s.store.CreateDiagramRelationship(ctx, dr); err != nil {
		return nil, writeErr(err, fmt.Sprintf("Relationship %d is already on this diagram", in.RelationshipID))
	}
	return dr, nil
}

// UpdateRelationship changes a relationship line scoped to diagramID.
func (s *DiagramService) UpdateRelationship(ctx context.Context, diagramID, id uint, in DiagramRelationshipUpdate) (*models.DiagramRelationship, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.IsVisible != nil {
		fields["is_visible"] = *in.IsVisible
	}
	if in.PathPoints != nil {
		fields["path_points"] = in.PathPoints
	}
	if in.SourceAnchor != nil {
		fields["source_anchor"] = *in.SourceAnchor
	}
	if in.TargetAnchor != nil {
		fields["target_anchor"] = *in.TargetAnchor
	}
	if in.VisualStyle != nil {
		fields["visual_style"] = in.VisualStyle
	}

	if err := s.store.UpdateDiagramRelationship(ctx, diagramID, id, fields); err != nil {
		return nil, notFoundOr(err, "Diagram relationship %d not found on diagram %d", id, diagramID)
	}
	dr, err := s.store.GetDiagramRelationship(ctx, diagramID, id)
	if err != nil {
		return nil, notFoundOr(err, "Diagram relationship %d not found on diagram %d", id, diagramID)
	}
	return dr, nil
}

// RemoveRelationship hides a relationship from the diagram. The relationship
// itself stays.
func (s *DiagramService) RemoveRelationship(ctx context.Context, diagramID, id uint) (*DeleteResult, error) {
	if err := s.store.DeleteDiagramRelationship(ctx, diagramID, id); err != nil {
		return nil, notFoundOr(err, "Diagram relationship %d not found on diagram %d", id, diagramID)
	}
	return &DeleteResult{Message: "Relationship removed from diagram"}, nil
}

// Containing lists the diagrams on which the object is placed.
func (s *DiagramService) Containing(ctx context.Context, objectType string, objectID uint) ([]models.Diagram, error) {
	t, err := models.ParseObjectType(strings.ToUpper(strings.TrimSpace(objectType)))
	if err != nil {
		return nil, Validation("Invalid object type '%s'. Must be one of: SUPERDOMAIN, DOMAIN, ENTITY", objectType)
	}
	ref, err := models.NewObjectRef(t, objectID)
	if err != nil {
		return nil, err
	}
	return s.store.DiagramsContaining(ctx, ref)
}

// objectLabel names the variant in messages, e.g. "Entity".
func objectLabel(ref models.ObjectRef) string {
	switch ref.(type) {
	case models.SuperdomainRef:
		return "Superdomain"
	case models.DomainRef:
		return "Domain"
	case models.EntityRef:
		return "Entity"
	}
	return "Object"
}

// normalizeTags trims tags and drops empty and repeated ones, keeping order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
