package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Diagram is a named visual perspective over the repository. Its lifecycle is
// independent of the objects it shows.
type Diagram struct {
	ID             uint                        `gorm:"primaryKey" json:"id"`
	Name           string                      `gorm:"size:100;not null" json:"name"`
	Description    string                      `gorm:"type:text" json:"description"`
	Purpose        string                      `gorm:"type:text" json:"purpose"`
	Tags           datatypes.JSONSlice[string] `json:"tags"`
	CanvasSettings datatypes.JSON              `json:"canvasSettings"`
	CreatedBy      *uint                       `gorm:"index" json:"createdBy,omitempty"`
	LastModifiedBy *uint                       `json:"lastModifiedBy,omitempty"`
	CreatedAt      time.Time                   `json:"createdAt"`
	UpdatedAt      time.Time                   `gorm:"index:ix_diagrams_updated_at,sort:desc" json:"updatedAt"`
}

// AfterFind normalizes a NULL tag column to an empty list.
func (d *Diagram) AfterFind(*gorm.DB) error {
	if d.Tags == nil {
		d.Tags = datatypes.JSONSlice[string]{}
	}
	return nil
}

// DiagramObject places one repository object on a diagram.
type DiagramObject struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	DiagramID   uint           `gorm:"not null;index;uniqueIndex:uq_diagram_objects_placement,priority:1" json:"diagramId"`
	Diagram     *Diagram       `gorm:"foreignKey:DiagramID;constraint:OnDelete:CASCADE" json:"-"`
	ObjectType  ObjectType     `gorm:"not null;uniqueIndex:uq_diagram_objects_placement,priority:2;index:ix_diagram_objects_object,priority:1" json:"objectType"`
	ObjectID    uint           `gorm:"not null;uniqueIndex:uq_diagram_objects_placement,priority:3;index:ix_diagram_objects_object,priority:2" json:"objectId"`
	PositionX   float64        `gorm:"not null" json:"positionX"`
	PositionY   float64        `gorm:"not null" json:"positionY"`
	Width       *float64       `json:"width,omitempty"`
	Height      *float64       `json:"height,omitempty"`
	ZIndex      int            `gorm:"not null" json:"zIndex"`
	VisualStyle datatypes.JSON `json:"visualStyle"`
	IsCollapsed bool           `gorm:"not null" json:"isCollapsed"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Ref returns the placed object as a typed reference.
func (o *DiagramObject) Ref() (ObjectRef, error) {
	return NewObjectRef(o.ObjectType, o.ObjectID)
}

// Anchor is the side of a diagram object a relationship line attaches to.
type Anchor string

const (
	AnchorTop    Anchor = "top"
	AnchorBottom Anchor = "bottom"
	AnchorLeft   Anchor = "left"
	AnchorRight  Anchor = "right"
	AnchorAuto   Anchor = "auto"
)

var anchors = []Anchor{AnchorTop, AnchorBottom, AnchorLeft, AnchorRight, AnchorAuto}

// ParseAnchor accepts an empty string as "no anchor".
func ParseAnchor(s string) (Anchor, error) {
	if s == "" {
		return "", nil
	}
	for _, a := range anchors {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("invalid anchor %q, must be one of: %s", s, joinValues(anchors))
}

// DiagramRelationship shows one relationship on a diagram with routing data.
type DiagramRelationship struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	DiagramID      uint           `gorm:"not null;index;uniqueIndex:uq_diagram_relationships_placement,priority:1" json:"diagramId"`
	Diagram        *Diagram       `gorm:"foreignKey:DiagramID;constraint:OnDelete:CASCADE" json:"-"`
	RelationshipID uint           `gorm:"not null;index;uniqueIndex:uq_diagram_relationships_placement,priority:2" json:"relationshipId"`
	Relationship   *Relationship  `gorm:"foreignKey:RelationshipID;constraint:OnDelete:CASCADE" json:"-"`
	IsVisible      bool           `gorm:"not null" json:"isVisible"`
	PathPoints     datatypes.JSON `json:"pathPoints"`
	SourceAnchor   Anchor         `gorm:"size:20" json:"sourceAnchor,omitempty"`
	TargetAnchor   Anchor         `gorm:"size:20" json:"targetAnchor,omitempty"`
	VisualStyle    datatypes.JSON `json:"visualStyle"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
