package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Cardinality is the multiplicity of one side of a relationship.
type Cardinality string

const (
	CardinalityZeroOne  Cardinality = "ZERO_ONE"
	CardinalityOne      Cardinality = "ONE"
	CardinalityZeroMany Cardinality = "ZERO_MANY"
	CardinalityOneMany  Cardinality = "ONE_MANY"
)

var cardinalities = []Cardinality{
	CardinalityZeroOne, CardinalityOne, CardinalityZeroMany, CardinalityOneMany,
}

// Cardinalities returns all accepted cardinality values.
func Cardinalities() []Cardinality {
	out := make([]Cardinality, len(cardinalities))
	copy(out, cardinalities)
	return out
}

// Valid reports whether c is a known cardinality.
func (c Cardinality) Valid() bool {
	for _, v := range cardinalities {
		if v == c {
			return true
		}
	}
	return false
}

// Symbol returns "1" for the single valued cardinalities and "N" for the many valued ones.
func (c Cardinality) Symbol() string {
	switch c {
	case CardinalityZeroOne, CardinalityOne:
		return "1"
	case CardinalityZeroMany, CardinalityOneMany:
		return "N"
	}
	return "?"
}

// GormDBDataType maps the column onto cardinality_enum on postgres.
func (Cardinality) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return enumColumnType(db, PGTypeCardinality)
}

// ParseCardinality matches s exactly against the accepted cardinalities.
func ParseCardinality(s string) (Cardinality, error) {
	c := Cardinality(s)
	if !c.Valid() {
		return "", fmt.Errorf("invalid cardinality %q, must be one of: %s", s, joinValues(cardinalities))
	}
	return c, nil
}

// Relationship is a directed edge between two entities. Source and target
// may be the same entity.
type Relationship struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	SourceEntityID    uint        `gorm:"not null;index;index:ix_relationships_pair,priority:1" json:"sourceEntityId"`
	SourceEntity      *Entity     `gorm:"foreignKey:SourceEntityID;constraint:OnDelete:CASCADE" json:"-"`
	TargetEntityID    uint        `gorm:"not null;index;index:ix_relationships_pair,priority:2" json:"targetEntityId"`
	TargetEntity      *Entity     `gorm:"foreignKey:TargetEntityID;constraint:OnDelete:CASCADE" json:"-"`
	SourceAttributeID *uint       `json:"sourceAttributeId,omitempty"`
	SourceAttribute   *Attribute  `gorm:"foreignKey:SourceAttributeID;constraint:OnDelete:SET NULL" json:"-"`
	TargetAttributeID *uint       `json:"targetAttributeId,omitempty"`
	TargetAttribute   *Attribute  `gorm:"foreignKey:TargetAttributeID;constraint:OnDelete:SET NULL" json:"-"`
	Name              string      `gorm:"size:100" json:"name"`
	SourceRole        string      `gorm:"size:100" json:"sourceRole"`
	TargetRole        string      `gorm:"size:100" json:"targetRole"`
	SourceCardinality Cardinality `gorm:"not null" json:"sourceCardinality"`
	TargetCardinality Cardinality `gorm:"not null" json:"targetCardinality"`
	Description       string      `gorm:"type:text" json:"description"`
	CreatedBy         *uint       `json:"createdBy,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// Notation renders the cardinality pair, e.g. "1:N".
func (r *Relationship) Notation() string {
	return r.SourceCardinality.Symbol() + ":" + r.TargetCardinality.Symbol()
}

// SelfReferential reports whether the edge starts and ends at the same entity.
func (r *Relationship) SelfReferential() bool {
	return r.SourceEntityID == r.TargetEntityID
}

// HasRoles reports whether both role labels are set.
func (r *Relationship) HasRoles() bool {
	return r.SourceRole != "" && r.TargetRole != ""
}

type relationshipFields Relationship

// MarshalJSON adds the derived notation and selfReferential fields.
func (r Relationship) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		relationshipFields
		Notation        string `json:"notation"`
		SelfReferential bool   `json:"selfReferential"`
	}{
		relationshipFields: relationshipFields(r),
		Notation:           r.Notation(),
		SelfReferential:    r.SelfReferential(),
	})
}
