// Package models defines the persisted metadata repository and diagram types.
//
// The repository is a four-level containment hierarchy:
//
//	Superdomain → Domain → Entity → Attribute
//
// with directed Relationships between Entities. Every child row is owned by
// its parent and removed with it through ON DELETE CASCADE foreign keys.
// Diagrams form a parallel layer that references repository objects by
// (object type, object id) without owning them.
//
// All structs are GORM models and serialize to the camelCase JSON used by the
// REST API.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// MaxNameLength bounds every user supplied name after trimming.
const MaxNameLength = 100

// Superdomain is the top level container. Names are globally unique.
type Superdomain struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex:uq_superdomains_name" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedBy   *uint     `gorm:"index" json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `gorm:"index:ix_superdomains_updated_at,sort:desc" json:"updatedAt"`
}

// Domain groups entities inside a superdomain. Unique by (superdomain, name).
type Domain struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	SuperdomainID uint         `gorm:"not null;index;uniqueIndex:uq_domains_superdomain_name,priority:1" json:"superdomainId"`
	Superdomain   *Superdomain `gorm:"foreignKey:SuperdomainID;constraint:OnDelete:CASCADE" json:"-"`
	Name          string       `gorm:"size:100;not null;uniqueIndex:uq_domains_superdomain_name,priority:2" json:"name"`
	Description   string       `gorm:"type:text" json:"description"`
	CreatedBy     *uint        `json:"createdBy,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `gorm:"index:ix_domains_updated_at,sort:desc" json:"updatedAt"`
}

// Entity is a business object, roughly a table. Unique by (domain, name).
type Entity struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	DomainID    uint        `gorm:"not null;index;uniqueIndex:uq_entities_domain_name,priority:1" json:"domainId"`
	Domain      *Domain     `gorm:"foreignKey:DomainID;constraint:OnDelete:CASCADE" json:"-"`
	Name        string      `gorm:"size:100;not null;uniqueIndex:uq_entities_domain_name,priority:2" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Attributes  []Attribute `gorm:"foreignKey:EntityID;constraint:OnDelete:CASCADE" json:"attributes,omitempty"`
	CreatedBy   *uint       `json:"createdBy,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `gorm:"index:ix_entities_updated_at,sort:desc" json:"updatedAt"`
}

// Attribute is a field of an entity. Unique by (entity, name).
//
// Constraints and DataQualityRules are opaque JSON documents; the backend
// stores them verbatim.
type Attribute struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	EntityID         uint           `gorm:"not null;index;uniqueIndex:uq_attributes_entity_name,priority:1" json:"entityId"`
	Name             string         `gorm:"size:100;not null;uniqueIndex:uq_attributes_entity_name,priority:2" json:"name"`
	Description      string         `gorm:"type:text" json:"description"`
	DataType         DataType       `gorm:"size:50;not null" json:"dataType"`
	IsNullable       bool           `gorm:"not null" json:"isNullable"`
	DefaultValue     string         `gorm:"size:255" json:"defaultValue"`
	Constraints      datatypes.JSON `json:"constraints"`
	DataQualityRules datatypes.JSON `json:"dataQualityRules"`
	CreatedBy        *uint          `json:"createdBy,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}
