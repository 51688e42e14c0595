package models

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// ObjectType discriminates which repository table a diagram object points at.
type ObjectType string

const (
	ObjectTypeSuperdomain ObjectType = "SUPERDOMAIN"
	ObjectTypeDomain      ObjectType = "DOMAIN"
	ObjectTypeEntity      ObjectType = "ENTITY"
)

var objectTypes = []ObjectType{ObjectTypeSuperdomain, ObjectTypeDomain, ObjectTypeEntity}

// ObjectTypes returns all placeable object types.
func ObjectTypes() []ObjectType {
	out := make([]ObjectType, len(objectTypes))
	copy(out, objectTypes)
	return out
}

// Valid reports whether t is a known object type.
func (t ObjectType) Valid() bool {
	for _, v := range objectTypes {
		if v == t {
			return true
		}
	}
	return false
}

// GormDBDataType maps the column onto object_type_enum on postgres.
func (ObjectType) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return enumColumnType(db, PGTypeObjectType)
}

// ParseObjectType matches s exactly against the known object types.
func ParseObjectType(s string) (ObjectType, error) {
	t := ObjectType(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid object type %q, must be one of: %s", s, joinValues(objectTypes))
	}
	return t, nil
}

// ObjectRef is a reference to a superdomain, domain or entity. The set of
// implementations is closed: SuperdomainRef, DomainRef and EntityRef.
type ObjectRef interface {
	Type() ObjectType
	ObjectID() uint
	String() string
	isObjectRef()
}

type (
	SuperdomainRef uint
	DomainRef      uint
	EntityRef      uint
)

func (SuperdomainRef) Type() ObjectType { return ObjectTypeSuperdomain }
func (r SuperdomainRef) ObjectID() uint { return uint(r) }
func (r SuperdomainRef) String() string { return refString(r) }
func (SuperdomainRef) isObjectRef() {}
func (DomainRef) Type() ObjectType { return ObjectTypeDomain }
func (r DomainRef) ObjectID() uint { return uint(r) }
func (r DomainRef) String() string { return refString(r) }
func (DomainRef) isObjectRef() {}
func (EntityRef) Type() ObjectType { return ObjectTypeEntity }
func (r EntityRef) ObjectID() uint { return uint(r) }
func (r EntityRef) String() string { return refString(r) }
func (EntityRef) isObjectRef() {}

func refString(r ObjectRef) string {
	return fmt.Sprintf("%s:%d", r.Type(), r.ObjectID())
}

// NewObjectRef builds the reference variant for t.
func NewObjectRef(t ObjectType, id uint) (ObjectRef, error) {
	switch t {
	case ObjectTypeSuperdomain:
		return SuperdomainRef(id), nil
	case ObjectTypeDomain:
		return DomainRef(id), nil
	case ObjectTypeEntity:
		return EntityRef(id), nil
	}
	return nil, fmt.Errorf("invalid object type %q, must be one of: %s", t, joinValues(objectTypes))
}
