package models

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Postgres enum type names created by storage migration.
const (
	PGTypeAuthProvider = "auth_provider_enum"
	PGTypeCardinality  = "cardinality_enum"
	PGTypeObjectType   = "object_type_enum"
)

// PGEnum describes a postgres enum type backing a string column.
type PGEnum struct {
	Name   string
	Values []string
}

// CreateStatement returns an idempotent CREATE TYPE statement.
func (e PGEnum) CreateStatement() string {
	quoted := make([]string, len(e.Values))
	for i, v := range e.Values {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return fmt.Sprintf(
		"DO $$ BEGIN CREATE TYPE %s AS ENUM (%s); EXCEPTION WHEN duplicate_object THEN NULL; END $$;",
		e.Name, strings.Join(quoted, ", "),
	)
}

// PGEnums lists every enum type the schema depends on.
func PGEnums() []PGEnum {
	return []PGEnum{
		{Name: PGTypeAuthProvider, Values: stringsOf(AuthProviders())},
		{Name: PGTypeCardinality, Values: stringsOf(Cardinalities())},
		{Name: PGTypeObjectType, Values: stringsOf(ObjectTypes())},
	}
}

// enumColumnType picks the native enum on postgres and a bounded varchar elsewhere.
func enumColumnType(db *gorm.DB, pgType string) string {
	if db != nil && db.Dialector != nil && db.Dialector.Name() == "postgres" {
		return pgType
	}
	return "varchar(20)"
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// joinValues renders enum values for "must be one of" messages.
func joinValues[T ~string](values []T) string {
	return strings.Join(stringsOf(values), ", ")
}
