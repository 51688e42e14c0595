// Package service implements the business rules of DiagramDesigner on top of
// the storage repositories.
//
// There is one service per resource. Each validates its input, checks that
// referenced parents exist and that names are unique within their parent,
// and only then writes. Failures the caller can act on are returned as
// *Error values; everything else is an internal error.
//
// Names are trimmed before they are validated and stored. Updates are
// partial: nil pointer fields in an update input leave the column alone.
package service

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/schalkje/DiagramDesigner/internal/auth"
	"github.com/schalkje/DiagramDesigner/internal/storage"
	"github.com/schalkje/DiagramDesigner/internal/validation"
)

// Services groups the per-resource services that share one store.
type Services struct {
	Auth          *AuthService
	Superdomains  *SuperdomainService
	Domains       *DomainService
	Entities      *EntityService
	Attributes    *AttributeService
	Relationships *RelationshipService
	Diagrams      *DiagramService
}

// New wires every service to st. Tokens are issued through jwt.
func New(st *storage.Storage, jwt *auth.JWTService, log zerolog.Logger) *Services {
	b := &base{
		store:     st,
		validator: validation.New(),
		log:       log.With().Str("component", "service").Logger(),
	}
	return &Services{
		Auth:          &AuthService{base: b, jwt: jwt},
		Superdomains:  &SuperdomainService{base: b},
		Domains:       &DomainService{base: b},
		Entities:      &EntityService{base: b},
		Attributes:    &AttributeService{base: b},
		Relationships: &RelationshipService{base: b},
		Diagrams:      &DiagramService{base: b},
	}
}

type base struct {
	store     *storage.Storage
	validator *validation.Validator
	log       zerolog.Logger
}

// validate runs the struct tags of in. The first failure becomes the message.
func (b *base) validate(in any) error {
	res := b.validator.Struct(in)
	if res.Valid {
		return nil
	}
	return ValidationFields(res.Errors[0].Message, res.Fields())
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// DeleteResult reports a completed delete.
type DeleteResult struct {
	Message string `json:"message"`
	// Cascade is set when child rows went with the deleted row.
	Cascade bool `json:"cascade,omitempty"`
}
