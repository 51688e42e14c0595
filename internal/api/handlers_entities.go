package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/schalkje/DiagramDesigner/internal/service"
)

// listEntities handles GET /api/v1/entities
// @Summary List entities
// @Tags Entities
// @Produce json
// @Security BearerAuth
// @Param domainId query int false "Only entities of this domain"
// @Param search query string false "Case-insensitive name filter"
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size (default 100, max 1000)"
// @Success 200 {object} service.Page[models.Entity]
// @Router /entities [get]
func (s *Server) listEntities(c echo.Context) error {
	page, err := parsePagination(c)
	if err != nil {
		return err
	}
	parent, err := queryID(c, "domainId")
	if err != nil {
		return err
	}
	res, err := s.services.Entities.List(c.Request().Context(), service.EntityFilter{
		DomainID: parent,
		Search:   c.QueryParam("search"),
	}, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// getEntity handles GET /api/v1/entities/:id
// @Summary Get an entity with its attributes
// @Tags Entities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entity ID"
// @Success 200 {object} models.Entity
// @Failure 404 {object} APIError
// @Router /entities/{id} [get]
func (s *Server) getEntity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ent, err := s.services.Entities.Get(c.Request().Context(), id, true)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ent)
}

// createEntity handles POST /api/v1/entities
// @Summary Create an entity
// @Tags Entities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entity body service.EntityCreate true "Entity"
// @Success 201 {object} models.Entity
// @Failure 400 {object} APIError "Invalid input, missing domain or duplicate name"
// @Router /entities [post]
func (s *Server) createEntity(c echo.Context) error {
	var req service.EntityCreate
	if err := bind(c, &req); err != nil {
		return err
	}
	ent, err := s.services.Entities.Create(c.Request().Context(), req, currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ent)
}

// updateEntity handles PUT /api/v1/entities/:id
// @Summary Update an entity
// @Tags Entities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entity ID"
// @Param entity body service.EntityUpdate true "Fields to change"
// @Success 200 {object} models.Entity
// @Failure 400 {object} APIError
// @Failure 404 {object} APIError
// @Router /entities/{id} [put]
func (s *Server) updateEntity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req service.EntityUpdate
	if err := bind(c, &req); err != nil {
		return err
	}
	ent, err := s.services.Entities.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ent)
}

// deleteEntity handles DELETE /api/v1/entities/:id
// @Summary Delete an entity with its attributes and relationships
// @Tags Entities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entity ID"
// @Success 200 {object} service.DeleteResult
// @Failure 404 {object} APIError
// @Router /entities/{id} [delete]
func (s *Server) deleteEntity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := s.services.Entities.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return deleteResponse(c, res)
}

// listEntityAttributes handles GET /api/v1/entities/:id/attributes
// @Summary List the attributes of an entity
// @Tags Entities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entity ID"
// @Success 200 {object} service.Page[models.Attribute]
// @Failure 404 {object} APIError
// @Router /entities/{id}/attributes [get]
func (s *Server) listEntityAttributes(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	page, err := parsePagination(c)
	if err != nil {
		return err
	}
	res, err := s.services.Attributes.ListForEntity(c.Request().Context(), id, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// createEntityAttribute handles POST /api/v1/entities/:id/attributes
// @Summary Add an attribute to an entity
// @Description The entity comes from the path; entityId in the body is ignored
// @Tags Entities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entity ID"
// @Param attribute body service.AttributeCreate true "Attribute"
// @Success 201 {object} models.Attribute
// @Failure 400 {object} APIError
// @Failure 404 {object} APIError "Entity not found"
// @Router /entities/{id}/attributes [post]
func (s *Server) createEntityAttribute(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req service.AttributeCreate
	if err := bind(c, &req); err != nil {
		return err
	}
	attr, err := s.services.Attributes.CreateForEntity(c.Request().Context(), id, req, currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, attr)
}

// listEntityRelationships handles GET /api/v1/entities/:id/relationships
// @Summary List relationships starting or ending at an entity
// @Tags Entities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entity ID"
// @Success 200 {object} service.Page[models.Relationship]
// @Failure 404 {object} APIError
// @Router /entities/{id}/relationships [get]
func (s *Server) listEntityRelationships(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	page, err := parsePagination(c)
	if err != nil {
		return err
	}
	res, err := s.services.Entities.Relationships(c.Request().Context(), id, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
