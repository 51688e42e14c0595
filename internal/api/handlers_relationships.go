package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/schalkje/DiagramDesigner/internal/service"
)

// listRelationships handles GET /api/v1/relationships
// @Summary List relationships
// @Tags Relationships
// @Produce json
// @Security BearerAuth
// @Param entityId query int false "Only edges where this entity is source or target"
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size (default 100, max 1000)"
// @Success 200 {object} service.Page[models.Relationship]
// @Router /relationships [get]
func (s *Server) listRelationships(c echo.Context) error {
	page, err := parsePagination(c)
	if err != nil {
		return err
	}
	entityID, err := queryID(c, "entityId")
	if err != nil {
		return err
	}
	res, err := s.services.Relationships.List(c.Request().Context(), entityID, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// getRelationship handles GET /api/v1/relationships/:id
// @Summary Get a relationship
// @Tags Relationships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Relationship ID"
// @Success 200 {object} models.Relationship
// @Failure 404 {object} APIError
// @Router /relationships/{id} [get]
func (s *Server) getRelationship(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	rel, err := s.services.Relationships.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rel)
}

// createRelationship handles POST /api/v1/relationships
// @Summary Create a relationship
// @Description Further edges between the same ordered entity pair need distinct source and target roles
// @Tags Relationships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param relationship body service.RelationshipCreate true "Relationship"
// @Success 201 {object} models.Relationship
// @Failure 400 {object} APIError
// @Router /relationships [post]
func (s *Server) createRelationship(c echo.Context) error {
	var req service.RelationshipCreate
	if err := bind(c, &req); err != nil {
		return err
	}
	rel, err := s.services.Relationships.Create(c.Request().Context(), req, currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rel)
}

// updateRelationship handles PUT /api/v1/relationships/:id
// @Summary Update a relationship
// @Tags Relationships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Relationship ID"
// @Param relationship body service.RelationshipUpdate true "Fields to change"
// @Success 200 {object} models.Relationship
// @Failure 400 {object} APIError
// @Failure 404 {object} APIError
// @Router /relationships/{id} [put]
func (s *Server) updateRelationship(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req service.RelationshipUpdate
	if err := bind(c, &req); err != nil {
		return err
	}
	rel, err := s.services.Relationships.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rel)
}

// deleteRelationship handles DELETE /api/v1/relationships/:id
// @Summary Delete a relationship
// @Tags Relationships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Relationship ID"
// @Success 200 {object} service.DeleteResult
// @Failure 404 {object} APIError
// @Router /relationships/{id} [delete]
func (s *Server) deleteRelationship(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := s.services.Relationships.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return deleteResponse(c, res)
}
