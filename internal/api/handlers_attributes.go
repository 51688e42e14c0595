package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/schalkje/DiagramDesigner/internal/service"
)

// listAttributes handles GET /api/v1/attributes
// @Summary List attributes
// @Tags Attributes
// @Produce json
// @Security BearerAuth
// @Param entityId query int false "Only attributes of this entity"
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size (default 100, max 1000)"
// @Success 200 {object} service.Page[models.Attribute]
// @Router /attributes [get]
func (s *Server) listAttributes(c echo.Context) error {
	page, err := parsePagination(c)
	if err != nil {
		return err
	}
	entityID, err := queryID(c, "entityId")
	if err != nil {
		return err
	}
	res, err := s.services.Attributes.List(c.Request().Context(), entityID, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// getAttribute handles GET /api/v1/attributes/:id
// @Summary Get an attribute
// @Tags Attributes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attribute ID"
// @Success 200 {object} models.Attribute
// @Failure 404 {object} APIError
// @Router /attributes/{id} [get]
func (s *Server) getAttribute(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	attr, err := s.services.Attributes.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, attr)
}

// createAttribute handles POST /api/v1/attributes
// @Summary Create an attribute
// @Tags Attributes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attribute body service.AttributeCreate true "Attribute"
// @Success 201 {object} models.Attribute
// @Failure 400 {object} APIError "Invalid input, unknown data type, missing entity or duplicate name"
// @Router /attributes [post]
func (s *Server) createAttribute(c echo.Context) error {
	var req service.AttributeCreate
	if err := bind(c, &req); err != nil {
		return err
	}
	attr, err := s.services.Attributes.Create(c.Request().Context(), req, currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, attr)
}

// updateAttribute handles PUT /api/v1/attributes/:id
// @Summary Update an attribute
// @Tags Attributes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attribute ID"
// @Param attribute body service.AttributeUpdate true "Fields to change"
// @Success 200 {object} models.Attribute
// @Failure 400 {object} APIError
// @Failure 404 {object} APIError
// @Router /attributes/{id} [put]
func (s *Server) updateAttribute(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req service.AttributeUpdate
	if err := bind(c, &req); err != nil {
		return err
	}
	attr, err := s.services.Attributes.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, attr)
}

// deleteAttribute handles DELETE /api/v1/attributes/:id
// @Summary Delete an attribute
// @Tags Attributes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attribute ID"
// @Success 200 {object} service.DeleteResult
// @Failure 404 {object} APIError
// @Router /attributes/{id} [delete]
func (s *Server) deleteAttribute(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := s.services.Attributes.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return deleteResponse(c, res)
}
