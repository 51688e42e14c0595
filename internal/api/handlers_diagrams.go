package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/schalkje/DiagramDesigner/internal/service"
	"github.com/schalkje/DiagramDesigner/models"
)

// listDiagrams handles GET /api/v1/diagrams
// @Summary List diagrams
// @Description Most recently updated first
// @Tags Diagrams
// @Produce json
// @Security BearerAuth
// @Param tag query string false "Only diagrams carrying this tag"
// @Param createdBy query int false "Only diagrams created by this user"
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size (default 100, max 1000)"
// @Success 200 {object} service.Page[models.Diagram]
// @Router /diagrams [get]
func (s *Server) listDiagrams(c echo.Context) error {
	page, err := parsePagination(c)
	if err != nil {
		return err
	}
	createdBy, err := queryID(c, "createdBy")
	if err != nil {
		return err
	}
	res, err := s.services.Diagrams.List(c.Request().Context(), service.DiagramFilter{
		Tag:       c.QueryParam("tag"),
		CreatedBy: createdBy,
	}, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// getDiagram handles GET /api/v1/diagrams/:id
// @Summary Get a diagram with its objects and relationship lines
// @Tags Diagrams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Diagram ID"
// @Success 200 {object} service.DiagramDetails
// @Failure 404 {object} APIError
// @Router /diagrams/{id} [get]
func (s *Server) getDiagram(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	d, err := s.services.Diagrams.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// createDiagram handles POST /api/v1/diagrams
// @Summary Create a diagram
// @Tags Diagrams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param diagram body service.DiagramCreate true "Diagram"
// @Success 201 {object} models.Diagram
// @Failure 400 {object} APIError
// @Router /diagrams [post]
func (s *Server) createDiagram(c echo.Context) error {
	var req service.DiagramCreate
	if err := bind(c, &req); err != nil {
		return err
	}
	d, err := s.services.Diagrams.Create(c.Request().Context(), req, currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

// updateDiagram handles PUT /api/v1/diagrams/:id
// @Summary Update a diagram
// @Tags Diagrams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Diagram ID"
// @Param diagram body service.DiagramUpdate true "Fields to change"
// @Success 200 {object} models.Diagram
// @Failure 400 {object} APIError
// @Failure 404 {object} APIError
// @Router /diagrams/{id} [put]
func (s *Server) updateDiagram(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req service.DiagramUpdate
	if err := bind(c, &req); err != nil {
		return err
	}
	d, err := s.services.Diagrams.Update(c.Request().Context(), id, req, currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// deleteDiagram handles DELETE /api/v1/diagrams/:id
// @Summary Delete a diagram
// @Description Placements go with the diagram; the placed objects stay
// @Tags Diagrams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Diagram ID"
// @Success 200 {object} service.DeleteResult
// @Failure 404 {object} APIError
// @Router /diagrams/{id} [delete]
func (s *Server) deleteDiagram(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := s.services.Diagrams.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return deleteResponse(c, res)
}

// addDiagramObject handles POST /api/v1/diagrams/:id/objects
// @Summary Place an object on a diagram
// @Tags Diagrams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Diagram ID"
// @Param object body service.DiagramObjectCreate true "Placement"
// @Success 201 {object} models.DiagramObject
// @Failure 400 {object} APIError "Invalid type, unknown object or already placed"
// @Failure 404 {object} APIError "Diagram not found"
// @Router /diagrams/{id}/objects [post]
func (s *Server) addDiagramObject(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req service.DiagramObjectCreate
	if err := bind(c, &req); err != nil {
		return err
	}
	obj, err := s.services.Diagrams.AddObject(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, obj)
}

// updateDiagramObject handles PUT /api/v1/diagrams/:id/objects/:objectId
// @Summary Move, resize or restyle a placement
// @Tags Diagrams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Diagram ID"
// @Param objectId path int true "Diagram object ID"
// @Param object body service.DiagramObjectUpdate true "Fields to change"
// @Success 200 {object} models.DiagramObject
// @Failure 404 {object} APIError "Placement not found on this diagram"
// @Router /diagrams/{id}/objects/{objectId} [put]
func (s *Server) updateDiagramObject(c echo.Context) error {
	diagramID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	objectID, err := pathID(c, "objectId")
	if err != nil {
		return err
	}
	var req service.DiagramObjectUpdate
	if err := bind(c, &req); err != nil {
		return err
	}
	obj, err := s.services.Diagrams.UpdateObject(c.Request().Context(), diagramID, objectID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, obj)
}

// removeDiagramObject handles DELETE /api/v1/diagrams/:id/objects/:objectId
// @Summary Remove a placement from a diagram
// @Tags Diagrams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Diagram ID"
// @Param objectId path int true "Diagram object ID"
// @Success 200 {object} service.DeleteResult
// @Failure 404 {object} APIError
// @Router /diagrams/{id}/objects/{objectId} [delete]
func (s *Server) removeDiagramObject(c echo.Context) error {
	diagramID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	objectID, err := pathID(c, "objectId")
	if err != nil {
		return err
	}
	res, err := s.services.Diagrams.RemoveObject(c.Request().Context(), diagramID, objectID)
	if err != nil {
		return err
	}
	return deleteResponse(c, res)
}

// addDiagramRelationship handles POST /api/v1/diagrams/:id/relationships
// @Summary Show a relationship on a diagram
// @Tags Diagrams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Diagram ID"
// @Param relationship body service.DiagramRelationshipCreate true "Line"
// @Success 201 {object} models.DiagramRelationship
// @Failure 400 {object} APIError
// @Failure 404 {object} APIError
// @Router /diagrams/{id}/relationships [post]
func (s *Server) addDiagramRelationship(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req service.DiagramRelationshipCreate
	if err := bind(c, &req); err != nil {
		return err
	}
	dr, err := s.services.Diagrams.AddRelationship(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dr)
}

// updateDiagramRelationship handles PUT /api/v1/diagrams/:id/relationships/:relationshipId
// @Summary Change the routing of a relationship line
// @Tags Diagrams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Diagram ID"
// @Param relationshipId path int true "Diagram relationship ID"
// @Param relationship body service.DiagramRelationshipUpdate true "Fields to change"
// @Success 200 {object} models.DiagramRelationship
// @Failure 404 {object} APIError
// @Router /diagrams/{id}/relationships/{relationshipId} [put]
func (s *Server) updateDiagramRelationship(c echo.Context) error {
	diagramID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	lineID, err := pathID(c, "relationshipId")
	if err != nil {
		return err
	}
	var req service.DiagramRelationshipUpdate
	if err := bind(c, &req); err != nil {
		return err
	}
	dr, err := s.services.Diagrams.UpdateRelationship(c.Request().Context(), diagramID, lineID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dr)
}

// removeDiagramRelationship handles DELETE /api/v1/diagrams/:id/relationships/:relationshipId
// @Summary Hide a relationship from a diagram
// @Tags Diagrams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Diagram ID"
// @Param relationshipId path int true "Diagram relationship ID"
// @Success 200 {object} service.DeleteResult
// @Failure 404 {object} APIError
// @Router /diagrams/{id}/relationships/{relationshipId} [delete]
func (s *Server) removeDiagramRelationship(c echo.Context) error {
	diagramID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	lineID, err := pathID(c, "relationshipId")
	if err != nil {
		return err
	}
	res, err := s.services.Diagrams.RemoveRelationship(c.Request().Context(), diagramID, lineID)
	if err != nil {
		return err
	}
	return deleteResponse(c, res)
}

// diagramsContaining handles GET /api/v1/diagrams/containing/:objectType/:objectId
// @Summary Diagrams that show an object
// @Tags Diagrams
// @Produce json
// @Security BearerAuth
// @Param objectType path string true "SUPERDOMAIN, DOMAIN or ENTITY (case-insensitive)"
// @Param objectId path int true "Object ID"
// @Success 200 {array} models.Diagram
// @Failure 400 {object} APIError
// @Router /diagrams/containing/{objectType}/{objectId} [get]
func (s *Server) diagramsContaining(c echo.Context) error {
	objectID, err := pathID(c, "objectId")
	if err != nil {
		return err
	}
	diagrams, err := s.services.Diagrams.Containing(c.Request().Context(), c.Param("objectType"), objectID)
	if err != nil {
		return err
	}
	if diagrams == nil {
		diagrams = []models.Diagram{}
	}
	return c.JSON(http.StatusOK, diagrams)
}
