package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/schalkje/DiagramDesigner/internal/service"
)

// listDomains handles GET /api/v1/domains
// @Summary List domains
// @Tags Domains
// @Produce json
// @Security BearerAuth
// @Param superdomainId query int false "Only domains of this superdomain"
// @Param search query string false "Case-insensitive name filter"
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size (default 100, max 1000)"
// @Success 200 {object} service.Page[models.Domain]
// @Router /domains [get]
func (s *Server) listDomains(c echo.Context) error {
	page, err := parsePagination(c)
	if err != nil {
		return err
	}
	parent, err := queryID(c, "superdomainId")
	if err != nil {
		return err
	}
	res, err := s.services.Domains.List(c.Request().Context(), service.DomainFilter{
		SuperdomainID: parent,
		Search:        c.QueryParam("search"),
	}, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// getDomain handles GET /api/v1/domains/:id
// @Summary Get a domain
// @Tags Domains
// @Produce json
// @Security BearerAuth
// @Param id path int true "Domain ID"
// @Success 200 {object} models.Domain
// @Failure 404 {object} APIError
// @Router /domains/{id} [get]
func (s *Server) getDomain(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	d, err := s.services.Domains.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// createDomain handles POST /api/v1/domains
// @Summary Create a domain
// @Tags Domains
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param domain body service.DomainCreate true "Domain"
// @Success 201 {object} models.Domain
// @Failure 400 {object} APIError "Invalid input, missing superdomain or duplicate name"
// @Router /domains [post]
func (s *Server) createDomain(c echo.Context) error {
	var req service.DomainCreate
	if err := bind(c, &req); err != nil {
		return err
	}
	d, err := s.services.Domains.Create(c.Request().Context(), req, currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

// updateDomain handles PUT /api/v1/domains/:id
// @Summary Update a domain
// @Tags Domains
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Domain ID"
// @Param domain body service.DomainUpdate true "Fields to change"
// @Success 200 {object} models.Domain
// @Failure 400 {object} APIError
// @Failure 404 {object} APIError
// @Router /domains/{id} [put]
func (s *Server) updateDomain(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req service.DomainUpdate
	if err := bind(c, &req); err != nil {
		return err
	}
	d, err := s.services.Domains.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// deleteDomain handles DELETE /api/v1/domains/:id
// @Summary Delete a domain with its entities
// @Tags Domains
// @Produce json
// @Security BearerAuth
// @Param id path int true "Domain ID"
// @Success 200 {object} service.DeleteResult
// @Failure 404 {object} APIError
// @Router /domains/{id} [delete]
func (s *Server) deleteDomain(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := s.services.Domains.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return deleteResponse(c, res)
}
