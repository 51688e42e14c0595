package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/schalkje/DiagramDesigner/internal/service"
)

// listSuperdomains handles GET /api/v1/superdomains
// @Summary List superdomains
// @Tags Superdomains
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive name filter"
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size (default 100, max 1000)"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} service.Page[models.Superdomain]
// @Router /superdomains [get]
func (s *Server) listSuperdomains(c echo.Context) error {
	page, err := parsePagination(c)
	if err != nil {
		return err
	}
	res, err := s.services.Superdomains.List(c.Request().Context(), c.QueryParam("search"), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// getSuperdomain handles GET /api/v1/superdomains/:id
// @Summary Get a superdomain
// @Tags Superdomains
// @Produce json
// @Security BearerAuth
// @Param id path int true "Superdomain ID"
// @Success 200 {object} models.Superdomain
// @Failure 404 {object} APIError
// @Router /superdomains/{id} [get]
func (s *Server) getSuperdomain(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	sd, err := s.services.Superdomains.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sd)
}

// createSuperdomain handles POST /api/v1/superdomains
// @Summary Create a superdomain
// @Tags Superdomains
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param superdomain body service.SuperdomainCreate true "Superdomain"
// @Success 201 {object} models.Superdomain
// @Failure 400 {object} APIError
// @Router /superdomains [post]
func (s *Server) createSuperdomain(c echo.Context) error {
	var req service.SuperdomainCreate
	if err := bind(c, &req); err != nil {
		return err
	}
	sd, err := s.services.Superdomains.Create(c.Request().Context(), req, currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sd)
}

// updateSuperdomain handles PUT /api/v1/superdomains/:id
// @Summary Update a superdomain
// @Tags Superdomains
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Superdomain ID"
// @Param superdomain body service.SuperdomainUpdate true "Fields to change"
// @Success 200 {object} models.Superdomain
// @Failure 400 {object} APIError
// @Failure 404 {object} APIError
// @Router /superdomains/{id} [put]
func (s *Server) updateSuperdomain(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req service.SuperdomainUpdate
	if err := bind(c, &req); err != nil {
		return err
	}
	sd, err := s.services.Superdomains.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sd)
}

// superdomainImpact handles GET /api/v1/superdomains/:id/impact
// @Summary Preview a superdomain delete
// @Description Lists the domains, entities and diagrams a delete would affect without changing anything
// @Tags Superdomains
// @Produce json
// @Security BearerAuth
// @Param id path int true "Superdomain ID"
// @Success 200 {object} service.DeleteImpact
// @Failure 404 {object} APIError
// @Router /superdomains/{id}/impact [get]
func (s *Server) superdomainImpact(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	impact, err := s.services.Superdomains.Impact(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, impact)
}

// deleteSuperdomain handles DELETE /api/v1/superdomains/:id
// @Summary Delete a superdomain
// @Description A superdomain with children is only deleted with confirm=true; otherwise 409 with the impact is returned
// @Tags Superdomains
// @Produce json
// @Security BearerAuth
// @Param id path int true "Superdomain ID"
// @Param confirm query bool false "Confirm the cascading delete"
// @Success 200 {object} service.DeleteImpact
// @Failure 404 {object} APIError
// @Failure 409 {object} ConfirmationResponse
// @Router /superdomains/{id} [delete]
func (s *Server) deleteSuperdomain(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	confirm := false
	if raw := c.QueryParam("confirm"); raw != "" {
		if confirm, err = strconv.ParseBool(raw); err != nil {
			return BadRequestError("Invalid query parameter 'confirm'", "must be true or false")
		}
	}

	res, err := s.services.Superdomains.Delete(c.Request().Context(), id, confirm)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// deleteResponse writes the body of a successful delete.
func deleteResponse(c echo.Context, res *service.DeleteResult) error {
	return c.JSON(http.StatusOK, res)
}
