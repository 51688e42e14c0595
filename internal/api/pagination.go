package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/schalkje/DiagramDesigner/internal/service"
)

// parsePagination reads the list window from the query string. Clients may
// use page/pageSize or skip/limit; offset is accepted as an alias of skip.
// Sizes are clamped by the service to the default of 100 and maximum of 1000.
func parsePagination(c echo.Context) (service.PageRequest, error) {
	page, err := queryInt(c, "page")
	if err != nil {
		return service.PageRequest{}, err
	}
	pageSize, err := queryInt(c, "pageSize")
	if err != nil {
		return service.PageRequest{}, err
	}
	if page > 0 || pageSize > 0 {
		return service.PageOf(page, pageSize), nil
	}

	skip, err := queryInt(c, "skip")
	if err != nil {
		return service.PageRequest{}, err
	}
	if skip == 0 {
		if skip, err = queryInt(c, "offset"); err != nil {
			return service.PageRequest{}, err
		}
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return service.PageRequest{}, err
	}

	return service.PageRequest{Offset: skip, Limit: limit}, nil
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, BadRequestError("Invalid query parameter '"+name+"'", "must be a non-negative integer")
	}
	return n, nil
}

// queryID parses an optional id filter such as ?domainId=3.
func queryID(c echo.Context, name string) (*uint, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return nil, BadRequestError("Invalid query parameter '"+name+"'", "must be a positive integer")
	}
	v := uint(id)
	return &v, nil
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || id == 0 {
		return 0, BadRequestError("Invalid ID format", "'"+name+"' must be a positive integer")
	}
	return uint(id), nil
}
