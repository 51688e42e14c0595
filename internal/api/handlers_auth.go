package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/schalkje/DiagramDesigner/internal/auth"
	"github.com/schalkje/DiagramDesigner/internal/service"
)

// register handles POST /api/v1/auth/register
// @Summary Register a user
// @Description Create a local account and return an access token for it
// @Tags Authentication
// @Accept json
// @Produce json
// @Param account body service.RegisterInput true "Account details"
// @Success 201 {object} service.AuthResult
// @Failure 400 {object} APIError "Invalid input, email or username taken"
// @Router /auth/register [post]
func (s *Server) register(c echo.Context) error {
	var req service.RegisterInput
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := s.services.Auth.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

// login handles POST /api/v1/auth/login
// @Summary User login
// @Description Authenticate with email and password, returns a JWT valid for 24 hours
// @Tags Authentication
// @Accept json
// @Produce json
// @Param credentials body service.LoginInput true "Login credentials"
// @Success 200 {object} service.AuthResult
// @Failure 400 {object} APIError
// @Failure 401 {object} APIError "Invalid email or password, or account deactivated"
// @Router /auth/login [post]
func (s *Server) login(c echo.Context) error {
	var req service.LoginInput
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := s.services.Auth.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	logger(c).Info().Uint("user_id", res.User.ID).Msg("user logged in")
	return c.JSON(http.StatusOK, res)
}

// me handles GET /api/v1/auth/me
// @Summary Current user
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} APIError
// @Router /auth/me [get]
func (s *Server) me(c echo.Context) error {
	user, ok := auth.GetUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return c.JSON(http.StatusOK, user)
}
