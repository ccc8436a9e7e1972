package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/univas/vaccination-scheduling/internal/api/metrics"
	"github.com/univas/vaccination-scheduling/internal/api/middleware"
	"github.com/univas/vaccination-scheduling/internal/core/domain"
	"github.com/univas/vaccination-scheduling/internal/core/ports"
)

// UserHandler handles HTTP requests for user registration and profiles.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Create registers a new user.
//
// @Summary      Register a user
// @Description  Creates an EMPLOYEE, NURSE or MANAGER. Nurses must send a COREN.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest    true  "User details"
// @Success      201   {object}  domain.UserResponse
// @Failure      400   {object}  invalidRoleResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		metrics.RegistrationFailuresTotal.WithLabelValues("validation").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	role := domain.Role(req.Role)
	if !role.Valid() {
		metrics.RegistrationFailuresTotal.WithLabelValues("invalid_role").Inc()
		return domain.InvalidRoleError(req.Role)
	}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationFailuresTotal.WithLabelValues("validation").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.CreateUser(c.Request().Context(), ports.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		CPF:      req.CPF,
		Phone:    req.Phone,
		Role:     role,
		COREN:    req.COREN,
	})
	if err != nil {
		metrics.RegistrationFailuresTotal.WithLabelValues(failureReason(err)).Inc()
		return err
	}

	metrics.UsersRegisteredTotal.WithLabelValues(string(user.Role)).Inc()
	return c.JSON(http.StatusCreated, user)
}

// Me returns the authenticated user's profile.
//
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Profile
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	profile, err := h.service.GetProfile(c.Request().Context(), identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// ctxIdentity returns the identity attached by middleware.Auth. Its absence
// means the route was registered without the middleware.
func ctxIdentity(c echo.Context) (*domain.TokenPayload, error) {
	identity, ok := middleware.Identity(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication identity")
	}
	return identity, nil
}
