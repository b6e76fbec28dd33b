package account

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinic/records/internal/platform/apperr"
	"github.com/clinic/records/internal/platform/validation"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the public account endpoints. They sit behind the
// auth skipper, so no identity is required.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/auth/register", h.Register)
	g.POST("/auth/login", h.Login)
	g.POST("/auth/token/refresh", h.Refresh)
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	if _, err := h.svc.Register(c.Request().Context(), in); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "User created successfully."})
}

func (h *Handler) Login(c echo.Context) error {
	var in LoginInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	v := apperr.NewValidationError()
	validation.Required("email", in.Email, v)
	validation.Required("password", in.Password, v)
	if err := v.Err(); err != nil {
		return err
	}

	pair, err := h.svc.Authenticate(c.Request().Context(), in.Email, in.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *Handler) Refresh(c echo.Context) error {
	var in RefreshInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	v := apperr.NewValidationError()
	validation.Required("refresh", in.Refresh, v)
	if err := v.Err(); err != nil {
		return err
	}

	access, err := h.svc.Refresh(c.Request().Context(), in.Refresh)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"access": access})
}
