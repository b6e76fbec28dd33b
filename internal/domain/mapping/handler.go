package mapping

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinic/records/internal/platform/auth"
	"github.com/clinic/records/pkg/httpx"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the mapping endpoints. GET and DELETE share the
// /mappings/:id path; for GET the parameter is a patient id, for DELETE a
// mapping id.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/mappings", h.List)
	g.POST("/mappings", h.Create)
	g.GET("/mappings/:id", h.ListForPatient)
	g.DELETE("/mappings/:id", h.Delete)
}

func (h *Handler) List(c echo.Context) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	mappings, err := h.svc.List(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mappings)
}

func (h *Handler) Create(c echo.Context) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	m, err := h.svc.Create(c.Request().Context(), caller, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) ListForPatient(c echo.Context) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	patientID, err := httpx.PathUUID(c, "id")
	if err != nil {
		return err
	}
	mappings, err := h.svc.ListForPatient(c.Request().Context(), caller, patientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mappings)
}

func (h *Handler) Delete(c echo.Context) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := httpx.PathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), caller, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
