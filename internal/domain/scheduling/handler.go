package scheduling

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinic/records/internal/platform/auth"
	"github.com/clinic/records/pkg/httpx"
	"github.com/clinic/records/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/appointments", h.ListAppointments)
	g.POST("/appointments", h.CreateAppointment)
	g.GET("/appointments/:id", h.GetAppointment)
	g.PUT("/appointments/:id", h.UpdateAppointment)
	g.PATCH("/appointments/:id", h.PatchAppointment)
	g.DELETE("/appointments/:id", h.DeleteAppointment)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	appts, total, err := h.svc.ListAppointments(c.Request().Context(), caller, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, pg, c.Request().URL.Path))
}

func (h *Handler) GetAppointment(c echo.Context) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := httpx.PathUUID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	var in AppointmentInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	a, err := h.svc.CreateAppointment(c.Request().Context(), caller, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) UpdateAppointment(c echo.Context) error { return h.update(c, false) }
func (h *Handler) PatchAppointment(c echo.Context) error  { return h.update(c, true) }

func (h *Handler) update(c echo.Context, partial bool) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := httpx.PathUUID(c, "id")
	if err != nil {
		return err
	}
	var in AppointmentInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	a, err := h.svc.UpdateAppointment(c.Request().Context(), caller, id, in, partial)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := httpx.PathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteAppointment(c.Request().Context(), caller, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
